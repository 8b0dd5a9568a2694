package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetlens/internal/entity"
	"fleetlens/internal/storage"
)

type bookingForm struct {
	CarID            uint       `json:"car_id" binding:"required"`
	BookingStartDate time.Time  `json:"booking_start_date" binding:"required"`
	BookingEndDate   *time.Time `json:"booking_end_date"`
	Status           string     `json:"status" binding:"omitempty,oneof=pending active completed cancelled"`
	Notes            string     `json:"notes"`
}

func (s *Server) createBooking(c *gin.Context) {
	var form bookingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, bindingError(err))
		return
	}

	// The booking must reference a registered fleet car.
	if _, err := s.cars.Get(form.CarID); err != nil {
		respondError(c, err)
		return
	}

	status := entity.BookingStatus(form.Status)
	if status == "" {
		status = entity.BookingStatusPending
	}
	booking := entity.Booking{
		CarID:            form.CarID,
		BookingStartDate: form.BookingStartDate,
		BookingEndDate:   form.BookingEndDate,
		Status:           status,
		Notes:            form.Notes,
	}
	if err := s.bookings.Create(&booking); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Booking created successfully", booking)
}

func (s *Server) listBookings(c *gin.Context) {
	skip := parseQueryInt(c, "skip", 0)
	limit := parseQueryInt(c, "limit", 100)
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	filter := storage.BookingFilter{
		Status: c.Query("status"),
		CarID:  uint(parseQueryInt(c, "car_id", 0)),
	}

	bookings, total, err := s.bookings.List(skip, limit, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Bookings retrieved successfully", gin.H{
		"total":    total,
		"bookings": bookings,
	})
}

func (s *Server) getBooking(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	booking, err := s.bookings.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Booking retrieved successfully", booking)
}

func (s *Server) updateBooking(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	booking, err := s.bookings.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	var form bookingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, bindingError(err))
		return
	}

	booking.CarID = form.CarID
	booking.BookingStartDate = form.BookingStartDate
	booking.BookingEndDate = form.BookingEndDate
	booking.Notes = form.Notes
	if form.Status != "" {
		booking.Status = entity.BookingStatus(form.Status)
	}

	if err := s.bookings.Update(booking); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Booking updated successfully", booking)
}

func (s *Server) deleteBooking(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.bookings.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Booking deleted successfully", nil)
}
