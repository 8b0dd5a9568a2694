package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleetlens/internal/apperr"
	"fleetlens/internal/entity"
	"fleetlens/internal/storage"
)

type carForm struct {
	Name         string `json:"name" binding:"required"`
	Make         string `json:"make" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year" binding:"required,gte=1900,lte=2100"`
	Color        string `json:"color"`
	VIN          string `json:"vin"`
	LicensePlate string `json:"license_plate"`
	Mileage      int    `json:"mileage" binding:"gte=0"`
	Status       string `json:"status" binding:"omitempty,oneof=available rented maintenance retired"`
}

func (s *Server) createCar(c *gin.Context) {
	var form carForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, bindingError(err))
		return
	}

	status := entity.CarStatus(form.Status)
	if status == "" {
		status = entity.CarStatusAvailable
	}
	car := entity.Car{
		Name:         form.Name,
		Make:         form.Make,
		Model:        form.Model,
		Year:         form.Year,
		Color:        form.Color,
		VIN:          form.VIN,
		LicensePlate: form.LicensePlate,
		Mileage:      form.Mileage,
		Status:       status,
	}
	if err := s.cars.Create(&car); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Car created successfully", car)
}

func (s *Server) listCars(c *gin.Context) {
	skip := parseQueryInt(c, "skip", 0)
	limit := parseQueryInt(c, "limit", 100)
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	filter := storage.CarFilter{
		Status: c.Query("status"),
		Make:   c.Query("make"),
		Year:   parseQueryInt(c, "year", 0),
	}

	cars, total, err := s.cars.List(skip, limit, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Cars retrieved successfully", gin.H{
		"total": total,
		"cars":  cars,
	})
}

func (s *Server) getCar(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	car, err := s.cars.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Car retrieved successfully", car)
}

func (s *Server) updateCar(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	car, err := s.cars.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	var form carForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, bindingError(err))
		return
	}

	car.Name = form.Name
	car.Make = form.Make
	car.Model = form.Model
	car.Year = form.Year
	car.Color = form.Color
	car.VIN = form.VIN
	car.LicensePlate = form.LicensePlate
	car.Mileage = form.Mileage
	if form.Status != "" {
		car.Status = entity.CarStatus(form.Status)
	}

	if err := s.cars.Update(car); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Car updated successfully", car)
}

func (s *Server) deleteCar(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.cars.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Car deleted successfully", nil)
}

// pathID parses the numeric :id path parameter.
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperr.New(apperr.KindValidation, "invalid id %q", c.Param("id"))
	}
	return uint(id), nil
}
