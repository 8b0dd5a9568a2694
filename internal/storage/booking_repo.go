package storage

import (
	"errors"

	"gorm.io/gorm"

	"fleetlens/internal/apperr"
	"fleetlens/internal/entity"
)

// BookingFilter narrows a booking listing.
type BookingFilter struct {
	Status string
	CarID  uint
}

// BookingRepository is CRUD over rental bookings.
type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(b *entity.Booking) error {
	if err := r.db.Create(b).Error; err != nil {
		return apperr.Wrap(apperr.KindStorage, err, "save booking")
	}
	return nil
}

func (r *BookingRepository) List(skip, limit int, filter BookingFilter) ([]entity.Booking, int64, error) {
	q := r.db.Model(&entity.Booking{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CarID != 0 {
		q = q.Where("car_id = ?", filter.CarID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindStorage, err, "count bookings")
	}

	var bookings []entity.Booking
	if err := q.Order("created_at DESC").Offset(skip).Limit(limit).Find(&bookings).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindStorage, err, "list bookings")
	}
	return bookings, total, nil
}

func (r *BookingRepository) Get(id uint) (*entity.Booking, error) {
	var b entity.Booking
	err := r.db.First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "booking %d not found", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, err, "fetch booking %d", id)
	}
	return &b, nil
}

func (r *BookingRepository) Update(b *entity.Booking) error {
	if err := r.db.Save(b).Error; err != nil {
		return apperr.Wrap(apperr.KindStorage, err, "update booking %d", b.ID)
	}
	return nil
}

func (r *BookingRepository) Delete(id uint) error {
	res := r.db.Delete(&entity.Booking{}, id)
	if res.Error != nil {
		return apperr.Wrap(apperr.KindStorage, res.Error, "delete booking %d", id)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "booking %d not found", id)
	}
	return nil
}

// SetInspection links a completed return inspection to its booking.
func (r *BookingRepository) SetInspection(bookingID uint, inspectionID string) error {
	res := r.db.Model(&entity.Booking{}).Where("id = ?", bookingID).
		Update("inspection_id", inspectionID)
	if res.Error != nil {
		return apperr.Wrap(apperr.KindStorage, res.Error, "link inspection to booking %d", bookingID)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "booking %d not found", bookingID)
	}
	return nil
}
