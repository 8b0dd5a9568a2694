package entity

import "time"

// BookingStatus tracks where a rental booking is in its lifecycle.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is one rental of a fleet car. When a return inspection is
// recorded against a booking, InspectionID points at it.
type Booking struct {
	ID               uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	CarID            uint          `json:"car_id" gorm:"index;not null"`
	BookingStartDate time.Time     `json:"booking_start_date" gorm:"index;not null"`
	BookingEndDate   *time.Time    `json:"booking_end_date,omitempty" gorm:"index"`
	Status           BookingStatus `json:"status" gorm:"index;default:pending;not null"`
	InspectionID     string        `json:"inspection_id,omitempty" gorm:"index"`
	Notes            string        `json:"notes,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
