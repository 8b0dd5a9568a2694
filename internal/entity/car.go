package entity

import "time"

// CarStatus tracks where a fleet vehicle is in its rental lifecycle.
type CarStatus string

const (
	CarStatusAvailable   CarStatus = "available"
	CarStatusRented      CarStatus = "rented"
	CarStatusMaintenance CarStatus = "maintenance"
	CarStatusRetired     CarStatus = "retired"
)

// Car is a fleet vehicle. Inspections reference cars loosely through the
// caller-supplied name/model/year; the fleet registry exists for tracking
// and cost estimation.
type Car struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"index;not null"`
	Make         string    `json:"make" gorm:"index;not null"`
	Model        string    `json:"model" gorm:"not null"`
	Year         int       `json:"year" gorm:"index;not null"`
	Color        string    `json:"color,omitempty"`
	VIN          string    `json:"vin,omitempty" gorm:"column:vin;index"`
	LicensePlate string    `json:"license_plate,omitempty" gorm:"index"`
	Mileage      int       `json:"mileage,omitempty"`
	Status       CarStatus `json:"status" gorm:"default:available;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
