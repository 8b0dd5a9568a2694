package entity

import "time"

// Inspection is one assessment event: the car metadata supplied by the
// caller, the stored image paths and the normalized damage report.
// Rows are write-once; nothing updates an inspection after creation.
type Inspection struct {
	ID        string `json:"id" gorm:"primaryKey"`
	CarName   string `json:"car_name"`
	CarModel  string `json:"car_model"`
	CarYear   int    `json:"car_year"`
	BookingID *uint  `json:"booking_id,omitempty" gorm:"index"`

	BeforeImages  []string `json:"before_images" gorm:"serializer:json"`
	AfterImages   []string `json:"after_images" gorm:"serializer:json"`
	BoundedImages []string `json:"bounded_images" gorm:"serializer:json"`

	DamageReport    DamageReport `json:"damage_report" gorm:"serializer:json"`
	TotalDamageCost float64      `json:"total_damage_cost"`

	CreatedAt time.Time `json:"created_at"`
}

// InspectionSummary is the list-view projection of an inspection.
type InspectionSummary struct {
	ID              string    `json:"id"`
	CarName         string    `json:"car_name"`
	CarModel        string    `json:"car_model"`
	CarYear         int       `json:"car_year"`
	TotalDamageCost float64   `json:"total_damage_cost"`
	CreatedAt       time.Time `json:"created_at"`
}

// Summary returns the list projection of i.
func (i Inspection) Summary() InspectionSummary {
	return InspectionSummary{
		ID:              i.ID,
		CarName:         i.CarName,
		CarModel:        i.CarModel,
		CarYear:         i.CarYear,
		TotalDamageCost: i.TotalDamageCost,
		CreatedAt:       i.CreatedAt,
	}
}
