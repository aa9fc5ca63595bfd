package models

import "time"

// BookingType distinguishes the two booking flows.
type BookingType string

const (
	BookingFastTrack BookingType = "fast-track"
	BookingSmartMeal BookingType = "smart-meal"
)

// Valid returns true when the booking type is a supported value.
func (b BookingType) Valid() bool {
	return b == BookingFastTrack || b == BookingSmartMeal
}

// MealBooking is a confirmed meal booking tied to an open punch-in.
type MealBooking struct {
	ID          string      `db:"id" json:"id"`
	SPNo        string      `db:"sp_no" json:"sp_no"`
	Date        string      `db:"date" json:"date"`
	MealType    MealType    `db:"meal_type" json:"meal_type"`
	BookingType BookingType `db:"booking_type" json:"booking_type"`
	Quantity    int         `db:"quantity" json:"quantity"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}
