package models

import "time"

// PunchStatus represents the lifecycle state of an attendance record.
// A record starts punched-in and transitions to punched-out exactly once.
type PunchStatus string

const (
	PunchStatusIn  PunchStatus = "punched-in"
	PunchStatusOut PunchStatus = "punched-out"
)

// MealType scopes attendance and booking checks to a meal service window.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnacks    MealType = "snacks"
)

// Valid returns true when the meal type is a supported value.
func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnacks:
		return true
	default:
		return false
	}
}

// AttendanceRecord is a single punch-in row in vendor_attendance.
// Vendor/canteen/location names are denormalised from the profile at
// punch-in time so reports do not need a join against users.
type AttendanceRecord struct {
	ID           string      `db:"id" json:"id"`
	SPNo         string      `db:"sp_no" json:"sp_no"`
	VendorName   string      `db:"vendor_name" json:"vendor_name"`
	CanteenID    string      `db:"canteen_id" json:"canteen_id"`
	CanteenName  string      `db:"canteen_name" json:"canteen_name"`
	LocationID   string      `db:"location_id" json:"location_id"`
	LocationName string      `db:"location_name" json:"location_name"`
	MealType     MealType    `db:"meal_type" json:"meal_type"`
	Date         string      `db:"date" json:"date"`
	PunchInTime  time.Time   `db:"punch_in_time" json:"punch_in_time"`
	PunchOutTime *time.Time  `db:"punch_out_time" json:"punch_out_time,omitempty"`
	Status       PunchStatus `db:"status" json:"status"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// Open reports whether the record still awaits its punch-out.
func (r AttendanceRecord) Open() bool {
	return r.Status == PunchStatusIn
}

// PunchOutParams carries the single permitted mutation of a record.
type PunchOutParams struct {
	PunchOutTime time.Time
	Status       PunchStatus
}

// PunchCounts tallies a subject's records for one date. Every record
// counts as a punch-in; punch-outs are the closed subset, so Open is
// always PunchIns minus PunchOuts.
type PunchCounts struct {
	PunchIns  int `json:"punch_ins"`
	PunchOuts int `json:"punch_outs"`
	Open      int `json:"open"`
}

// AttendanceSummary aggregates a subject's records over a date range.
// IncompleteShifts below zero means more punch-outs than punch-ins exist,
// which only happens on corrupted data; IntegrityAnomaly flags that case.
type AttendanceSummary struct {
	SPNo              string           `json:"sp_no"`
	DateFrom          string           `json:"date_from"`
	DateTo            string           `json:"date_to"`
	TotalDays         int              `json:"total_days"`
	WorkedDays        int              `json:"worked_days"`
	TotalPunchIns     int              `json:"total_punch_ins"`
	TotalPunchOuts    int              `json:"total_punch_outs"`
	IncompleteShifts  int              `json:"incomplete_shifts"`
	IntegrityAnomaly  bool             `json:"integrity_anomaly,omitempty"`
	MealTypeBreakdown map[MealType]int `json:"meal_type_breakdown"`
}
