// Package eligibility contains the pure decision functions governing
// punch-in/punch-out transitions, meal-booking access and logout gating.
// Every function operates on a snapshot of a subject's records for one
// date and performs no I/O; callers apply the approved side effect
// through the attendance repository.
package eligibility

import (
	"fmt"

	"github.com/noah-isme/canteen-vms-api/internal/models"
)

// RedirectPunchIn is the hint returned when the caller should route the
// user to the punch-in flow.
const RedirectPunchIn = "/punch-in"

// RedirectPunchOut is the hint returned when the caller should route the
// user to the punch-out flow.
const RedirectPunchOut = "/punch-out"

// Decision is the outcome of an eligibility check. Denials are ordinary
// values, not errors; Reason is safe to show to the user verbatim.
type Decision struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason"`
	RedirectHint string `json:"redirect_hint,omitempty"`
}

// PunchOutDecision additionally names the record the punch-out should close.
type PunchOutDecision struct {
	Decision
	MatchedRecordID string `json:"matched_record_id,omitempty"`
}

// LogoutAction describes what must happen before a logout proceeds.
type LogoutAction string

const (
	ActionAllowLogout   LogoutAction = "ALLOW_LOGOUT"
	ActionForcePunchOut LogoutAction = "FORCE_PUNCH_OUT"
)

// LogoutDecision is the outcome of logout gating.
type LogoutDecision struct {
	Action       LogoutAction `json:"action"`
	Reason       string       `json:"reason"`
	RedirectHint string       `json:"redirect_hint,omitempty"`
}

// CanPunchIn decides whether a new punch-in for the given meal and
// location is permitted. A subject may hold any number of open punch-ins
// for the same meal at one location, but never open punch-ins for the
// same meal at two locations on the same date.
func CanPunchIn(records []models.AttendanceRecord, mealType models.MealType, locationID string) Decision {
	for _, r := range records {
		if r.MealType == mealType && r.LocationID != locationID && r.Open() {
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("Already punched in at %s for %s. Cannot punch in at different location.", r.LocationName, mealType),
			}
		}
	}
	return Decision{Allowed: true, Reason: "Can punch in"}
}

// CanPunchOut decides whether an open punch-in for the meal exists and
// names the record to close. When several open punch-ins exist for the
// same meal, the earliest punch-in wins (record id breaks exact ties) so
// shifts close in the order they were opened.
func CanPunchOut(records []models.AttendanceRecord, mealType models.MealType) PunchOutDecision {
	var matched *models.AttendanceRecord
	for i := range records {
		r := &records[i]
		if r.MealType != mealType || !r.Open() {
			continue
		}
		if matched == nil || r.PunchInTime.Before(matched.PunchInTime) ||
			(r.PunchInTime.Equal(matched.PunchInTime) && r.ID < matched.ID) {
			matched = r
		}
	}
	if matched == nil {
		return PunchOutDecision{Decision: Decision{
			Allowed: false,
			Reason:  "No punch-in record found for this meal type today.",
		}}
	}
	return PunchOutDecision{
		Decision:        Decision{Allowed: true, Reason: "Can punch out"},
		MatchedRecordID: matched.ID,
	}
}

// CanAccessMealBooking requires at least one open punch-in for the date,
// regardless of meal type.
func CanAccessMealBooking(records []models.AttendanceRecord) Decision {
	for _, r := range records {
		if r.Open() {
			return Decision{Allowed: true, Reason: "Access granted to meal booking systems."}
		}
	}
	return Decision{
		Allowed:      false,
		Reason:       "You must punch in before accessing meal booking systems.",
		RedirectHint: RedirectPunchIn,
	}
}

// CanBookMealType requires an open punch-in for the specific meal. It is
// at least as strict as CanAccessMealBooking: any snapshot it allows has
// an open record, so the general check allows it too.
func CanBookMealType(records []models.AttendanceRecord, mealType models.MealType) Decision {
	for _, r := range records {
		if r.MealType == mealType && r.Open() {
			return Decision{Allowed: true, Reason: fmt.Sprintf("You can book %s meals.", mealType)}
		}
	}
	return Decision{
		Allowed:      false,
		Reason:       fmt.Sprintf("You have not punched in for %s. Please punch in for this meal type first.", mealType),
		RedirectHint: RedirectPunchIn,
	}
}

// ResolveLogoutAction gates logout. Roles whose capability table entry
// requires a forced punch-out are redirected unconditionally; everyone
// else is held back only while open punch-ins outnumber punch-outs for
// the date, counted across all meal types.
func ResolveLogoutAction(role models.UserRole, records []models.AttendanceRecord) LogoutDecision {
	if role.Capabilities().RequiresForcedPunchOut {
		return LogoutDecision{
			Action:       ActionForcePunchOut,
			Reason:       "Redirecting to punch-out page as per your role requirements.",
			RedirectHint: RedirectPunchOut,
		}
	}

	counts := CountPunches(records)
	if counts.PunchIns > counts.PunchOuts {
		return LogoutDecision{
			Action:       ActionForcePunchOut,
			Reason:       "You have unpunched shifts. Please complete punch-out before logging out.",
			RedirectHint: RedirectPunchOut,
		}
	}
	return LogoutDecision{Action: ActionAllowLogout, Reason: "Safe to logout."}
}

// CountPunches tallies a snapshot. Every record began with a punch-in;
// punch-outs are the records that have completed the transition.
func CountPunches(records []models.AttendanceRecord) models.PunchCounts {
	var counts models.PunchCounts
	for _, r := range records {
		counts.PunchIns++
		if r.Open() {
			counts.Open++
		} else {
			counts.PunchOuts++
		}
	}
	return counts
}
