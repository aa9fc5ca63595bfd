package eligibility

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/canteen-vms-api/internal/models"
)

func record(id string, meal models.MealType, locationID, locationName string, status models.PunchStatus, punchIn time.Time) models.AttendanceRecord {
	r := models.AttendanceRecord{
		ID:           id,
		SPNo:         "806760",
		VendorName:   "Vendor User 1",
		CanteenID:    "1",
		CanteenName:  "Main Canteen",
		LocationID:   locationID,
		LocationName: locationName,
		MealType:     meal,
		Date:         "2024-01-10",
		PunchInTime:  punchIn,
		Status:       status,
	}
	if status == models.PunchStatusOut {
		out := punchIn.Add(30 * time.Minute)
		r.PunchOutTime = &out
	}
	return r
}

func TestCanPunchInEmptySnapshot(t *testing.T) {
	decision := CanPunchIn(nil, models.MealLunch, "1")
	assert.True(t, decision.Allowed)
}

func TestCanPunchInDeniesOtherLocationSameMeal(t *testing.T) {
	records := []models.AttendanceRecord{
		record("r1", models.MealLunch, "1", "Block A", models.PunchStatusIn, time.Now()),
	}

	decision := CanPunchIn(records, models.MealLunch, "2")
	require.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "Block A")
	assert.Contains(t, decision.Reason, "lunch")
}

func TestCanPunchInAllowsSameLocationRepeat(t *testing.T) {
	records := []models.AttendanceRecord{
		record("r1", models.MealLunch, "1", "Block A", models.PunchStatusIn, time.Now()),
	}

	decision := CanPunchIn(records, models.MealLunch, "1")
	assert.True(t, decision.Allowed)
}

func TestCanPunchInIgnoresClosedRecordsAtOtherLocation(t *testing.T) {
	records := []models.AttendanceRecord{
		record("r1", models.MealLunch, "2", "Block B", models.PunchStatusOut, time.Now().Add(-time.Hour)),
	}

	decision := CanPunchIn(records, models.MealLunch, "1")
	assert.True(t, decision.Allowed)
}

func TestCanPunchInOtherMealDoesNotConflict(t *testing.T) {
	records := []models.AttendanceRecord{
		record("r1", models.MealBreakfast, "2", "Block B", models.PunchStatusIn, time.Now()),
	}

	decision := CanPunchIn(records, models.MealLunch, "1")
	assert.True(t, decision.Allowed)
}

func TestCanPunchOutDeniesWithoutOpenRecord(t *testing.T) {
	decision := CanPunchOut(nil, models.MealLunch)
	require.False(t, decision.Allowed)
	assert.Equal(t, "No punch-in record found for this meal type today.", decision.Reason)
	assert.Empty(t, decision.MatchedRecordID)
}

func TestCanPunchOutMatchesEarliestOpenRecord(t *testing.T) {
	base := time.Date(2024, 1, 10, 11, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		record("r2", models.MealLunch, "1", "Block A", models.PunchStatusIn, base.Add(20*time.Minute)),
		record("r1", models.MealLunch, "1", "Block A", models.PunchStatusIn, base),
		record("r3", models.MealLunch, "1", "Block A", models.PunchStatusOut, base.Add(-time.Hour)),
	}

	decision := CanPunchOut(records, models.MealLunch)
	require.True(t, decision.Allowed)
	assert.Equal(t, "r1", decision.MatchedRecordID)
}

func TestCanPunchOutBreaksTiesByID(t *testing.T) {
	base := time.Date(2024, 1, 10, 11, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		record("b", models.MealDinner, "1", "Block A", models.PunchStatusIn, base),
		record("a", models.MealDinner, "1", "Block A", models.PunchStatusIn, base),
	}

	decision := CanPunchOut(records, models.MealDinner)
	require.True(t, decision.Allowed)
	assert.Equal(t, "a", decision.MatchedRecordID)
}

func TestCanPunchOutIgnoresOtherMealTypes(t *testing.T) {
	records := []models.AttendanceRecord{
		record("r1", models.MealBreakfast, "1", "Block A", models.PunchStatusIn, time.Now()),
	}

	decision := CanPunchOut(records, models.MealLunch)
	assert.False(t, decision.Allowed)
}

func TestPunchScenarioLunchAcrossLocations(t *testing.T) {
	// Subject 806760 punches in for lunch at location 1, is denied at
	// location 2, punches out the location-1 record, and is denied a
	// second punch-out once nothing remains open.
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	var records []models.AttendanceRecord

	first := CanPunchIn(records, models.MealLunch, "1")
	require.True(t, first.Allowed)
	records = append(records, record("r1", models.MealLunch, "1", "Block A", models.PunchStatusIn, base))

	conflict := CanPunchIn(records, models.MealLunch, "2")
	require.False(t, conflict.Allowed)
	assert.Contains(t, conflict.Reason, "Block A")

	punchOut := CanPunchOut(records, models.MealLunch)
	require.True(t, punchOut.Allowed)
	require.Equal(t, "r1", punchOut.MatchedRecordID)

	out := base.Add(45 * time.Minute)
	records[0].Status = models.PunchStatusOut
	records[0].PunchOutTime = &out
	assert.True(t, records[0].PunchOutTime.After(records[0].PunchInTime))

	second := CanPunchOut(records, models.MealLunch)
	require.False(t, second.Allowed)
	assert.Equal(t, "No punch-in record found for this meal type today.", second.Reason)
}

func TestCanAccessMealBookingRequiresAnyOpenPunchIn(t *testing.T) {
	denied := CanAccessMealBooking(nil)
	require.False(t, denied.Allowed)
	assert.Equal(t, RedirectPunchIn, denied.RedirectHint)

	records := []models.AttendanceRecord{
		record("r1", models.MealBreakfast, "1", "Block A", models.PunchStatusIn, time.Now()),
	}
	allowed := CanAccessMealBooking(records)
	assert.True(t, allowed.Allowed)
}

func TestCanBookMealTypeRequiresMatchingOpenPunchIn(t *testing.T) {
	records := []models.AttendanceRecord{
		record("r1", models.MealBreakfast, "1", "Block A", models.PunchStatusIn, time.Now()),
	}

	denied := CanBookMealType(records, models.MealLunch)
	require.False(t, denied.Allowed)
	assert.Equal(t, RedirectPunchIn, denied.RedirectHint)
	assert.Contains(t, denied.Reason, "lunch")

	allowed := CanBookMealType(records, models.MealBreakfast)
	assert.True(t, allowed.Allowed)
}

func TestCanBookMealTypeNoWeakerThanAccessCheck(t *testing.T) {
	// Whenever the general access check denies, every per-meal check
	// must deny as well.
	now := time.Now()
	snapshots := [][]models.AttendanceRecord{
		nil,
		{record("r1", models.MealLunch, "1", "Block A", models.PunchStatusOut, now)},
		{record("r1", models.MealLunch, "1", "Block A", models.PunchStatusIn, now)},
		{
			record("r1", models.MealLunch, "1", "Block A", models.PunchStatusOut, now),
			record("r2", models.MealDinner, "1", "Block A", models.PunchStatusIn, now),
		},
	}
	meals := []models.MealType{models.MealBreakfast, models.MealLunch, models.MealDinner, models.MealSnacks}

	for i, records := range snapshots {
		access := CanAccessMealBooking(records)
		for _, meal := range meals {
			book := CanBookMealType(records, meal)
			if !access.Allowed {
				assert.False(t, book.Allowed, fmt.Sprintf("snapshot %d meal %s", i, meal))
			}
		}
	}
}

func TestResolveLogoutActionPrivilegedRoles(t *testing.T) {
	records := []models.AttendanceRecord{
		record("r1", models.MealLunch, "1", "Block A", models.PunchStatusOut, time.Now()),
	}

	for _, role := range []models.UserRole{models.RoleCCS, models.RoleECS, models.RoleITAdmin} {
		decision := ResolveLogoutAction(role, nil)
		assert.Equal(t, ActionForcePunchOut, decision.Action, string(role))
		assert.Equal(t, RedirectPunchOut, decision.RedirectHint)

		// Record state is irrelevant for privileged roles.
		decision = ResolveLogoutAction(role, records)
		assert.Equal(t, ActionForcePunchOut, decision.Action, string(role))
	}
}

func TestResolveLogoutActionVendorCounts(t *testing.T) {
	now := time.Now()

	open := []models.AttendanceRecord{
		record("r1", models.MealLunch, "1", "Block A", models.PunchStatusIn, now),
		record("r2", models.MealDinner, "1", "Block A", models.PunchStatusOut, now),
	}
	decision := ResolveLogoutAction(models.RoleVendor, open)
	require.Equal(t, ActionForcePunchOut, decision.Action)
	assert.Equal(t, RedirectPunchOut, decision.RedirectHint)

	balanced := []models.AttendanceRecord{
		record("r1", models.MealLunch, "1", "Block A", models.PunchStatusOut, now),
		record("r2", models.MealDinner, "1", "Block A", models.PunchStatusOut, now),
	}
	decision = ResolveLogoutAction(models.RoleVendor, balanced)
	assert.Equal(t, ActionAllowLogout, decision.Action)

	decision = ResolveLogoutAction(models.RoleVendor, nil)
	assert.Equal(t, ActionAllowLogout, decision.Action)
}

func TestCountPunches(t *testing.T) {
	now := time.Now()
	records := []models.AttendanceRecord{
		record("r1", models.MealLunch, "1", "Block A", models.PunchStatusIn, now),
		record("r2", models.MealLunch, "1", "Block A", models.PunchStatusOut, now),
		record("r3", models.MealSnacks, "1", "Block A", models.PunchStatusIn, now),
	}

	counts := CountPunches(records)
	assert.Equal(t, 3, counts.PunchIns)
	assert.Equal(t, 1, counts.PunchOuts)
	assert.Equal(t, 2, counts.Open)
}
