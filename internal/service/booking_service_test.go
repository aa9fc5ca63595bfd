package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/canteen-vms-api/internal/eligibility"
	"github.com/noah-isme/canteen-vms-api/internal/models"
	appErrors "github.com/noah-isme/canteen-vms-api/pkg/errors"
)

type mockBookingRepo struct {
	bookings  []models.MealBooking
	insertErr error
	inserted  *models.MealBooking
}

func (m *mockBookingRepo) Insert(ctx context.Context, booking *models.MealBooking) (*models.MealBooking, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	stored := *booking
	stored.ID = "new-booking"
	m.inserted = &stored
	return &stored, nil
}

func (m *mockBookingRepo) ListBySubjectAndDate(ctx context.Context, spNo, date string) ([]models.MealBooking, error) {
	return m.bookings, nil
}

func newBookingService(bookings *mockBookingRepo, attendance *mockAttendanceRepo) *BookingService {
	return NewBookingService(bookings, attendance, validator.New(), zap.NewNop())
}

func TestBookPersistsWhenBothGatesPass(t *testing.T) {
	attendance := &mockAttendanceRepo{records: []models.AttendanceRecord{
		openRecord("r1", models.MealLunch, "1", testClock.Add(-time.Hour)),
	}}
	bookings := &mockBookingRepo{}
	svc := newBookingService(bookings, attendance)

	res, err := svc.Book(context.Background(), testProfile(), "2024-01-10", BookRequest{
		BookingType: "fast-track",
		MealType:    "lunch",
		Quantity:    2,
	})
	require.NoError(t, err)
	assert.True(t, res.Decision.Allowed)
	assert.Contains(t, res.Decision.Reason, "Fast Track booking successful")
	require.NotNil(t, res.Booking)
	assert.Equal(t, "new-booking", res.Booking.ID)
	assert.Equal(t, 2, bookings.inserted.Quantity)
	assert.Equal(t, models.MealLunch, bookings.inserted.MealType)
}

func TestBookDeniedWithoutAnyPunchIn(t *testing.T) {
	bookings := &mockBookingRepo{}
	svc := newBookingService(bookings, &mockAttendanceRepo{})

	res, err := svc.Book(context.Background(), testProfile(), "2024-01-10", BookRequest{
		BookingType: "smart-meal",
		MealType:    "lunch",
		Quantity:    1,
	})
	require.NoError(t, err)
	assert.False(t, res.Decision.Allowed)
	assert.Equal(t, eligibility.RedirectPunchIn, res.Decision.RedirectHint)
	assert.Nil(t, res.Booking)
	assert.Nil(t, bookings.inserted)
}

func TestBookDeniedForWrongMealType(t *testing.T) {
	attendance := &mockAttendanceRepo{records: []models.AttendanceRecord{
		openRecord("r1", models.MealBreakfast, "1", testClock.Add(-time.Hour)),
	}}
	bookings := &mockBookingRepo{}
	svc := newBookingService(bookings, attendance)

	res, err := svc.Book(context.Background(), testProfile(), "2024-01-10", BookRequest{
		BookingType: "smart-meal",
		MealType:    "dinner",
		Quantity:    1,
	})
	require.NoError(t, err)
	assert.False(t, res.Decision.Allowed)
	assert.Contains(t, res.Decision.Reason, "have not punched in for dinner")
	assert.Nil(t, bookings.inserted)
}

func TestBookRejectsInvalidPayload(t *testing.T) {
	svc := newBookingService(&mockBookingRepo{}, &mockAttendanceRepo{})

	_, err := svc.Book(context.Background(), testProfile(), "2024-01-10", BookRequest{
		BookingType: "express",
		MealType:    "lunch",
		Quantity:    1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAccessCheckRequiresOpenRecord(t *testing.T) {
	closed := openRecord("r1", models.MealLunch, "1", testClock.Add(-2*time.Hour))
	out := testClock.Add(-time.Hour)
	closed.PunchOutTime = &out
	closed.Status = models.PunchStatusOut

	svc := newBookingService(&mockBookingRepo{}, &mockAttendanceRepo{records: []models.AttendanceRecord{closed}})

	decision, err := svc.AccessCheck(context.Background(), "806760", "2024-01-10")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, eligibility.RedirectPunchIn, decision.RedirectHint)
}
