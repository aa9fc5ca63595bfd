package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/canteen-vms-api/internal/eligibility"
	"github.com/noah-isme/canteen-vms-api/internal/models"
	appErrors "github.com/noah-isme/canteen-vms-api/pkg/errors"
)

type bookingRepository interface {
	Insert(ctx context.Context, booking *models.MealBooking) (*models.MealBooking, error)
	ListBySubjectAndDate(ctx context.Context, spNo, date string) ([]models.MealBooking, error)
}

// BookingService gates and records meal bookings. Booking a meal
// requires an open punch-in for that specific meal, which subsumes the
// general access check.
type BookingService struct {
	bookings   bookingRepository
	attendance attendanceRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewBookingService constructs the booking service.
func NewBookingService(bookings bookingRepository, attendance attendanceRepository, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &BookingService{bookings: bookings, attendance: attendance, validator: validate, logger: logger}
	registerMealTypeValidation(svc.validator)
	_ = svc.validator.RegisterValidation("booking_type", func(fl validator.FieldLevel) bool {
		return models.BookingType(fl.Field().String()).Valid()
	})
	return svc
}

// BookRequest describes a booking attempt.
type BookRequest struct {
	BookingType string `json:"booking_type" validate:"required,booking_type"`
	MealType    string `json:"meal_type" validate:"required,meal_type"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

// BookResult carries the decision and, when allowed, the stored booking.
type BookResult struct {
	Decision eligibility.Decision `json:"decision"`
	Booking  *models.MealBooking  `json:"booking,omitempty"`
}

// AccessCheck reports whether the subject may enter the meal-booking
// flow today (any open punch-in).
func (s *BookingService) AccessCheck(ctx context.Context, spNo, date string) (eligibility.Decision, error) {
	records, err := s.attendance.FindBySubjectAndDate(ctx, spNo, date)
	if err != nil {
		return eligibility.Decision{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance snapshot")
	}
	return eligibility.CanAccessMealBooking(records), nil
}

// Book runs both eligibility gates and persists the booking on approval.
func (s *BookingService) Book(ctx context.Context, profile models.UserInfo, date string, req BookRequest) (*BookResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	mealType := models.MealType(req.MealType)
	bookingType := models.BookingType(req.BookingType)

	records, err := s.attendance.FindBySubjectAndDate(ctx, profile.SPNo, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance snapshot")
	}

	if decision := eligibility.CanAccessMealBooking(records); !decision.Allowed {
		return &BookResult{Decision: decision}, nil
	}
	if decision := eligibility.CanBookMealType(records, mealType); !decision.Allowed {
		return &BookResult{Decision: decision}, nil
	}

	stored, err := s.bookings.Insert(ctx, &models.MealBooking{
		SPNo:        profile.SPNo,
		Date:        date,
		MealType:    mealType,
		BookingType: bookingType,
		Quantity:    req.Quantity,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record booking")
	}

	s.logger.Info("meal_booking",
		zap.String("sp_no", profile.SPNo),
		zap.String("meal_type", string(mealType)),
		zap.String("booking_type", string(bookingType)),
		zap.Int("quantity", req.Quantity),
	)

	label := "Smart Meal"
	if bookingType == models.BookingFastTrack {
		label = "Fast Track"
	}
	return &BookResult{
		Decision: eligibility.Decision{
			Allowed: true,
			Reason:  fmt.Sprintf("%s booking successful! %d %s meal(s) booked.", label, req.Quantity, mealType),
		},
		Booking: stored,
	}, nil
}

// ListForDate returns a subject's bookings for one date.
func (s *BookingService) ListForDate(ctx context.Context, spNo, date string) ([]models.MealBooking, error) {
	bookings, err := s.bookings.ListBySubjectAndDate(ctx, spNo, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, nil
}
