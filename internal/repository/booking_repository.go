package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/canteen-vms-api/internal/models"
)

// BookingRepository persists confirmed meal bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Insert stores a booking and returns the persisted row.
func (r *BookingRepository) Insert(ctx context.Context, booking *models.MealBooking) (*models.MealBooking, error) {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	booking.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO meal_bookings (id, sp_no, date, meal_type, booking_type, quantity, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, sp_no, date, meal_type, booking_type, quantity, created_at`

	var stored models.MealBooking
	err := r.db.GetContext(ctx, &stored, query, booking.ID, booking.SPNo, booking.Date, booking.MealType, booking.BookingType, booking.Quantity, booking.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert meal booking: %w", err)
	}
	return &stored, nil
}

// ListBySubjectAndDate returns a subject's bookings for one date.
func (r *BookingRepository) ListBySubjectAndDate(ctx context.Context, spNo, date string) ([]models.MealBooking, error) {
	const query = `SELECT id, sp_no, date, meal_type, booking_type, quantity, created_at
FROM meal_bookings WHERE sp_no = $1 AND date = $2 ORDER BY created_at ASC`

	var rows []models.MealBooking
	if err := r.db.SelectContext(ctx, &rows, query, spNo, date); err != nil {
		return nil, fmt.Errorf("list meal bookings: %w", err)
	}
	return rows, nil
}
