package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/canteen-vms-api/internal/models"
)

const attendanceColumns = `id, sp_no, vendor_name, canteen_id, canteen_name, location_id, location_name, meal_type, date, punch_in_time, punch_out_time, status, created_at, updated_at`

// AttendanceRepository is the record store for vendor_attendance rows.
// Rows are append-only: punch-out mutates an existing row once, nothing
// is ever deleted.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Insert appends a new punch-in record, assigning id and bookkeeping
// timestamps, and returns the stored row.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = models.PunchStatusIn
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO vendor_attendance (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING %s`, attendanceColumns, attendanceColumns)

	var stored models.AttendanceRecord
	err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.SPNo, record.VendorName,
		record.CanteenID, record.CanteenName,
		record.LocationID, record.LocationName,
		record.MealType, record.Date,
		record.PunchInTime, record.PunchOutTime,
		record.Status, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert attendance record: %w", err)
	}
	return &stored, nil
}

// PunchOut applies the single permitted transition to an existing record
// and refreshes updated_at. The status guard makes the transition
// one-way even if two writers race on the same id; a missing or already
// closed record surfaces as sql.ErrNoRows.
func (r *AttendanceRepository) PunchOut(ctx context.Context, id string, params models.PunchOutParams) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf(`UPDATE vendor_attendance
SET punch_out_time = $2, status = $3, updated_at = $4
WHERE id = $1 AND status = $5
RETURNING %s`, attendanceColumns)

	var stored models.AttendanceRecord
	err := r.db.GetContext(ctx, &stored, query, id, params.PunchOutTime, params.Status, time.Now().UTC(), models.PunchStatusIn)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("punch out attendance record %s: %w", id, err)
	}
	return &stored, nil
}

// FindBySubjectAndDate returns all records for the SP number, optionally
// narrowed to a single ISO date. Order follows punch-in time ascending.
func (r *AttendanceRepository) FindBySubjectAndDate(ctx context.Context, spNo, date string) ([]models.AttendanceRecord, error) {
	where := []string{"sp_no = $1"}
	args := []interface{}{spNo}
	if date != "" {
		where = append(where, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, date)
	}

	query := fmt.Sprintf(`SELECT %s FROM vendor_attendance WHERE %s ORDER BY punch_in_time ASC`,
		attendanceColumns, strings.Join(where, " AND "))

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find attendance by subject: %w", err)
	}
	return rows, nil
}

// FindBySubjectAndRange returns records for the SP number within an
// inclusive date range, newest date first for display.
func (r *AttendanceRepository) FindBySubjectAndRange(ctx context.Context, spNo, dateFrom, dateTo string) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM vendor_attendance
WHERE sp_no = $1 AND date >= $2 AND date <= $3
ORDER BY date DESC, punch_in_time DESC`, attendanceColumns)

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, spNo, dateFrom, dateTo); err != nil {
		return nil, fmt.Errorf("find attendance by subject range: %w", err)
	}
	return rows, nil
}

// FindByCanteenAndRange returns records for a canteen within an inclusive
// date range, optionally narrowed to one meal type, newest date first.
// Dates are fixed-width ISO strings, so string comparison is safe.
func (r *AttendanceRepository) FindByCanteenAndRange(ctx context.Context, canteenID string, mealType *models.MealType, dateFrom, dateTo string) ([]models.AttendanceRecord, error) {
	where := []string{"canteen_id = $1", "date >= $2", "date <= $3"}
	args := []interface{}{canteenID, dateFrom, dateTo}
	if mealType != nil && mealType.Valid() {
		where = append(where, fmt.Sprintf("meal_type = $%d", len(args)+1))
		args = append(args, *mealType)
	}

	query := fmt.Sprintf(`SELECT %s FROM vendor_attendance WHERE %s ORDER BY date DESC, punch_in_time DESC`,
		attendanceColumns, strings.Join(where, " AND "))

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find attendance by canteen range: %w", err)
	}
	return rows, nil
}
