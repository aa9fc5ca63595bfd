package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/canteen-vms-api/internal/models"
)

// CanteenRepository reads the canteen directory used by report filters.
type CanteenRepository struct {
	db *sqlx.DB
}

// NewCanteenRepository constructs the repository.
func NewCanteenRepository(db *sqlx.DB) *CanteenRepository {
	return &CanteenRepository{db: db}
}

// List returns all canteens ordered by name.
func (r *CanteenRepository) List(ctx context.Context) ([]models.Canteen, error) {
	const query = `SELECT id, name, location_id, location_name FROM canteens ORDER BY name ASC`
	var rows []models.Canteen
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list canteens: %w", err)
	}
	return rows, nil
}

// FindByID returns a single canteen.
func (r *CanteenRepository) FindByID(ctx context.Context, id string) (*models.Canteen, error) {
	const query = `SELECT id, name, location_id, location_name FROM canteens WHERE id = $1 LIMIT 1`
	var canteen models.Canteen
	if err := r.db.GetContext(ctx, &canteen, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find canteen by id: %w", err)
	}
	return &canteen, nil
}
