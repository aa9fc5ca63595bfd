package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/canteen-vms-api/internal/models"
)

var userTestColumns = []string{"id", "sp_no", "password_hash", "full_name", "role", "canteen_id", "canteen_name", "location_id", "location_name", "active", "last_login", "created_at", "updated_at"}

func TestFindBySPNo(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userTestColumns).
		AddRow("1", "806760", "hash", "Vendor User 1", string(models.RoleVendor), "1", "Main Canteen", "1", "Block A", true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userColumns+" FROM users WHERE sp_no = $1 LIMIT 1")).
		WithArgs("806760").
		WillReturnRows(rows)

	user, err := repo.FindBySPNo(context.Background(), "806760")
	require.NoError(t, err)
	assert.Equal(t, "806760", user.SPNo)
	assert.Equal(t, models.RoleVendor, user.Role)
	assert.Equal(t, "Main Canteen", user.CanteenName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRefreshToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateRefreshToken(context.Background(), &models.RefreshToken{ID: "1", UserID: "u1", Token: "token", ExpiresAt: time.Now(), CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeUserRefreshTokens(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked = TRUE").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.RevokeUserRefreshTokens(context.Background(), "u1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
