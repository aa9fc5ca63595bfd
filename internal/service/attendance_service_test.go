package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/canteen-vms-api/internal/models"
	appErrors "github.com/noah-isme/canteen-vms-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records      []models.AttendanceRecord
	findErr      error
	insertErr    error
	punchOutErr  error
	inserted     *models.AttendanceRecord
	punchedOutID string
	findCalls    int
}

func (m *mockAttendanceRepo) Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	stored := *record
	stored.ID = "new-record"
	m.inserted = &stored
	return &stored, nil
}

func (m *mockAttendanceRepo) PunchOut(ctx context.Context, id string, params models.PunchOutParams) (*models.AttendanceRecord, error) {
	if m.punchOutErr != nil {
		return nil, m.punchOutErr
	}
	m.punchedOutID = id
	for _, r := range m.records {
		if r.ID == id {
			updated := r
			out := params.PunchOutTime
			updated.PunchOutTime = &out
			updated.Status = params.Status
			return &updated, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) FindBySubjectAndDate(ctx context.Context, spNo, date string) ([]models.AttendanceRecord, error) {
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.records, nil
}

type mockInvalidatingCache struct {
	entries         map[string][]byte
	setTTLs         map[string]time.Duration
	deletedPatterns []string
	deleteErr       error
}

func (m *mockInvalidatingCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockInvalidatingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = map[string][]byte{}
		m.setTTLs = map[string]time.Duration{}
	}
	m.entries[key] = raw
	m.setTTLs[key] = ttl
	return nil
}

func (m *mockInvalidatingCache) DeleteByPattern(ctx context.Context, pattern string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedPatterns = append(m.deletedPatterns, pattern)
	return nil
}

var testClock = time.Date(2024, 1, 10, 12, 30, 0, 0, time.UTC)

func testProfile() models.UserInfo {
	return models.UserInfo{
		ID:           "u1",
		SPNo:         "806760",
		FullName:     "Vendor User 1",
		Role:         models.RoleVendor,
		CanteenID:    "1",
		CanteenName:  "Main Canteen",
		LocationID:   "1",
		LocationName: "Block A",
	}
}

func openRecord(id string, mealType models.MealType, locationID string, punchIn time.Time) models.AttendanceRecord {
	return models.AttendanceRecord{
		ID:          id,
		SPNo:        "806760",
		MealType:    mealType,
		Date:        "2024-01-10",
		LocationID:  locationID,
		PunchInTime: punchIn,
		Status:      models.PunchStatusIn,
	}
}

func newAttendanceService(repo *mockAttendanceRepo, cache *mockInvalidatingCache) *AttendanceService {
	var c attendanceCache
	if cache != nil {
		c = cache
	}
	svc := NewAttendanceService(repo, c, validator.New(), zap.NewNop(), AttendanceServiceConfig{PunchStatusTTL: time.Minute})
	svc.now = func() time.Time { return testClock }
	return svc
}

func TestPunchInStoresRecordAndInvalidatesCache(t *testing.T) {
	repo := &mockAttendanceRepo{}
	cache := &mockInvalidatingCache{}
	svc := newAttendanceService(repo, cache)

	res, err := svc.PunchIn(context.Background(), testProfile(), PunchInRequest{MealType: "lunch"})
	require.NoError(t, err)
	assert.True(t, res.Decision.Allowed)
	assert.Contains(t, res.Decision.Reason, "Punch-In Successful")
	require.NotNil(t, res.Record)
	assert.Equal(t, "2024-01-10", res.Record.Date)
	assert.Equal(t, models.PunchStatusIn, res.Record.Status)
	assert.Equal(t, "Main Canteen", repo.inserted.CanteenName)
	require.Len(t, cache.deletedPatterns, 2)
	assert.Contains(t, cache.deletedPatterns, "vms:summary:806760:*")
	assert.Contains(t, cache.deletedPatterns, "vms:status:806760:*")
}

func TestPunchInDeniedAtDifferentLocation(t *testing.T) {
	repo := &mockAttendanceRepo{records: []models.AttendanceRecord{
		func() models.AttendanceRecord {
			r := openRecord("r1", models.MealLunch, "2", testClock.Add(-time.Hour))
			r.LocationName = "Block B"
			return r
		}(),
	}}
	cache := &mockInvalidatingCache{}
	svc := newAttendanceService(repo, cache)

	res, err := svc.PunchIn(context.Background(), testProfile(), PunchInRequest{MealType: "lunch"})
	require.NoError(t, err)
	assert.False(t, res.Decision.Allowed)
	assert.Nil(t, res.Record)
	assert.Nil(t, repo.inserted)
	assert.Empty(t, cache.deletedPatterns)
}

func TestPunchInRejectsUnknownMealType(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, nil)

	_, err := svc.PunchIn(context.Background(), testProfile(), PunchInRequest{MealType: "brunch"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPunchOutClosesEarliestOpenRecord(t *testing.T) {
	repo := &mockAttendanceRepo{records: []models.AttendanceRecord{
		openRecord("r2", models.MealLunch, "1", testClock.Add(-30*time.Minute)),
		openRecord("r1", models.MealLunch, "1", testClock.Add(-time.Hour)),
	}}
	svc := newAttendanceService(repo, nil)

	res, err := svc.PunchOut(context.Background(), testProfile(), PunchOutRequest{MealType: "lunch"})
	require.NoError(t, err)
	assert.True(t, res.Decision.Allowed)
	assert.Equal(t, "r1", repo.punchedOutID)
	require.NotNil(t, res.Record)
	assert.Equal(t, models.PunchStatusOut, res.Record.Status)
	require.NotNil(t, res.Record.PunchOutTime)
	assert.Equal(t, testClock, *res.Record.PunchOutTime)
}

func TestPunchOutDeniedWithoutOpenRecord(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, nil)

	res, err := svc.PunchOut(context.Background(), testProfile(), PunchOutRequest{MealType: "dinner"})
	require.NoError(t, err)
	assert.False(t, res.Decision.Allowed)
	assert.Nil(t, res.Record)
}

func TestPunchOutStaleRecordSurfacesNotFound(t *testing.T) {
	repo := &mockAttendanceRepo{
		records:     []models.AttendanceRecord{openRecord("r1", models.MealLunch, "1", testClock.Add(-time.Hour))},
		punchOutErr: sql.ErrNoRows,
	}
	svc := newAttendanceService(repo, nil)

	_, err := svc.PunchOut(context.Background(), testProfile(), PunchOutRequest{MealType: "lunch"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRecordNotFound.Code, appErrors.FromError(err).Code)
}

func TestTodayAggregatesCounts(t *testing.T) {
	closed := openRecord("r1", models.MealBreakfast, "1", testClock.Add(-4*time.Hour))
	out := testClock.Add(-3 * time.Hour)
	closed.PunchOutTime = &out
	closed.Status = models.PunchStatusOut

	repo := &mockAttendanceRepo{records: []models.AttendanceRecord{
		closed,
		openRecord("r2", models.MealLunch, "1", testClock.Add(-time.Hour)),
	}}
	svc := newAttendanceService(repo, nil)

	status, err := svc.Today(context.Background(), "806760")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", status.Date)
	assert.Len(t, status.Records, 2)
	assert.Equal(t, 2, status.Counts.PunchIns)
	assert.Equal(t, 1, status.Counts.PunchOuts)
	assert.Equal(t, 1, status.Counts.Open)
}

func TestTodayCachesStatusWithConfiguredTTL(t *testing.T) {
	repo := &mockAttendanceRepo{records: []models.AttendanceRecord{
		openRecord("r1", models.MealLunch, "1", testClock.Add(-time.Hour)),
	}}
	cache := &mockInvalidatingCache{}
	svc := newAttendanceService(repo, cache)

	first, err := svc.Today(context.Background(), "806760")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findCalls)
	assert.Equal(t, time.Minute, cache.setTTLs["vms:status:806760:2024-01-10"])

	second, err := svc.Today(context.Background(), "806760")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findCalls, "second lookup should be served from cache")
	assert.Equal(t, first.Counts, second.Counts)
	assert.Len(t, second.Records, 1)
}

func TestPunchOutInvalidatesStatusCache(t *testing.T) {
	repo := &mockAttendanceRepo{records: []models.AttendanceRecord{
		openRecord("r1", models.MealLunch, "1", testClock.Add(-time.Hour)),
	}}
	cache := &mockInvalidatingCache{}
	svc := newAttendanceService(repo, cache)

	res, err := svc.PunchOut(context.Background(), testProfile(), PunchOutRequest{MealType: "lunch"})
	require.NoError(t, err)
	require.True(t, res.Decision.Allowed)
	assert.Contains(t, cache.deletedPatterns, "vms:status:806760:*")
	assert.Contains(t, cache.deletedPatterns, "vms:summary:806760:*")
}
