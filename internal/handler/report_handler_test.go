package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/canteen-vms-api/internal/middleware"
	"github.com/noah-isme/canteen-vms-api/internal/models"
	"github.com/noah-isme/canteen-vms-api/internal/service"
)

type stubReportRepo struct {
	records  []models.AttendanceRecord
	lastSPNo string
}

func (s *stubReportRepo) FindBySubjectAndRange(ctx context.Context, spNo, dateFrom, dateTo string) ([]models.AttendanceRecord, error) {
	s.lastSPNo = spNo
	return s.records, nil
}

func (s *stubReportRepo) FindByCanteenAndRange(ctx context.Context, canteenID string, mealType *models.MealType, dateFrom, dateTo string) ([]models.AttendanceRecord, error) {
	return s.records, nil
}

func newReportTestHandler(repo *stubReportRepo) *ReportHandler {
	svc := service.NewReportService(repo, nil, nil, zap.NewNop(), service.ReportServiceConfig{
		SummaryTTL:   time.Minute,
		MaxRangeDays: 92,
	})
	return NewReportHandler(svc)
}

func supervisorClaims() *models.JWTClaims {
	return &models.JWTClaims{
		UserID:   "u2",
		SPNo:     "100001",
		FullName: "CCS User 1",
		Role:     models.RoleCCS,
	}
}

func sampleRecord() models.AttendanceRecord {
	punchIn := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	out := punchIn.Add(4 * time.Hour)
	return models.AttendanceRecord{
		ID:           "r1",
		SPNo:         "806760",
		VendorName:   "Vendor User 1",
		CanteenID:    "1",
		CanteenName:  "Main Canteen",
		LocationID:   "1",
		LocationName: "Block A",
		MealType:     models.MealLunch,
		Date:         "2024-01-10",
		PunchInTime:  punchIn,
		PunchOutTime: &out,
		Status:       models.PunchStatusOut,
	}
}

func TestReportHandlerIndividualJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportTestHandler(&stubReportRepo{records: []models.AttendanceRecord{sampleRecord()}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(middleware.ContextUserKey, vendorClaims())
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/individual?sp_no=806760&date_from=2024-01-01&date_to=2024-01-31", nil)

	handler.Individual(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Main Canteen")
}

func TestReportHandlerIndividualUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportTestHandler(&stubReportRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/individual?sp_no=806760&date_from=2024-01-01&date_to=2024-01-31", nil)

	handler.Individual(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportHandlerIndividualVendorPinnedToOwnSPNo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubReportRepo{records: []models.AttendanceRecord{sampleRecord()}}
	handler := newReportTestHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(middleware.ContextUserKey, vendorClaims())
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/individual?sp_no=999999&date_from=2024-01-01&date_to=2024-01-31", nil)

	handler.Individual(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "806760", repo.lastSPNo)
}

func TestReportHandlerIndividualDefaultsToCallerSPNo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubReportRepo{records: []models.AttendanceRecord{sampleRecord()}}
	handler := newReportTestHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(middleware.ContextUserKey, supervisorClaims())
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/individual?date_from=2024-01-01&date_to=2024-01-31", nil)

	handler.Individual(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "100001", repo.lastSPNo)
}

func TestReportHandlerIndividualSupervisorQueriesOtherSPNo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubReportRepo{records: []models.AttendanceRecord{sampleRecord()}}
	handler := newReportTestHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(middleware.ContextUserKey, supervisorClaims())
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/individual?sp_no=806760&date_from=2024-01-01&date_to=2024-01-31", nil)

	handler.Individual(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "806760", repo.lastSPNo)
}

func TestReportHandlerIndividualMissingParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportTestHandler(&stubReportRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(middleware.ContextUserKey, vendorClaims())
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/individual?sp_no=806760", nil)

	handler.Individual(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandlerIndividualCSVDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportTestHandler(&stubReportRepo{records: []models.AttendanceRecord{sampleRecord()}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(middleware.ContextUserKey, vendorClaims())
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/individual?sp_no=806760&date_from=2024-01-01&date_to=2024-01-31&format=csv", nil)

	handler.Individual(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance-806760-2024-01-01.csv")
	assert.Contains(t, rec.Body.String(), "Date,SP No,Vendor Name,Canteen,Location,Meal Type,Punch In Time,Punch Out Time,Status")
}

func TestReportHandlerSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportTestHandler(&stubReportRepo{records: []models.AttendanceRecord{sampleRecord()}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(middleware.ContextUserKey, vendorClaims())
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/summary?sp_no=806760&date_from=2024-01-01&date_to=2024-01-31", nil)

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_punch_ins":1`)
	assert.Contains(t, rec.Body.String(), `"total_punch_outs":1`)
}

func TestReportHandlerSummaryVendorPinnedToOwnSPNo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubReportRepo{records: []models.AttendanceRecord{sampleRecord()}}
	handler := newReportTestHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(middleware.ContextUserKey, vendorClaims())
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/summary?sp_no=999999&date_from=2024-01-01&date_to=2024-01-31", nil)

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "806760", repo.lastSPNo)
}
