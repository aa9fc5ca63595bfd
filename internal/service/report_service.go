package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/canteen-vms-api/internal/models"
	appErrors "github.com/noah-isme/canteen-vms-api/pkg/errors"
	"github.com/noah-isme/canteen-vms-api/pkg/export"
)

type reportAttendanceRepository interface {
	FindBySubjectAndRange(ctx context.Context, spNo, dateFrom, dateTo string) ([]models.AttendanceRecord, error)
	FindByCanteenAndRange(ctx context.Context, canteenID string, mealType *models.MealType, dateFrom, dateTo string) ([]models.AttendanceRecord, error)
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledDatasetRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// Export column order is fixed and matches the original export layout.
var reportHeaders = []string{"Date", "SP No", "Vendor Name", "Canteen", "Location", "Meal Type", "Punch In Time", "Punch Out Time", "Status"}

const exportTimeLayout = "2006-01-02 15:04:05"

// ReportServiceConfig tunes caching, range limits and instrumentation.
type ReportServiceConfig struct {
	SummaryTTL   time.Duration
	MaxRangeDays int
	Metrics      *MetricsService
}

// ReportService filters and summarises stored attendance records and
// renders them for display or export.
type ReportService struct {
	repo      reportAttendanceRepository
	cache     summaryCache
	csv       datasetRenderer
	pdf       titledDatasetRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// NewReportService constructs the report service.
func NewReportService(repo reportAttendanceRepository, cache summaryCache, validate *validator.Validate, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = 5 * time.Minute
	}
	registerMealTypeValidation(validate)
	return &ReportService{
		repo:      repo,
		cache:     cache,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// IndividualReportRequest scopes an individual report.
type IndividualReportRequest struct {
	SPNo     string `json:"sp_no" validate:"required"`
	DateFrom string `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo   string `json:"date_to" validate:"required,datetime=2006-01-02"`
}

// CanteenReportRequest scopes a canteen report.
type CanteenReportRequest struct {
	CanteenID string  `json:"canteen_id" validate:"required"`
	MealType  *string `json:"meal_type" validate:"omitempty,meal_type"`
	DateFrom  string  `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo    string  `json:"date_to" validate:"required,datetime=2006-01-02"`
}

func (s *ReportService) checkRange(dateFrom, dateTo string) error {
	if dateFrom > dateTo {
		return appErrors.Clone(appErrors.ErrValidation, "date_from must not be after date_to")
	}
	if s.cfg.MaxRangeDays > 0 {
		from, err1 := time.Parse("2006-01-02", dateFrom)
		to, err2 := time.Parse("2006-01-02", dateTo)
		if err1 == nil && err2 == nil && int(to.Sub(from).Hours()/24) > s.cfg.MaxRangeDays {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date range exceeds %d days", s.cfg.MaxRangeDays))
		}
	}
	return nil
}

// IndividualReport returns a subject's records within the inclusive
// range, newest date first.
func (s *ReportService) IndividualReport(ctx context.Context, req IndividualReportRequest) ([]models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report filter")
	}
	if err := s.checkRange(req.DateFrom, req.DateTo); err != nil {
		return nil, err
	}
	records, err := s.findBySubject(ctx, req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build individual report")
	}
	return records, nil
}

func (s *ReportService) findBySubject(ctx context.Context, req IndividualReportRequest) ([]models.AttendanceRecord, error) {
	start := time.Now()
	records, err := s.repo.FindBySubjectAndRange(ctx, req.SPNo, req.DateFrom, req.DateTo)
	s.cfg.Metrics.ObserveDBQuery("attendance_by_subject_and_range", time.Since(start))
	return records, err
}

// CanteenReport returns a canteen's records within the inclusive range,
// optionally narrowed to one meal type, newest date first.
func (s *ReportService) CanteenReport(ctx context.Context, req CanteenReportRequest) ([]models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report filter")
	}
	if err := s.checkRange(req.DateFrom, req.DateTo); err != nil {
		return nil, err
	}
	var mealType *models.MealType
	if req.MealType != nil && *req.MealType != "" {
		mt := models.MealType(*req.MealType)
		mealType = &mt
	}
	start := time.Now()
	records, err := s.repo.FindByCanteenAndRange(ctx, req.CanteenID, mealType, req.DateFrom, req.DateTo)
	s.cfg.Metrics.ObserveDBQuery("attendance_by_canteen_and_range", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build canteen report")
	}
	return records, nil
}

// Summarize aggregates a subject's records over the range. A negative
// incomplete-shift count can only come from corrupted data; it is kept
// in the payload but flagged and logged instead of propagating silently.
func (s *ReportService) Summarize(ctx context.Context, req IndividualReportRequest) (*models.AttendanceSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid summary filter")
	}
	if err := s.checkRange(req.DateFrom, req.DateTo); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("vms:summary:%s:%s:%s", req.SPNo, req.DateFrom, req.DateTo)
	if s.cache != nil {
		var cached models.AttendanceSummary
		err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			s.cfg.Metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.cfg.Metrics.RecordCacheOperation(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("summary cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	records, err := s.findBySubject(ctx, req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build summary")
	}

	summary := buildSummary(req, records)
	if summary.IntegrityAnomaly {
		s.logger.Warn("attendance summary integrity anomaly",
			zap.String("sp_no", req.SPNo),
			zap.Int("incomplete_shifts", summary.IncompleteShifts),
		)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cfg.SummaryTTL); err != nil {
			s.logger.Warn("summary cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return summary, nil
}

func buildSummary(req IndividualReportRequest, records []models.AttendanceRecord) *models.AttendanceSummary {
	summary := &models.AttendanceSummary{
		SPNo:              req.SPNo,
		DateFrom:          req.DateFrom,
		DateTo:            req.DateTo,
		MealTypeBreakdown: map[models.MealType]int{},
	}

	dates := map[string]struct{}{}
	for _, r := range records {
		dates[r.Date] = struct{}{}
		summary.MealTypeBreakdown[r.MealType]++
		summary.TotalPunchIns++
		if r.Status == models.PunchStatusOut {
			summary.TotalPunchOuts++
		}
	}
	summary.TotalDays = len(dates)
	summary.WorkedDays = len(dates)
	summary.IncompleteShifts = summary.TotalPunchIns - summary.TotalPunchOuts
	summary.IntegrityAnomaly = summary.IncompleteShifts < 0
	return summary
}

// ReportFormat selects the rendered export type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Render produces an export payload for the given records with the
// fixed column order: Date, SP No, Vendor Name, Canteen, Location,
// Meal Type, Punch In Time, Punch Out Time, Status.
func (s *ReportService) Render(records []models.AttendanceRecord, format ReportFormat, title string) ([]byte, string, error) {
	dataset := export.Dataset{Headers: reportHeaders, Rows: make([][]string, 0, len(records))}
	for _, r := range records {
		punchOut := ""
		if r.PunchOutTime != nil {
			punchOut = r.PunchOutTime.UTC().Format(exportTimeLayout)
		}
		dataset.Rows = append(dataset.Rows, []string{
			r.Date,
			r.SPNo,
			r.VendorName,
			r.CanteenName,
			r.LocationName,
			string(r.MealType),
			r.PunchInTime.UTC().Format(exportTimeLayout),
			punchOut,
			string(r.Status),
		})
	}

	switch format {
	case ReportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case ReportFormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
