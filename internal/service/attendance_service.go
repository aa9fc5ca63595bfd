package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/canteen-vms-api/internal/eligibility"
	"github.com/noah-isme/canteen-vms-api/internal/models"
	appErrors "github.com/noah-isme/canteen-vms-api/pkg/errors"
)

type attendanceRepository interface {
	Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	PunchOut(ctx context.Context, id string, params models.PunchOutParams) (*models.AttendanceRecord, error)
	FindBySubjectAndDate(ctx context.Context, spNo, date string) ([]models.AttendanceRecord, error)
}

type attendanceCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AttendanceServiceConfig tunes punch-status caching and instrumentation.
type AttendanceServiceConfig struct {
	PunchStatusTTL time.Duration
	Metrics        *MetricsService
}

// AttendanceService coordinates punch-in and punch-out workflows: it
// snapshots the subject's records for the day, asks the eligibility
// engine for a decision and applies the approved store write. Denials
// travel back as values, never as errors.
type AttendanceService struct {
	repo      attendanceRepository
	cache     attendanceCache
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AttendanceServiceConfig
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, cache attendanceCache, validate *validator.Validate, logger *zap.Logger, cfg AttendanceServiceConfig) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PunchStatusTTL <= 0 {
		cfg.PunchStatusTTL = time.Minute
	}
	svc := &AttendanceService{repo: repo, cache: cache, validator: validate, logger: logger, cfg: cfg, now: time.Now}
	registerMealTypeValidation(svc.validator)
	return svc
}

func registerMealTypeValidation(v *validator.Validate) {
	_ = v.RegisterValidation("meal_type", func(fl validator.FieldLevel) bool {
		return models.MealType(fl.Field().String()).Valid()
	})
}

// DateOf formats a timestamp as the ISO calendar date records are keyed by.
func DateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// PunchInRequest describes a punch-in attempt. Canteen and location come
// from the caller's profile, never from the request body.
type PunchInRequest struct {
	MealType string `json:"meal_type" validate:"required,meal_type"`
}

// PunchOutRequest describes a punch-out attempt.
type PunchOutRequest struct {
	MealType string `json:"meal_type" validate:"required,meal_type"`
}

// PunchInResult carries the decision and, when allowed, the stored record.
type PunchInResult struct {
	Decision eligibility.Decision     `json:"decision"`
	Record   *models.AttendanceRecord `json:"record,omitempty"`
}

// PunchOutResult carries the decision and, when allowed, the updated record.
type PunchOutResult struct {
	Decision eligibility.PunchOutDecision `json:"decision"`
	Record   *models.AttendanceRecord     `json:"record,omitempty"`
}

// TodayStatus bundles a subject's records and punch counts for the
// current date, as shown on the dashboard and punch-out screens.
type TodayStatus struct {
	Date    string                    `json:"date"`
	Records []models.AttendanceRecord `json:"records"`
	Counts  models.PunchCounts        `json:"counts"`
}

// Today returns the subject's records and punch counts for today. The
// status is cached briefly; punch writes invalidate it.
func (s *AttendanceService) Today(ctx context.Context, spNo string) (*TodayStatus, error) {
	date := DateOf(s.now())
	cacheKey := fmt.Sprintf("vms:status:%s:%s", spNo, date)
	if s.cache != nil {
		var cached TodayStatus
		err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			s.cfg.Metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.cfg.Metrics.RecordCacheOperation(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("punch status cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	records, err := s.snapshot(ctx, spNo, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's attendance")
	}
	status := &TodayStatus{
		Date:    date,
		Records: records,
		Counts:  eligibility.CountPunches(records),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, status, s.cfg.PunchStatusTTL); err != nil {
			s.logger.Warn("punch status cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return status, nil
}

func (s *AttendanceService) snapshot(ctx context.Context, spNo, date string) ([]models.AttendanceRecord, error) {
	start := time.Now()
	records, err := s.repo.FindBySubjectAndDate(ctx, spNo, date)
	s.cfg.Metrics.ObserveDBQuery("attendance_by_subject_and_date", time.Since(start))
	return records, err
}

// PunchIn validates the request, checks eligibility against today's
// snapshot and inserts a new punched-in record on approval.
func (s *AttendanceService) PunchIn(ctx context.Context, profile models.UserInfo, req PunchInRequest) (*PunchInResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid punch-in payload")
	}

	now := s.now().UTC()
	date := DateOf(now)
	mealType := models.MealType(req.MealType)

	records, err := s.snapshot(ctx, profile.SPNo, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance snapshot")
	}

	decision := eligibility.CanPunchIn(records, mealType, profile.LocationID)
	if !decision.Allowed {
		return &PunchInResult{Decision: decision}, nil
	}

	stored, err := s.repo.Insert(ctx, &models.AttendanceRecord{
		SPNo:         profile.SPNo,
		VendorName:   profile.FullName,
		CanteenID:    profile.CanteenID,
		CanteenName:  profile.CanteenName,
		LocationID:   profile.LocationID,
		LocationName: profile.LocationName,
		MealType:     mealType,
		Date:         date,
		PunchInTime:  now,
		Status:       models.PunchStatusIn,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record punch-in")
	}

	s.invalidateSubjectCache(ctx, profile.SPNo)
	s.logger.Info("punch_in",
		zap.String("sp_no", profile.SPNo),
		zap.String("meal_type", string(mealType)),
		zap.String("record_id", stored.ID),
	)

	decision.Reason = fmt.Sprintf("Punch-In Successful! You are now checked in for %s.", mealType)
	return &PunchInResult{Decision: decision, Record: stored}, nil
}

// PunchOut validates the request, matches the earliest open punch-in for
// the meal and closes it. A stale matched id (record vanished or already
// closed between snapshot and write) is a caller/integration fault and
// surfaces as RECORD_NOT_FOUND rather than being silently ignored.
func (s *AttendanceService) PunchOut(ctx context.Context, profile models.UserInfo, req PunchOutRequest) (*PunchOutResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid punch-out payload")
	}

	now := s.now().UTC()
	date := DateOf(now)
	mealType := models.MealType(req.MealType)

	records, err := s.snapshot(ctx, profile.SPNo, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance snapshot")
	}

	decision := eligibility.CanPunchOut(records, mealType)
	if !decision.Allowed {
		return &PunchOutResult{Decision: decision}, nil
	}

	stored, err := s.repo.PunchOut(ctx, decision.MatchedRecordID, models.PunchOutParams{
		PunchOutTime: now,
		Status:       models.PunchStatusOut,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("punch_out_stale_record",
				zap.String("sp_no", profile.SPNo),
				zap.String("record_id", decision.MatchedRecordID),
			)
			return nil, appErrors.Clone(appErrors.ErrRecordNotFound, "attendance record no longer available for punch-out")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record punch-out")
	}

	s.invalidateSubjectCache(ctx, profile.SPNo)
	s.logger.Info("punch_out",
		zap.String("sp_no", profile.SPNo),
		zap.String("meal_type", string(mealType)),
		zap.String("record_id", stored.ID),
	)

	decision.Reason = "Punch-Out Successful! Your shift has been completed."
	return &PunchOutResult{Decision: decision, Record: stored}, nil
}

func (s *AttendanceService) invalidateSubjectCache(ctx context.Context, spNo string) {
	if s.cache == nil {
		return
	}
	patterns := []string{
		fmt.Sprintf("vms:summary:%s:*", spNo),
		fmt.Sprintf("vms:status:%s:*", spNo),
	}
	for _, pattern := range patterns {
		if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
			s.logger.Warn("failed to invalidate cache", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}
