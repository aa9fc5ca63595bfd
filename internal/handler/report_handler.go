package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canteen-vms-api/internal/models"
	"github.com/noah-isme/canteen-vms-api/internal/service"
	appErrors "github.com/noah-isme/canteen-vms-api/pkg/errors"
	"github.com/noah-isme/canteen-vms-api/pkg/response"
)

// ReportHandler wires HTTP endpoints to the report service. Individual
// reports and summaries are self-scoped: vendors always query their own
// SP number, and an omitted sp_no defaults to the caller's.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Individual godoc
// @Summary Individual attendance report
// @Description Attendance records for one SP number over a date range; format=csv or format=pdf downloads an export
// @Tags Reports
// @Produce json
// @Param sp_no query string true "SP number"
// @Param date_from query string true "Start date (YYYY-MM-DD)"
// @Param date_to query string true "End date (YYYY-MM-DD)"
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /reports/individual [get]
func (h *ReportHandler) Individual(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := service.IndividualReportRequest{
		SPNo:     scopedSPNo(claims, c.Query("sp_no")),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}

	records, err := h.service.IndividualReport(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if format := c.Query("format"); format != "" {
		title := fmt.Sprintf("Attendance Report - %s (%s to %s)", req.SPNo, req.DateFrom, req.DateTo)
		h.export(c, records, service.ReportFormat(format), title, fmt.Sprintf("attendance-%s-%s", req.SPNo, req.DateFrom))
		return
	}

	response.JSON(c, http.StatusOK, records, nil)
}

// Canteen godoc
// @Summary Canteen attendance report
// @Description Attendance records for one canteen over a date range, optionally narrowed to a meal type
// @Tags Reports
// @Produce json
// @Param canteen_id query string true "Canteen ID"
// @Param meal_type query string false "Meal type filter"
// @Param date_from query string true "Start date (YYYY-MM-DD)"
// @Param date_to query string true "End date (YYYY-MM-DD)"
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /reports/canteen [get]
func (h *ReportHandler) Canteen(c *gin.Context) {
	req := service.CanteenReportRequest{
		CanteenID: c.Query("canteen_id"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
	}
	if meal := c.Query("meal_type"); meal != "" {
		req.MealType = &meal
	}

	records, err := h.service.CanteenReport(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if format := c.Query("format"); format != "" {
		title := fmt.Sprintf("Canteen Report - %s (%s to %s)", req.CanteenID, req.DateFrom, req.DateTo)
		h.export(c, records, service.ReportFormat(format), title, fmt.Sprintf("canteen-%s-%s", req.CanteenID, req.DateFrom))
		return
	}

	response.JSON(c, http.StatusOK, records, nil)
}

// Summary godoc
// @Summary Attendance summary
// @Description Aggregated punch totals and meal breakdown for one SP number over a date range
// @Tags Reports
// @Produce json
// @Param sp_no query string true "SP number"
// @Param date_from query string true "Start date (YYYY-MM-DD)"
// @Param date_to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := service.IndividualReportRequest{
		SPNo:     scopedSPNo(claims, c.Query("sp_no")),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}

	summary, err := h.service.Summarize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}

// scopedSPNo resolves the SP number a report request may target. Vendors
// are pinned to their own SP number regardless of the query parameter;
// other roles fall back to their own when none is given.
func scopedSPNo(claims *models.JWTClaims, requested string) string {
	if requested == "" || claims.Role == models.RoleVendor {
		return claims.SPNo
	}
	return requested
}

func (h *ReportHandler) export(c *gin.Context, records []models.AttendanceRecord, format service.ReportFormat, title, basename string) {
	payload, contentType, err := h.service.Render(records, format, title)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("%s.%s", basename, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, payload)
}
