package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canteen-vms-api/internal/service"
	appErrors "github.com/noah-isme/canteen-vms-api/pkg/errors"
	"github.com/noah-isme/canteen-vms-api/pkg/response"
)

// AttendanceHandler wires HTTP endpoints to the attendance service.
type AttendanceHandler struct {
	service *service.AttendanceService
	metrics *service.MetricsService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, metrics: metrics}
}

// Today godoc
// @Summary Today's attendance
// @Description Returns the caller's attendance records and punch counts for today
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	status, err := h.service.Today(c.Request.Context(), claims.SPNo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, status, nil)
}

// PunchIn godoc
// @Summary Punch in
// @Description Open a new attendance record for a meal; denials are returned in the decision payload
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.PunchInRequest true "Punch-in payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /attendance/punch-in [post]
func (h *AttendanceHandler) PunchIn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.PunchInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid punch-in payload"))
		return
	}

	res, err := h.service.PunchIn(c.Request.Context(), profileFromClaims(claims), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.ObservePunchDecision("punch_in", res.Decision.Allowed)
	if !res.Decision.Allowed {
		response.JSON(c, http.StatusOK, res, nil)
		return
	}
	response.JSON(c, http.StatusCreated, res, nil)
}

// PunchOut godoc
// @Summary Punch out
// @Description Close the earliest open attendance record for a meal; denials are returned in the decision payload
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.PunchOutRequest true "Punch-out payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/punch-out [post]
func (h *AttendanceHandler) PunchOut(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.PunchOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid punch-out payload"))
		return
	}

	res, err := h.service.PunchOut(c.Request.Context(), profileFromClaims(claims), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.ObservePunchDecision("punch_out", res.Decision.Allowed)
	response.JSON(c, http.StatusOK, res, nil)
}
