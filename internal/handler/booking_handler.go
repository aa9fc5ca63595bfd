package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canteen-vms-api/internal/service"
	appErrors "github.com/noah-isme/canteen-vms-api/pkg/errors"
	"github.com/noah-isme/canteen-vms-api/pkg/response"
)

// BookingHandler wires HTTP endpoints to the booking service.
type BookingHandler struct {
	service *service.BookingService
	metrics *service.MetricsService
}

// NewBookingHandler creates a new handler.
func NewBookingHandler(svc *service.BookingService, metrics *service.MetricsService) *BookingHandler {
	return &BookingHandler{service: svc, metrics: metrics}
}

// Access godoc
// @Summary Meal booking access check
// @Description Reports whether the caller may enter the meal-booking flow today
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /bookings/access [get]
func (h *BookingHandler) Access(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	decision, err := h.service.AccessCheck(c.Request.Context(), claims.SPNo, service.DateOf(timeNow()))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.ObservePunchDecision("booking_access", decision.Allowed)
	response.JSON(c, http.StatusOK, decision, nil)
}

// Book godoc
// @Summary Book meals
// @Description Record a meal booking; requires an open punch-in for the requested meal
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.BookRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Book(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	res, err := h.service.Book(c.Request.Context(), profileFromClaims(claims), service.DateOf(timeNow()), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.ObservePunchDecision("booking", res.Decision.Allowed)
	if !res.Decision.Allowed {
		response.JSON(c, http.StatusOK, res, nil)
		return
	}
	response.JSON(c, http.StatusCreated, res, nil)
}

// List godoc
// @Summary List today's bookings
// @Description Returns the caller's meal bookings for today
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	bookings, err := h.service.ListForDate(c.Request.Context(), claims.SPNo, service.DateOf(timeNow()))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, bookings, nil)
}
