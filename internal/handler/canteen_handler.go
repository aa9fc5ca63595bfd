package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canteen-vms-api/internal/service"
	"github.com/noah-isme/canteen-vms-api/pkg/response"
)

// CanteenHandler wires HTTP endpoints to the canteen service.
type CanteenHandler struct {
	service *service.CanteenService
}

// NewCanteenHandler creates a new handler.
func NewCanteenHandler(svc *service.CanteenService) *CanteenHandler {
	return &CanteenHandler{service: svc}
}

// List godoc
// @Summary List canteens
// @Description Returns all canteens with their locations
// @Tags Canteens
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /canteens [get]
func (h *CanteenHandler) List(c *gin.Context) {
	canteens, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, canteens, nil)
}

// Get godoc
// @Summary Get canteen
// @Description Returns one canteen by id
// @Tags Canteens
// @Produce json
// @Param id path string true "Canteen ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /canteens/{id} [get]
func (h *CanteenHandler) Get(c *gin.Context) {
	canteen, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, canteen, nil)
}
