package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clinicore/middleware"
	"clinicore/services/scheduling"
	"clinicore/utils"
)

// AvailabilityHandler serves open-slot queries.
type AvailabilityHandler struct {
	Engine *scheduling.Engine
}

func NewAvailabilityHandler(engine *scheduling.Engine) *AvailabilityHandler {
	return &AvailabilityHandler{Engine: engine}
}

// GetAvailableSlotsHandler answers the authenticated availability query for a
// doctor and date. "No availability" conditions come back 200 with a reason.
func (h *AvailabilityHandler) GetAvailableSlotsHandler(c *gin.Context) {
	tenantID := middleware.TenantID(c)
	doctorID := c.Param("doctorId")
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing date", "query parameter date=YYYY-MM-DD is required")
		return
	}

	result, err := h.Engine.GetAvailableSlots(c.Request.Context(), tenantID, doctorID, date, time.Now().UTC())
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPublicAvailableSlotsHandler is the unauthenticated variant, resolving
// the tenant from the clinic's public booking slug.
func (h *AvailabilityHandler) GetPublicAvailableSlotsHandler(c *gin.Context) {
	slug := c.Param("slug")
	doctorID := c.Param("doctorId")
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing date", "query parameter date=YYYY-MM-DD is required")
		return
	}

	result, err := h.Engine.GetPublicAvailableSlots(c.Request.Context(), slug, doctorID, date, time.Now().UTC())
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
