package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	scheduleRepo "clinicore/database/repository/schedule"
	"clinicore/middleware"
	"clinicore/models"
	"clinicore/utils"
)

// ScheduleHandler serves the schedule template endpoints.
type ScheduleHandler struct {
	Schedules scheduleRepo.Repository
}

func NewScheduleHandler(repo scheduleRepo.Repository) *ScheduleHandler {
	return &ScheduleHandler{Schedules: repo}
}

// UpsertScheduleHandler saves a doctor's weekly template. The first save
// creates it; later saves update in place.
func (h *ScheduleHandler) UpsertScheduleHandler(c *gin.Context) {
	var tpl models.ScheduleTemplate
	if err := c.ShouldBindJSON(&tpl); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	tpl.TenantID = middleware.TenantID(c)
	tpl.DoctorID = c.Param("doctorId")

	tpl.Normalize()
	if err := tpl.Validate(); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid schedule template", err.Error())
		return
	}

	saved, err := h.Schedules.Upsert(c.Request.Context(), &tpl)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GetScheduleHandler fetches a doctor's weekly template.
func (h *ScheduleHandler) GetScheduleHandler(c *gin.Context) {
	tenantID := middleware.TenantID(c)
	doctorID := c.Param("doctorId")

	tpl, err := h.Schedules.GetByDoctor(c.Request.Context(), tenantID, doctorID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "schedule not found", "")
			return
		}
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}
