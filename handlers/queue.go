package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clinicore/middleware"
	"clinicore/models"
	"clinicore/services/queue"
	"clinicore/utils"
)

// QueueHandler serves check-in and daily token queue endpoints.
type QueueHandler struct {
	Manager *queue.Manager
}

func NewQueueHandler(manager *queue.Manager) *QueueHandler {
	return &QueueHandler{Manager: manager}
}

// CheckInHandler moves a scheduled appointment into the day's queue.
func (h *QueueHandler) CheckInHandler(c *gin.Context) {
	result, err := h.Manager.CheckIn(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// WalkInHandler creates a walk-in appointment already checked in.
func (h *QueueHandler) WalkInHandler(c *gin.Context) {
	var req models.WalkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	appt, result, err := h.Manager.CheckInWalkIn(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"appointment": appt, "checkIn": result})
}

// StartConsultationHandler marks the token as currently being served.
func (h *QueueHandler) StartConsultationHandler(c *gin.Context) {
	appt, err := h.Manager.StartConsultation(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CompleteHandler finishes the consultation.
func (h *QueueHandler) CompleteHandler(c *gin.Context) {
	appt, err := h.Manager.Complete(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// NoShowHandler flags an appointment whose patient never arrived.
func (h *QueueHandler) NoShowHandler(c *gin.Context) {
	appt, err := h.Manager.MarkNoShow(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// GetQueueStatusHandler returns the live queue view for a day.
func (h *QueueHandler) GetQueueStatusHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing date", "query parameter date=YYYY-MM-DD is required")
		return
	}

	status, err := h.Manager.GetQueueStatus(c.Request.Context(), middleware.TenantID(c), date, c.Query("doctorId"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// LookupByTokenHandler resolves a display token like T-003 for a day.
func (h *QueueHandler) LookupByTokenHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing date", "query parameter date=YYYY-MM-DD is required")
		return
	}

	appt, err := h.Manager.LookupByToken(c.Request.Context(), middleware.TenantID(c), date, c.Param("display"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// RefreshWaitTimesHandler recomputes and persists all waiting estimates.
func (h *QueueHandler) RefreshWaitTimesHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing date", "query parameter date=YYYY-MM-DD is required")
		return
	}

	refreshed, err := h.Manager.RefreshWaitTimes(c.Request.Context(), middleware.TenantID(c), date)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": refreshed})
}
