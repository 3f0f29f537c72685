package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clinicore/middleware"
	"clinicore/models"
	"clinicore/services/scheduling"
	"clinicore/utils"
)

// BookingHandler serves appointment create/reschedule/cancel.
type BookingHandler struct {
	Resolver *scheduling.Resolver
}

func NewBookingHandler(resolver *scheduling.Resolver) *BookingHandler {
	return &BookingHandler{Resolver: resolver}
}

// BookAppointmentHandler commits a slot choice.
func (h *BookingHandler) BookAppointmentHandler(c *gin.Context) {
	var req models.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	appt, err := h.Resolver.BookAppointment(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// RescheduleAppointmentHandler moves an appointment to a new slot.
func (h *BookingHandler) RescheduleAppointmentHandler(c *gin.Context) {
	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	appt, err := h.Resolver.RescheduleAppointment(c.Request.Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CancelAppointmentHandler cancels from any non-terminal state.
func (h *BookingHandler) CancelAppointmentHandler(c *gin.Context) {
	appt, err := h.Resolver.CancelAppointment(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}
