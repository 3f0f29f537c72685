package models

// BookAppointmentRequest is the payload for creating a scheduled appointment.
// The tenant comes from the authenticated request context, never the body.
type BookAppointmentRequest struct {
	DoctorID  string `json:"doctorId" binding:"required"`
	PatientID string `json:"patientId" binding:"required"`
	Date      string `json:"date" binding:"required"`      // "2006-01-02"
	StartTime string `json:"startTime" binding:"required"` // "HH:MM"
	Notes     string `json:"notes"`
}

// RescheduleRequest moves an existing appointment to a new slot.
type RescheduleRequest struct {
	NewDate      string `json:"newDate" binding:"required"`
	NewStartTime string `json:"newStartTime" binding:"required"`
}

// WalkInRequest creates an appointment directly in the checked-in state with
// a queue token, bypassing slot selection.
type WalkInRequest struct {
	DoctorID  string `json:"doctorId" binding:"required"`
	PatientID string `json:"patientId" binding:"required"`
	Notes     string `json:"notes"`
}
