package models

// Appointment notification events.
const (
	NotifyEventBooked      = "booked"
	NotifyEventCancelled   = "cancelled"
	NotifyEventRescheduled = "rescheduled"
)

// AppointmentNotification is the payload enqueued after a booking-path commit
// and consumed by the notification worker.
type AppointmentNotification struct {
	Event         string `json:"event"`
	TenantID      string `json:"tenantId"`
	AppointmentID string `json:"appointmentId"`
	DoctorID      string `json:"doctorId"`
	PatientID     string `json:"patientId"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
}
