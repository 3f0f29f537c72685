package models

// QueueEntry is one appointment's position in the daily token queue.
type QueueEntry struct {
	AppointmentID        string `json:"appointmentId"`
	DoctorID             string `json:"doctorId"`
	PatientID            string `json:"patientId"`
	TokenNumber          int    `json:"tokenNumber"`
	TokenDisplay         string `json:"tokenDisplay"`
	StartTime            string `json:"startTime"`
	EstimatedWaitMinutes int    `json:"estimatedWaitMinutes"`
}

// QueueStatus is the live view of a day's queue. Always computed from current
// store state, never cached.
type QueueStatus struct {
	Date           string       `json:"date"`
	CurrentServing *QueueEntry  `json:"currentServing,omitempty"`
	WaitingQueue   []QueueEntry `json:"waitingQueue"`
	WaitingCount   int          `json:"waitingCount"`
	CompletedCount int          `json:"completedCount"`
	TotalCheckedIn int          `json:"totalCheckedIn"`
}

// CheckInResult is returned when an appointment enters the queue.
type CheckInResult struct {
	AppointmentID        string `json:"appointmentId"`
	TokenNumber          int    `json:"tokenNumber"`
	TokenDisplay         string `json:"tokenDisplay"`
	EstimatedWaitMinutes int    `json:"estimatedWaitMinutes"`
}
