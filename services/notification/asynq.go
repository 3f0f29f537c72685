package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"clinicore/models"
	"clinicore/utils"
)

// TypeAppointmentEvent is the asynq task type for appointment notifications.
const TypeAppointmentEvent = "notify:appointment"

// AsynqNotificationService enqueues notification events onto the redis-backed
// task queue consumed by the worker in cron. Enqueueing happens after the
// store commit; the booking path never waits on delivery.
type AsynqNotificationService struct {
	Client *asynq.Client
}

func NewAsynqNotificationService(client *asynq.Client) *AsynqNotificationService {
	return &AsynqNotificationService{Client: client}
}

func (s *AsynqNotificationService) NotifyBooked(ctx context.Context, appt *models.Appointment) error {
	return s.enqueue(ctx, models.NotifyEventBooked, appt)
}

func (s *AsynqNotificationService) NotifyCancelled(ctx context.Context, appt *models.Appointment) error {
	return s.enqueue(ctx, models.NotifyEventCancelled, appt)
}

func (s *AsynqNotificationService) NotifyRescheduled(ctx context.Context, appt *models.Appointment) error {
	return s.enqueue(ctx, models.NotifyEventRescheduled, appt)
}

func (s *AsynqNotificationService) enqueue(ctx context.Context, event string, appt *models.Appointment) error {
	payload := models.AppointmentNotification{
		Event:         event,
		TenantID:      appt.TenantID,
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		Date:          appt.Date,
		StartTime:     appt.StartTime,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}
	task := asynq.NewTask(TypeAppointmentEvent, b)
	if _, err := s.Client.EnqueueContext(ctx, task); err != nil {
		utils.GetLogger().Warn("failed to enqueue notification",
			zap.String("event", event),
			zap.String("appointmentId", appt.ID),
			zap.Error(err))
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}
