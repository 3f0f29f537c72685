package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"clinicore/config"
	"clinicore/models"
	"clinicore/services/notification"
	"clinicore/utils"
)

// Sender delivers one appointment notification. The default implementation
// only logs; real delivery channels plug in here.
type Sender interface {
	Send(ctx context.Context, n models.AppointmentNotification) error
}

// LogSender is the default delivery channel: structured log output.
type LogSender struct{}

func (LogSender) Send(_ context.Context, n models.AppointmentNotification) error {
	utils.GetLogger().Info("appointment notification",
		zap.String("event", n.Event),
		zap.String("tenantId", n.TenantID),
		zap.String("appointmentId", n.AppointmentID),
		zap.String("date", n.Date),
		zap.String("startTime", n.StartTime))
	return nil
}

// InitNotificationWorker runs the async notification consumer in background.
func InitNotificationWorker(sender Sender) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNotifyQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeAppointmentEvent, handleNotificationTask(sender))

	// Start async worker with retry logic.
	go func() {
		log.Println("[NotificationWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotificationWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotificationWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleNotificationTask(sender Sender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var n models.AppointmentNotification
		if err := json.Unmarshal(task.Payload(), &n); err != nil {
			utils.GetLogger().Error("invalid notification payload", zap.Error(err))
			return err
		}

		if err := sender.Send(ctx, n); err != nil {
			// Delivery is best-effort; asynq retries with backoff.
			utils.GetLogger().Warn("notification delivery failed",
				zap.String("appointmentId", n.AppointmentID), zap.Error(err))
			return err
		}
		return nil
	}
}
