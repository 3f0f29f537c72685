package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"clinicore/config"
	"clinicore/cron"
	"clinicore/database"
	appointmentRepo "clinicore/database/repository/appointment"
	clinicRepo "clinicore/database/repository/clinic"
	scheduleRepo "clinicore/database/repository/schedule"
	"clinicore/handlers"
	"clinicore/routes"
	"clinicore/services/notification"
	"clinicore/services/queue"
	"clinicore/services/scheduling"
	"clinicore/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Repositories.
	schedules := scheduleRepo.NewMongoScheduleRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()
	clinics := clinicRepo.NewMongoClinicRepo(utils.GetCacheClient())

	indexCtx, cancelIdx := context.WithTimeout(context.Background(), 30*time.Second)
	if err := schedules.EnsureIndexes(indexCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure schedule indexes: %v", err)
	}
	if err := appointments.EnsureIndexes(indexCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure appointment indexes: %v", err)
	}
	cancelIdx()

	// Async notification pipeline: producer client here, consumer in cron.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNotifyQueueDB,
	})
	defer asynqClient.Close()
	notifier := notification.NewAsynqNotificationService(asynqClient)
	cron.InitNotificationWorker(cron.LogSender{})

	// Services.
	availabilityEngine := &scheduling.Engine{
		Schedules:          schedules,
		Appointments:       appointments,
		Clinics:            clinics,
		SameDayLeadMinutes: config.AppConfig.SameDayLeadMinutes,
	}
	bookingResolver := &scheduling.Resolver{
		Schedules:    schedules,
		Appointments: appointments,
		Engine:       availabilityEngine,
		Notifier:     notifier,
	}
	queueManager := &queue.Manager{
		Appointments:      appointments,
		AvgConsultMinutes: config.AppConfig.AvgConsultMinutes,
	}

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := &routes.HandlerBundle{
		Schedule:     handlers.NewScheduleHandler(schedules),
		Availability: handlers.NewAvailabilityHandler(availabilityEngine),
		Booking:      handlers.NewBookingHandler(bookingResolver),
		Queue:        handlers.NewQueueHandler(queueManager),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
