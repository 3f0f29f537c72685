package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"clinicore/handlers"
	"clinicore/middleware"
)

// HandlerBundle groups the handlers the router wires up.
type HandlerBundle struct {
	Schedule     *handlers.ScheduleHandler
	Availability *handlers.AvailabilityHandler
	Booking      *handlers.BookingHandler
	Queue        *handlers.QueueHandler
}

// RegisterScheduleRoutes registers schedule template endpoints.
func RegisterScheduleRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/schedules")
	{
		api.Use(middleware.TenantContextMiddleware())
		api.PUT("/:doctorId", hb.Schedule.UpsertScheduleHandler)
		api.GET("/:doctorId", hb.Schedule.GetScheduleHandler)
	}
}

// RegisterAvailabilityRoutes registers the authenticated availability query.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.Use(middleware.TenantContextMiddleware())
		api.GET("/:doctorId", hb.Availability.GetAvailableSlotsHandler)
	}
}

// RegisterAppointmentRoutes registers booking and queue-transition endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.TenantContextMiddleware())
		api.POST("", hb.Booking.BookAppointmentHandler)
		api.PUT("/:id/reschedule", hb.Booking.RescheduleAppointmentHandler)
		api.PUT("/:id/cancel", hb.Booking.CancelAppointmentHandler)
		api.POST("/:id/checkin", hb.Queue.CheckInHandler)
		api.PUT("/:id/start", hb.Queue.StartConsultationHandler)
		api.PUT("/:id/complete", hb.Queue.CompleteHandler)
		api.PUT("/:id/no-show", hb.Queue.NoShowHandler)
	}
}

// RegisterQueueRoutes registers the daily token queue endpoints.
func RegisterQueueRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/queue")
	{
		api.Use(middleware.TenantContextMiddleware())
		api.POST("/walkin", hb.Queue.WalkInHandler)
		api.GET("", hb.Queue.GetQueueStatusHandler)
		api.GET("/token/:display", hb.Queue.LookupByTokenHandler)
		api.POST("/refresh-waits", hb.Queue.RefreshWaitTimesHandler)
	}
}

// RegisterPublicRoutes registers the unauthenticated booking-slug surface.
func RegisterPublicRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/public")
	{
		api.Use(middleware.RateLimitMiddleware())
		api.GET("/:slug/availability/:doctorId", hb.Availability.GetPublicAvailableSlotsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.TenantHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterScheduleRoutes(r, hb)
	RegisterAvailabilityRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterQueueRoutes(r, hb)
	RegisterPublicRoutes(r, hb)
	RegisterHealthRoute(r)
}
