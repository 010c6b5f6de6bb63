package routes

import (
	"net/http"
	"time"

	"wuauser/handlers"
	"wuauser/middleware"
	"wuauser/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes registers the unauthenticated operational endpoints.
func RegisterHealthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.HealthHandler)
	if hb.Metrics != nil {
		r.GET("/metrics", gin.WrapH(hb.Metrics))
	}
}

// RegisterVetRoutes registers the vet directory and slot endpoints.
func RegisterVetRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	api := r.Group("/api/vets")
	{
		api.Use(auth)
		api.GET("/nearby", hb.Vets.NearbyVetsHandler)
		api.GET("/:id/services", hb.Vets.ListServicesHandler)
		api.GET("/:id/slots", hb.Appointments.AvailableSlotsHandler)
	}
}

// RegisterAppointmentRoutes registers appointment booking and lifecycle endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	api := r.Group("/api/appointments")
	{
		api.Use(auth)
		api.POST("", middleware.RequireRole(models.RoleOwner), hb.Appointments.CreateAppointmentHandler)
		api.GET("", middleware.RequireRole(models.RoleOwner, models.RoleVet), hb.Appointments.ListAppointmentsHandler)
		api.GET("/:id", hb.Appointments.GetAppointmentHandler)
		api.PATCH("/:id/status", hb.Appointments.UpdateStatusHandler)
		api.PATCH("/:id/reschedule", hb.Appointments.RescheduleHandler)
	}
}

// RegisterPaymentRoutes registers the payment intent, vet balance and webhook endpoints. The webhook
// authenticates by signature instead of bearer token.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	api := r.Group("/api/payments")
	{
		api.POST("/webhook", hb.Payments.WebhookHandler)
		api.POST("/intent", auth, middleware.RequireRole(models.RoleOwner), hb.Payments.CreateIntentHandler)
		api.GET("/balance", auth, middleware.RequireRole(models.RoleVet), hb.Payments.BalanceHandler)
	}
}

func RegisterPetRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	api := r.Group("/api/pets")
	{
		api.Use(auth, middleware.RequireRole(models.RoleOwner))
		api.POST("", hb.Pets.CreatePetHandler)
		api.GET("", hb.Pets.ListPetsHandler)
		api.POST("/:id/photo", hb.Pets.UploadPhotoHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
	})

	RegisterHealthRoutes(r, hb)
	RegisterVetRoutes(r, hb, auth)
	RegisterAppointmentRoutes(r, hb, auth)
	RegisterPaymentRoutes(r, hb, auth)
	RegisterPetRoutes(r, hb, auth)
}
