package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medtrack/medtrack-service/internal/domain/auth"
	"github.com/medtrack/medtrack-service/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authHandler *AuthHandler, authSvc auth.Service, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
		errorHandlingMiddleware(logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google/url", authHandler.GoogleURL)
			authGroup.GET("/google/callback", authHandler.GoogleCallback)

			authorized := authGroup.Group("", authMiddleware(authSvc))
			authorized.GET("/profile", authHandler.Profile)
			authorized.POST("/logout", authHandler.Logout)
		}

		protected := api.Group("", authMiddleware(authSvc))
		{
			meds := protected.Group("/medications")
			meds.GET("", handler.ListMedications)
			meds.POST("", handler.CreateMedication)
			meds.GET("/due-today", handler.DueToday)
			meds.GET("/week", handler.WeekSchedule)
			meds.PUT("/:id", handler.UpdateMedication)
			meds.DELETE("/:id", handler.DeleteMedication)
			meds.POST("/:id/toggle", handler.ToggleMedication)

			pharmacies := protected.Group("/pharmacies")
			pharmacies.GET("/nearby", handler.NearbyPharmacies)
			pharmacies.GET("/preferred", handler.PreferredPharmacy)
			pharmacies.PUT("/preferred", handler.ChoosePreferredPharmacy)
			pharmacies.POST("/preferred/refill-call", handler.RefillCall)

			protected.GET("/caregiver", handler.Caregiver)
			protected.PUT("/caregiver", handler.SaveCaregiver)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
