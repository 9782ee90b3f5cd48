package api

import (
	"net/http"

	"alcyxob/run-plan/internal/metrics"
	"alcyxob/run-plan/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	planService service.PlanService,
	m *metrics.Manager,
	gatherer prometheus.Gatherer,
) {
	authHandler := NewAuthHandler(authService)
	planHandler := NewPlanHandler(planService)

	router.Use(RequestLogger(), RequestMetrics(m))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		planGroup := protected.Group("/plan")
		{
			planGroup.GET("", planHandler.GetPlan)
			planGroup.PUT("", planHandler.ImportPlan)
			planGroup.GET("/progression", planHandler.GetProgression)
			planGroup.GET("/achievements", planHandler.GetAchievements)
			planGroup.POST("/snapshots", planHandler.CreateSnapshot)
		}

		weekGroup := protected.Group("/weeks/:number")
		{
			weekGroup.GET("", planHandler.GetWeek)
			weekGroup.GET("/summary", planHandler.GetWeekSummary)
			weekGroup.POST("/fill", planHandler.FillPlanned)
			weekGroup.POST("/reset", planHandler.ResetWeek)
			weekGroup.POST("/register", planHandler.SubmitRegister)
			weekGroup.PATCH("/sessions/:index", planHandler.UpdateSession)
			weekGroup.GET("/sessions/:index/details", planHandler.GetSessionDetails)
		}
	}
}
