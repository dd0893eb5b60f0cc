package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/playvolley/backend/internal/admin"
	"github.com/playvolley/backend/internal/api/handlers"
	"github.com/playvolley/backend/internal/config"
	"github.com/playvolley/backend/internal/game"
	"github.com/playvolley/backend/internal/middleware"
	"github.com/playvolley/backend/internal/ws"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, hub *ws.Hub, mgr *game.Manager, db *sqlx.DB, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.WebSocketOriginCheck(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		match := v1.Group("/match")
		{
			match.POST("/ticket", handlers.CreateTestTicket(cfg)) // Dev only
			match.GET("/:token", handlers.GetMatchState(mgr))
			match.GET("/:token/ws", handlers.MatchWebSocket(hub, mgr, cfg))
		}

		adm := v1.Group("/admin", admin.RequireAdmin(cfg))
		{
			adm.GET("/sessions", handlers.AdminListSessions(mgr))
			adm.DELETE("/sessions/:token", handlers.AdminEndSession(mgr))
			adm.GET("/results", handlers.AdminRecentResults(db))
		}
	}
}
