package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/playvolley/backend/internal/game"
	"github.com/playvolley/backend/internal/models"
)

// AdminListSessions returns every live session.
func AdminListSessions(mgr *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"count":    mgr.ActiveCount(),
			"sessions": mgr.List(),
		})
	}
}

// AdminEndSession force-disposes a session.
func AdminEndSession(mgr *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if _, err := mgr.Get(token); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		mgr.End(token)
		c.JSON(http.StatusOK, gin.H{"ended": token})
	}
}

// AdminRecentResults returns the latest persisted match results.
func AdminRecentResults(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no database configured"})
			return
		}

		var results []models.MatchResult
		err := db.Select(&results, `
			SELECT id, match_token, mode, winner_ref, winner_side, end_reason,
			       score_left, score_right, match_time_seconds, seed, created_at
			FROM match_results
			ORDER BY created_at DESC
			LIMIT 50
		`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}
