package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/playvolley/backend/internal/config"
	"github.com/playvolley/backend/internal/game"
	"github.com/playvolley/backend/internal/ws"
)

// GetMatchState returns a REST snapshot of a live session, for clients
// resyncing before (or instead of) upgrading to the websocket.
func GetMatchState(mgr *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		session, err := mgr.Get(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		c.JSON(http.StatusOK, session.State())
	}
}

// MatchWebSocket verifies the join ticket and hands the connection to the
// ws layer. Rejections happen before the upgrade so the client gets a real
// HTTP status.
func MatchWebSocket(hub *ws.Hub, mgr *game.Manager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		ticketString := c.Query("pt")
		if token == "" || ticketString == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token and pt required"})
			return
		}

		ticket, err := ParseTicket(cfg.JWTSecret, ticketString)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired ticket"})
			return
		}
		if ticket.MatchToken != token {
			c.JSON(http.StatusForbidden, gin.H{"error": "ticket is for a different match"})
			return
		}

		mode := game.Mode(ticket.Mode)
		switch mode {
		case game.ModeCasual, game.ModeRanked, game.ModePrivate:
		default:
			mode = game.ModeCasual
		}

		// Reject a third party before upgrading; Join re-checks after.
		if session, err := mgr.Get(token); err == nil && !session.CanJoin(ticket.AccountRef) {
			c.JSON(http.StatusConflict, gin.H{"error": "match is full"})
			return
		}

		ws.ServeMatch(c, hub, mgr, ws.Identity{
			MatchToken:  token,
			Mode:        mode,
			AccountRef:  ticket.AccountRef,
			DisplayName: ticket.DisplayName,
			CharacterID: ticket.CharacterID,
		})
	}
}

// CreateTestTicket mints a join ticket for local development, where no
// matchmaking service is running. Disabled in production.
func CreateTestTicket(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Environment == "production" {
			c.JSON(http.StatusNotFound, gin.H{"error": "not available"})
			return
		}

		var req struct {
			MatchToken  string `json:"match_token" binding:"required"`
			AccountRef  string `json:"account_ref" binding:"required"`
			DisplayName string `json:"display_name"`
			CharacterID string `json:"character_id"`
			Mode        string `json:"mode"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_token and account_ref required"})
			return
		}
		if req.Mode == "" {
			req.Mode = string(game.ModeCasual)
		}

		ttl := time.Duration(cfg.TicketTTLMinutes) * time.Minute
		signed, err := MintTicket(cfg.JWTSecret, ttl, JoinTicket{
			MatchToken:  req.MatchToken,
			Mode:        req.Mode,
			AccountRef:  req.AccountRef,
			DisplayName: req.DisplayName,
			CharacterID: req.CharacterID,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mint ticket"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ticket": signed, "expires_in_minutes": cfg.TicketTTLMinutes})
	}
}
