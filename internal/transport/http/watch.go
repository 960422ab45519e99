package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/iamasit07/othello/backend/internal/service/game"
)

type LiveGameReader interface {
	GetLiveGame(ctx context.Context, gameID string) (*domain.LiveGame, error)
}

type WatchHandler struct {
	SessionManager *game.SessionManager
	Live           LiveGameReader // optional
}

func NewWatchHandler(sm *game.SessionManager, live LiveGameReader) *WatchHandler {
	return &WatchHandler{SessionManager: sm, Live: live}
}

// GetLiveGames lists the games in progress on this server
func (h *WatchHandler) GetLiveGames(c *gin.Context) {
	c.JSON(http.StatusOK, h.SessionManager.GetActiveGames())
}

// GetLiveGame serves the cached snapshot, or builds one from memory when the
// cache has none.
func (h *WatchHandler) GetLiveGame(c *gin.Context) {
	gameID := c.Param("id")

	if h.Live != nil {
		snapshot, err := h.Live.GetLiveGame(c.Request.Context(), gameID)
		if err != nil {
			log.Printf("[WATCH] Snapshot lookup for %s failed: %v", gameID, err)
		} else if snapshot != nil {
			c.JSON(http.StatusOK, snapshot)
			return
		}
	}

	gs, exists := h.SessionManager.GetSessionByGameID(gameID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	c.JSON(http.StatusOK, gs.Snapshot())
}
