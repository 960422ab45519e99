package http

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/othello/backend/internal/repository/postgres"
	"github.com/iamasit07/othello/backend/internal/transport/http/middleware"
)

type GameHistory interface {
	GetUserGameHistory(userID int64, limit int) ([]postgres.GameResult, error)
	GetGameByID(gameID string) (*postgres.GameDetails, error)
}

type HistoryHandler struct {
	Games GameHistory
}

func NewHistoryHandler(games GameHistory) *HistoryHandler {
	return &HistoryHandler{Games: games}
}

type gameHistoryItem struct {
	ID            string    `json:"id"`
	BotName       string    `json:"botName"`
	BotDifficulty string    `json:"botDifficulty"`
	Side          string    `json:"side"`
	Result        string    `json:"result"` // "win", "loss" or "draw"
	EndReason     string    `json:"endReason"`
	Score         string    `json:"score"`
	RatingChange  int       `json:"ratingChange"`
	MovesCount    int       `json:"movesCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

func resultFor(g postgres.GameResult) string {
	switch g.Winner {
	case "draw":
		return "draw"
	case g.Username:
		return "win"
	default:
		return "loss"
	}
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	games, err := h.Games.GetUserGameHistory(userID, queryLimit(c, 20, 100))
	if err != nil {
		log.Printf("[HISTORY] Failed to fetch history for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	history := make([]gameHistoryItem, 0, len(games))
	for _, g := range games {
		own, other := g.BlackCount, g.WhiteCount
		if g.HumanSide == "white" {
			own, other = other, own
		}
		history = append(history, gameHistoryItem{
			ID:            g.GameID,
			BotName:       g.BotName,
			BotDifficulty: g.BotDifficulty,
			Side:          g.HumanSide,
			Result:        resultFor(g),
			EndReason:     g.Reason,
			Score:         formatScore(own, other),
			RatingChange:  g.RatingAfter - g.RatingBefore,
			MovesCount:    g.TotalMoves,
			CreatedAt:     g.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, history)
}

// GetGameDetails returns the full record of one of the caller's games
func (h *HistoryHandler) GetGameDetails(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	game, err := h.Games.GetGameByID(c.Param("id"))
	if err != nil {
		log.Printf("[HISTORY] Failed to load game %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch game"})
		return
	}
	// someone else's game is reported as missing
	if game == nil || game.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	c.JSON(http.StatusOK, game)
}

func formatScore(own, other int) string {
	return strconv.Itoa(own) + "-" + strconv.Itoa(other)
}
