package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/iamasit07/othello/backend/internal/service/game"
)

const (
	maxSimulationTime = 30 * time.Second
	maxBudgetMs       = 60_000
)

type EngineHandler struct {
	Service *game.Service
}

func NewEngineHandler(s *game.Service) *EngineHandler {
	return &EngineHandler{Service: s}
}

type analyzeRequest struct {
	// either eight rows of '.', 'B'/'X' and 'W'/'O', or an 8x8 grid of 0/1/2
	Rows       []string `json:"rows"`
	Cells      [][]int  `json:"cells"`
	Side       string   `json:"side"`
	Difficulty string   `json:"difficulty"`
}

func (r analyzeRequest) board() (*domain.Board, error) {
	switch {
	case len(r.Rows) > 0 && len(r.Cells) > 0:
		return nil, errors.New("send rows or cells, not both")
	case len(r.Rows) > 0:
		return domain.ParseBoard(r.Rows)
	case len(r.Cells) > 0:
		return domain.BoardFromCells(r.Cells)
	}
	return domain.NewBoard(), nil
}

// Analyze reports the move a bot of the requested difficulty would play
func (h *EngineHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	board, err := req.board()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	side, err := domain.ParseSide(req.Side)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := h.Service.Analyze(board, side, req.Difficulty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

type simulateRequest struct {
	Black    string `json:"black"`
	White    string `json:"white"`
	BudgetMs int    `json:"budgetMs"`
}

// Simulate plays one refereed bot-versus-bot game
func (h *EngineHandler) Simulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.BudgetMs > maxBudgetMs {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("budgetMs must be at most %d", maxBudgetMs)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), maxSimulationTime)
	defer cancel()

	result, err := h.Service.Simulate(ctx, req.Black, req.White, time.Duration(req.BudgetMs)*time.Millisecond)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Simulation took too long"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
