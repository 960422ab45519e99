package bot

import (
	"fmt"

	"github.com/iamasit07/othello/backend/internal/domain"
)

const (
	DEFAULT_CORNER_WEIGHT        = 10
	DEFAULT_SIDE_WEIGHT          = 3
	DEFAULT_GAME_OVER_MULTIPLIER = 100
)

const ErrInvalidWeights domain.Error = "invalid evaluator weights"

// Weights is the tunable part of the heuristic
type Weights struct {
	Corner             int `json:"corner"`
	Side               int `json:"side"`
	GameOverMultiplier int `json:"gameOverMultiplier"`
}

func DefaultWeights() Weights {
	return Weights{
		Corner:             DEFAULT_CORNER_WEIGHT,
		Side:               DEFAULT_SIDE_WEIGHT,
		GameOverMultiplier: DEFAULT_GAME_OVER_MULTIPLIER,
	}
}

func (w Weights) Validate() error {
	if w.Side < 0 {
		return fmt.Errorf("%w: side weight %d is negative", ErrInvalidWeights, w.Side)
	}
	if w.Corner <= w.Side {
		return fmt.Errorf("%w: corner weight %d must exceed side weight %d", ErrInvalidWeights, w.Corner, w.Side)
	}
	if w.GameOverMultiplier <= 1 {
		return fmt.Errorf("%w: game over multiplier %d must be greater than 1", ErrInvalidWeights, w.GameOverMultiplier)
	}
	return nil
}

// Evaluator scores positions statically; higher is better for the side asked about.
type Evaluator struct {
	weights Weights
}

func NewEvaluator(w Weights) *Evaluator {
	return &Evaluator{weights: w}
}

func (e *Evaluator) Weights() Weights {
	return e.weights
}

// Material is the disc difference from side's point of view
func (e *Evaluator) Material(board *domain.Board, side domain.Side) int {
	return board.Count(side) - board.Count(side.Opponent())
}

// Positional rewards corners and edges and penalises the squares that give them away
func (e *Evaluator) Positional(m domain.Move) int {
	if m.IsPass() {
		return 0
	}
	x, y := m.X, m.Y
	corner, side := e.weights.Corner, e.weights.Side

	switch {
	case x == 0 || x == 7:
		switch {
		case y == 0 || y == 7:
			return corner
		case y == 1 || y == 6:
			return -corner
		default:
			return side
		}
	case x == 1 || x == 6:
		if y == 0 || y == 1 || y == 6 || y == 7 {
			return -corner
		}
		return -side
	case y == 0 || y == 7:
		return side
	case y == 1 || y == 6:
		return -side
	}
	return 0
}

// Evaluate combines material after the move with the placement bonus for the
// move itself. Game-ending positions are scaled so they outweigh any estimate.
func (e *Evaluator) Evaluate(board *domain.Board, m domain.Move, side domain.Side, terminal bool) int {
	score := e.Material(board, side) + e.Positional(m)
	if terminal {
		score *= e.weights.GameOverMultiplier
	}
	return score
}
