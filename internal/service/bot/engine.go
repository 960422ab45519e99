package bot

import (
	"github.com/iamasit07/othello/backend/internal/config"
	"github.com/iamasit07/othello/backend/internal/domain"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const (
	DEFAULT_DEPTH_EASY   = 1
	DEFAULT_DEPTH_MEDIUM = 2
	DEFAULT_DEPTH_HARD   = 4
)

// NormalizeDifficulty maps unknown values to medium
func NormalizeDifficulty(difficulty string) string {
	switch difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return difficulty
	default:
		return DifficultyMedium
	}
}

// ConfigFor builds the search configuration for a difficulty level
func ConfigFor(difficulty string, ec config.EngineConfig) Config {
	weights := Weights{
		Corner:             ec.CornerWeight,
		Side:               ec.SideWeight,
		GameOverMultiplier: ec.GameOverMultiplier,
	}

	var depth int
	switch NormalizeDifficulty(difficulty) {
	case DifficultyEasy:
		depth = orDefault(ec.DepthEasy, DEFAULT_DEPTH_EASY)
	case DifficultyHard:
		depth = orDefault(ec.DepthHard, DEFAULT_DEPTH_HARD)
	default:
		depth = orDefault(ec.DepthMedium, DEFAULT_DEPTH_MEDIUM)
	}

	return Config{Depth: depth, Weights: weights}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// CalculateBestMove picks side's move in the given position without keeping any state
func CalculateBestMove(board *domain.Board, side domain.Side, cfg Config) (domain.Move, int, Stats, error) {
	p, err := NewPlayerWithBoard(side, board, cfg)
	if err != nil {
		return domain.Pass, 0, Stats{}, err
	}
	move, score := p.BestMove()
	return move, score, p.LastStats(), nil
}
