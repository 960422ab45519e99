package game

import (
	"context"
	"fmt"
	"time"

	"github.com/iamasit07/othello/backend/internal/config"
	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/iamasit07/othello/backend/internal/service/bot"
	"github.com/iamasit07/othello/backend/internal/service/match"
)

// Service is the entry point for stateless engine calls (facade)
type Service struct {
	Repo   GameRepository
	Engine config.EngineConfig
}

func NewService(repo GameRepository, engine config.EngineConfig) *Service {
	return &Service{
		Repo:   repo,
		Engine: engine,
	}
}

type Analysis struct {
	Side       string           `json:"side"`
	Difficulty string           `json:"difficulty"`
	Depth      int              `json:"depth"`
	Move       domain.Move      `json:"move"`
	Notation   string           `json:"notation"`
	Pass       bool             `json:"pass"`
	Score      int              `json:"score"`
	Nodes      int              `json:"nodes"`
	Candidates []bot.ScoredMove `json:"candidates"`
}

// Analyze returns what the bot of the given difficulty would play in board
func (s *Service) Analyze(board *domain.Board, side domain.Side, difficulty string) (*Analysis, error) {
	difficulty = bot.NormalizeDifficulty(difficulty)
	cfg := bot.ConfigFor(difficulty, s.Engine)

	if !side.Valid() {
		return nil, domain.ErrInvalidSide
	}

	res := &Analysis{
		Side:       side.String(),
		Difficulty: difficulty,
		Depth:      cfg.Depth,
		Move:       domain.Pass,
		Notation:   domain.Pass.String(),
		Candidates: []bot.ScoredMove{},
	}
	if !board.HasAnyLegalMove(side) {
		res.Pass = true
		return res, nil
	}

	p, err := bot.NewPlayerWithBoard(side, board, cfg)
	if err != nil {
		return nil, err
	}
	res.Candidates = p.ScoreMoves()
	res.Nodes = p.LastStats().Nodes

	// same tie-break as the bot: the first top-scored move wins
	best := res.Candidates[0]
	for _, c := range res.Candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	res.Move, res.Score = best.Move, best.Score
	res.Notation = best.Move.String()
	return res, nil
}

// Simulate plays two bots against each other under the match rules
func (s *Service) Simulate(ctx context.Context, blackDifficulty, whiteDifficulty string, budget time.Duration) (*match.Result, error) {
	black, err := bot.NewPlayer(domain.Black, bot.ConfigFor(blackDifficulty, s.Engine))
	if err != nil {
		return nil, fmt.Errorf("black engine: %w", err)
	}
	white, err := bot.NewPlayer(domain.White, bot.ConfigFor(whiteDifficulty, s.Engine))
	if err != nil {
		return nil, fmt.Errorf("white engine: %w", err)
	}
	return match.NewRunner(black, white, budget).Run(ctx)
}
