package bot

import (
	"fmt"
	"math"

	"github.com/iamasit07/othello/backend/internal/domain"
)

// MINIMUM_MAX_VALUE sits below every score the search can return
const MINIMUM_MAX_VALUE = math.MinInt

type Config struct {
	Depth   int     `json:"depth"`
	Weights Weights `json:"weights"`
}

func DefaultConfig() Config {
	return Config{Depth: DEFAULT_DEPTH_MEDIUM, Weights: DefaultWeights()}
}

func (c Config) Validate() error {
	if c.Depth < 1 {
		return fmt.Errorf("search depth must be at least 1, got %d", c.Depth)
	}
	return c.Weights.Validate()
}

// Player is the bot for one side of one game. It keeps its own copy of the
// board and updates it from the opponent's moves and its own decisions.
type Player struct {
	side      domain.Side
	board     *domain.Board
	depth     int
	searcher  *Searcher
	lastStats Stats
}

func NewPlayer(side domain.Side, cfg Config) (*Player, error) {
	return NewPlayerWithBoard(side, domain.NewBoard(), cfg)
}

// NewPlayerWithBoard starts the bot from an arbitrary position. The board is copied.
func NewPlayerWithBoard(side domain.Side, board *domain.Board, cfg Config) (*Player, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidSide, int(side))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Player{
		side:     side,
		board:    board.Copy(),
		depth:    cfg.Depth,
		searcher: NewSearcher(NewEvaluator(cfg.Weights)),
	}, nil
}

func (p *Player) Side() domain.Side {
	return p.side
}

func (p *Player) Depth() int {
	return p.depth
}

// Board returns a snapshot of the position the bot believes it is in
func (p *Player) Board() *domain.Board {
	return p.board.Copy()
}

// LastStats reports the search effort of the most recent decision
func (p *Player) LastStats() Stats {
	return p.lastStats
}

// DecideMove records the opponent's last move (domain.Pass on the first turn or
// after a pass) and returns the bot's reply, or domain.Pass if it has none.
// The reply is already applied to the bot's board.
func (p *Player) DecideMove(opponentsMove domain.Move) (domain.Move, error) {
	opponent := p.side.Opponent()
	if !opponentsMove.IsPass() {
		if !opponentsMove.InBounds() {
			return domain.Pass, fmt.Errorf("opponent move: %w: (%d, %d)", domain.ErrOutOfRange, opponentsMove.X, opponentsMove.Y)
		}
		if err := p.board.Play(opponentsMove, opponent); err != nil {
			return domain.Pass, fmt.Errorf("opponent move: %w", err)
		}
	}

	p.lastStats = Stats{}
	if !p.board.HasAnyLegalMove(p.side) {
		return domain.Pass, nil
	}

	best, _ := p.BestMove()
	p.board.Apply(best, p.side)
	return best, nil
}

// BestMove searches every legal root move without committing anything.
// Ties go to the first move in enumeration order.
func (p *Player) BestMove() (domain.Move, int) {
	p.searcher.ResetStats()
	defer func() { p.lastStats = p.searcher.Stats() }()

	bestMove := domain.Pass
	bestScore := MINIMUM_MAX_VALUE

	for x := 0; x < domain.BoardSize; x++ {
		for y := 0; y < domain.BoardSize; y++ {
			m := domain.Move{X: x, Y: y}
			if !p.board.IsLegal(m, p.side) {
				continue
			}
			score := p.searcher.Search(p.board, m, p.depth-1, p.side)
			if score > bestScore {
				bestMove = m
				bestScore = score
			}
		}
	}

	if bestMove.IsPass() {
		return domain.Pass, 0
	}
	return bestMove, bestScore
}

// ScoreMoves returns the root search score for every legal move, in enumeration order
func (p *Player) ScoreMoves() []ScoredMove {
	p.searcher.ResetStats()
	moves := p.board.LegalMoves(p.side)
	scored := make([]ScoredMove, 0, len(moves))
	for _, m := range moves {
		scored = append(scored, ScoredMove{Move: m, Score: p.searcher.Search(p.board, m, p.depth-1, p.side)})
	}
	p.lastStats = p.searcher.Stats()
	return scored
}

type ScoredMove struct {
	Move  domain.Move `json:"move"`
	Score int         `json:"score"`
}
