package match

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iamasit07/othello/backend/internal/domain"
)

// Agent is anything that can play one side of a game. It is told the
// opponent's previous move (domain.Pass for none) and returns its own.
type Agent interface {
	DecideMove(opponentsMove domain.Move) (domain.Move, error)
}

type Reason string

const (
	ReasonCompleted   Reason = "completed"
	ReasonTimeout     Reason = "timeout"
	ReasonIllegalMove Reason = "illegal_move"
	ReasonIllegalPass Reason = "illegal_pass"
	ReasonAgentError  Reason = "agent_error"
)

type Result struct {
	Winner       domain.Side   `json:"-"`
	WinnerName   string        `json:"winner"` // "black", "white" or "draw"
	Reason       Reason        `json:"reason"`
	Disqualified domain.Side   `json:"-"`
	Detail       string        `json:"detail,omitempty"`
	BlackCount   int           `json:"blackCount"`
	WhiteCount   int           `json:"whiteCount"`
	Moves        []domain.Move `json:"moves"`
	BlackTime    time.Duration `json:"blackTimeNs"`
	WhiteTime    time.Duration `json:"whiteTimeNs"`
	Board        [][]int       `json:"board"`
}

// Runner referees a game between two agents. Each side gets Budget of total
// thinking time for the whole game; zero or negative means no limit.
type Runner struct {
	Black  Agent
	White  Agent
	Budget time.Duration
	// OnMove, if set, is called after every accepted ply
	OnMove func(side domain.Side, move domain.Move, board *domain.Board)
}

func NewRunner(black, white Agent, budget time.Duration) *Runner {
	return &Runner{Black: black, White: white, Budget: budget}
}

type decision struct {
	move domain.Move
	err  error
}

// Run plays the game to the end. It only returns an error when ctx is done;
// rule violations end the game with a disqualification instead.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	game := domain.NewGame()
	agents := map[domain.Side]Agent{domain.Black: r.Black, domain.White: r.White}
	used := map[domain.Side]time.Duration{}

	side := domain.Black
	last := domain.Pass
	var moves []domain.Move

	for !game.IsFinished() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		move, took, err := r.ask(ctx, agents[side], last, r.remaining(used[side]))
		used[side] += took

		switch {
		case errors.Is(err, errTimeout):
			return r.disqualify(game, side, ReasonTimeout, fmt.Sprintf("used %v of %v", used[side], r.Budget), moves, used), nil
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			return r.disqualify(game, side, ReasonAgentError, err.Error(), moves, used), nil
		}

		if move.IsPass() {
			if game.Board.HasAnyLegalMove(side) {
				return r.disqualify(game, side, ReasonIllegalPass, "passed with a legal move available", moves, used), nil
			}
		} else if err := game.MakeMove(side, move); err != nil {
			return r.disqualify(game, side, ReasonIllegalMove, fmt.Sprintf("%s: %v", move, err), moves, used), nil
		}

		moves = append(moves, move)
		if r.OnMove != nil {
			r.OnMove(side, move, game.Board)
		}
		last = move
		side = side.Opponent()
	}

	res := r.result(game, moves, used)
	res.Reason = ReasonCompleted
	log.Printf("[MATCH] Game completed: %s wins (%d-%d) in %d plies", res.WinnerName, res.BlackCount, res.WhiteCount, len(moves))
	return res, nil
}

func (r *Runner) remaining(used time.Duration) time.Duration {
	if r.Budget <= 0 {
		return 0
	}
	return r.Budget - used
}

var errTimeout = errors.New("time budget exceeded")

// ask runs the agent in its own goroutine so a slow search can be abandoned
// once the side's clock runs out. remaining <= 0 with a budget set is an
// immediate timeout; remaining == 0 without a budget waits forever.
func (r *Runner) ask(ctx context.Context, agent Agent, last domain.Move, remaining time.Duration) (domain.Move, time.Duration, error) {
	if r.Budget > 0 && remaining <= 0 {
		return domain.Pass, 0, errTimeout
	}

	done := make(chan decision, 1)
	start := time.Now()
	go func() {
		m, err := agent.DecideMove(last)
		done <- decision{move: m, err: err}
	}()

	var timeout <-chan time.Time
	if r.Budget > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case d := <-done:
		return d.move, time.Since(start), d.err
	case <-timeout:
		return domain.Pass, time.Since(start), errTimeout
	case <-ctx.Done():
		return domain.Pass, time.Since(start), ctx.Err()
	}
}

func (r *Runner) disqualify(game *domain.Game, side domain.Side, reason Reason, detail string, moves []domain.Move, used map[domain.Side]time.Duration) *Result {
	log.Printf("[MATCH] %s disqualified (%s): %s", side, reason, detail)
	game.Resign(side)
	res := r.result(game, moves, used)
	res.Reason = reason
	res.Disqualified = side
	res.Detail = detail
	return res
}

func (r *Runner) result(game *domain.Game, moves []domain.Move, used map[domain.Side]time.Duration) *Result {
	winnerName := "draw"
	if game.Winner.Valid() {
		winnerName = game.Winner.String()
	}
	return &Result{
		Winner:     game.Winner,
		WinnerName: winnerName,
		BlackCount: game.Board.Count(domain.Black),
		WhiteCount: game.Board.Count(domain.White),
		Moves:      moves,
		BlackTime:  used[domain.Black],
		WhiteTime:  used[domain.White],
		Board:      game.Board.Cells(),
	}
}
