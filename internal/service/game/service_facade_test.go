package game

import (
	"context"
	"errors"
	"testing"

	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/iamasit07/othello/backend/internal/service/bot"
)

func TestAnalyzeMatchesCandidates(t *testing.T) {
	svc := NewService(nil, testSettings(0).Engine)

	board := domain.NewBoard()
	board.Apply(domain.Move{X: 2, Y: 3}, domain.Black)

	res, err := svc.Analyze(board, domain.White, "hard")
	if err != nil {
		t.Fatal(err)
	}
	if res.Depth != 3 || res.Difficulty != "hard" {
		t.Errorf("depth %d difficulty %q", res.Depth, res.Difficulty)
	}
	if len(res.Candidates) != len(board.LegalMoves(domain.White)) {
		t.Fatalf("%d candidates for %d legal moves", len(res.Candidates), len(board.LegalMoves(domain.White)))
	}

	// the chosen move is the first candidate with the top score
	best := res.Candidates[0]
	for _, c := range res.Candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	if res.Move != best.Move || res.Score != best.Score {
		t.Errorf("picked %v (%d), candidates say %v (%d)", res.Move, res.Score, best.Move, best.Score)
	}

	// one search, so the node count is that of a single best-move search
	move, score, stats, err := bot.CalculateBestMove(board, domain.White, bot.ConfigFor("hard", svc.Engine))
	if err != nil {
		t.Fatal(err)
	}
	if res.Nodes == 0 || res.Nodes != stats.Nodes {
		t.Errorf("nodes = %d; a single search visits %d", res.Nodes, stats.Nodes)
	}
	if res.Move != move || res.Score != score {
		t.Errorf("analysis %v (%d); best-move search says %v (%d)", res.Move, res.Score, move, score)
	}
}

func TestAnalyzeRejectsBadSide(t *testing.T) {
	svc := NewService(nil, testSettings(0).Engine)
	if _, err := svc.Analyze(domain.NewBoard(), domain.Side(0), "easy"); !errors.Is(err, domain.ErrInvalidSide) {
		t.Fatalf("err = %v, want ErrInvalidSide", err)
	}
}

func TestSimulateCancelled(t *testing.T) {
	svc := NewService(nil, testSettings(0).Engine)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Simulate(ctx, "easy", "easy", 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
