package bot

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iamasit07/othello/backend/internal/config"
	"github.com/iamasit07/othello/backend/internal/domain"
)

func newPlayer(t *testing.T, side domain.Side, board *domain.Board, depth int) *Player {
	t.Helper()
	p, err := NewPlayerWithBoard(side, board, Config{Depth: depth, Weights: DefaultWeights()})
	if err != nil {
		t.Fatalf("NewPlayerWithBoard: %v", err)
	}
	return p
}

func TestOpeningDepthOne(t *testing.T) {
	p := newPlayer(t, domain.Black, domain.NewBoard(), 1)

	move, err := p.DecideMove(domain.Pass)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	// all four openings score the same; c4 comes first in enumeration order
	if want := (domain.Move{X: 2, Y: 3}); move != want {
		t.Errorf("DecideMove = %v; want %v", move, want)
	}

	b := p.Board()
	if b.At(2, 3) != domain.BlackDisc || b.At(3, 3) != domain.BlackDisc {
		t.Error("chosen move not committed to the player's board")
	}
}

func TestDecideMoveAppliesOpponentMove(t *testing.T) {
	p := newPlayer(t, domain.White, domain.NewBoard(), 2)

	move, err := p.DecideMove(domain.Move{X: 2, Y: 3})
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}

	want := domain.NewBoard()
	want.Apply(domain.Move{X: 2, Y: 3}, domain.Black)
	if !want.IsLegal(move, domain.White) {
		t.Fatalf("reply %v is not legal after c4", move)
	}
	want.Apply(move, domain.White)

	if diff := cmp.Diff(want.Cells(), p.Board().Cells()); diff != "" {
		t.Errorf("tracked board mismatch (-want +got):\n%s", diff)
	}
}

func TestDecideMoveRejectsBadOpponentMove(t *testing.T) {
	tests := []struct {
		name string
		move domain.Move
		want error
	}{
		{name: "illegal", move: domain.Move{X: 0, Y: 0}, want: domain.ErrIllegalMove},
		{name: "off the board", move: domain.Move{X: 9, Y: 0}, want: domain.ErrOutOfRange},
		{name: "negative", move: domain.Move{X: 3, Y: -2}, want: domain.ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlayer(t, domain.White, domain.NewBoard(), 1)

			_, err := p.DecideMove(tt.move)
			if !errors.Is(err, tt.want) {
				t.Fatalf("DecideMove error = %v; want %v", err, tt.want)
			}
			if tt.want == domain.ErrOutOfRange && errors.Is(err, domain.ErrIllegalMove) {
				t.Errorf("out-of-range move reported as illegal: %v", err)
			}
			if diff := cmp.Diff(domain.NewBoard().Cells(), p.Board().Cells()); diff != "" {
				t.Errorf("board changed after rejected move:\n%s", diff)
			}
		})
	}
}

func TestDecideMovePassWhenNoMoves(t *testing.T) {
	start := parseBoard(t,
		"BW......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"BW......",
	)
	p := newPlayer(t, domain.White, start, 3)

	// black plays c1; white still has nothing while black could play c8
	opponentMove := domain.Move{X: 2, Y: 0}
	move, err := p.DecideMove(opponentMove)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if !move.IsPass() {
		t.Fatalf("DecideMove = %v; want pass", move)
	}
	if p.LastStats().Nodes != 0 {
		t.Errorf("searched %d nodes for a forced pass", p.LastStats().Nodes)
	}

	want := start.Copy()
	want.Apply(opponentMove, domain.Black)
	if diff := cmp.Diff(want.Cells(), p.Board().Cells()); diff != "" {
		t.Errorf("board after pass (-want +got):\n%s", diff)
	}
	if p.Board().IsGameOver() {
		t.Error("position should not be game over")
	}
}

func TestDecideMoveGameOver(t *testing.T) {
	finished := parseBoard(t,
		"........",
		"........",
		"...BB...",
		"...BB...",
		"........",
		"........",
		"........",
		"........",
	)
	if !finished.IsGameOver() {
		t.Fatal("setup: expected game over")
	}

	for _, side := range []domain.Side{domain.Black, domain.White} {
		p := newPlayer(t, side, finished, 4)
		move, err := p.DecideMove(domain.Pass)
		if err != nil {
			t.Fatalf("%s: DecideMove: %v", side, err)
		}
		if !move.IsPass() {
			t.Errorf("%s: DecideMove = %v; want pass", side, move)
		}
		if p.LastStats().Nodes != 0 {
			t.Errorf("%s: search ran on a finished game", side)
		}
	}
}

// midgame positions reached by a fixed sequence of first-legal-move plays
func samplePositions(t *testing.T) []*domain.Board {
	t.Helper()
	var boards []*domain.Board
	g := domain.NewGame()
	for ply := 0; ply < 24 && !g.IsFinished(); ply++ {
		moves := g.Board.LegalMoves(g.CurrentSide)
		if err := g.MakeMove(g.CurrentSide, moves[ply%len(moves)]); err != nil {
			t.Fatalf("MakeMove: %v", err)
		}
		if ply%4 == 3 {
			boards = append(boards, g.Board.Copy())
		}
	}
	return boards
}

func TestDepthOneIsGreedy(t *testing.T) {
	eval := NewEvaluator(DefaultWeights())

	for i, board := range samplePositions(t) {
		for _, side := range []domain.Side{domain.Black, domain.White} {
			if !board.HasAnyLegalMove(side) {
				continue
			}
			p := newPlayer(t, side, board, 1)
			chosen, _ := p.BestMove()

			heuristic := func(m domain.Move) int {
				after := board.Copy()
				after.Apply(m, side)
				return eval.Evaluate(after, m, side, after.IsGameOver())
			}

			best := heuristic(chosen)
			for _, m := range board.LegalMoves(side) {
				if h := heuristic(m); h > best {
					t.Errorf("position %d %s: %v scores %d, better than chosen %v with %d", i, side, m, h, chosen, best)
				}
			}
		}
	}
}

func TestBestMoveTieBreak(t *testing.T) {
	for i, board := range samplePositions(t) {
		for _, depth := range []int{1, 2, 3} {
			side := domain.Black
			if !board.HasAnyLegalMove(side) {
				side = domain.White
			}
			p := newPlayer(t, side, board, depth)
			scored := p.ScoreMoves()
			if len(scored) == 0 {
				continue
			}

			// the first move holding the top score must be the one chosen
			want := scored[0]
			for _, sm := range scored[1:] {
				if sm.Score > want.Score {
					want = sm
				}
			}

			move, score := p.BestMove()
			if move != want.Move || score != want.Score {
				t.Errorf("position %d depth %d: BestMove = %v (%d); want %v (%d)", i, depth, move, score, want.Move, want.Score)
			}
		}
	}
}

func TestRootMovesMatchOracle(t *testing.T) {
	for i, board := range samplePositions(t) {
		for _, side := range []domain.Side{domain.Black, domain.White} {
			p := newPlayer(t, side, board, 1)
			var got []domain.Move
			for _, sm := range p.ScoreMoves() {
				got = append(got, sm.Move)
			}
			if diff := cmp.Diff(board.LegalMoves(side), got); diff != "" {
				t.Errorf("position %d %s: considered moves differ from legal moves (-legal +considered):\n%s", i, side, diff)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	play := func() []domain.Move {
		black := newPlayer(t, domain.Black, domain.NewBoard(), 3)
		white := newPlayer(t, domain.White, domain.NewBoard(), 2)

		var moves []domain.Move
		last := domain.Pass
		for i := 0; i < 12; i++ {
			mover := black
			if i%2 == 1 {
				mover = white
			}
			m, err := mover.DecideMove(last)
			if err != nil {
				t.Fatalf("ply %d: %v", i, err)
			}
			moves = append(moves, m)
			last = m
		}
		return moves
	}

	first := play()
	for run := 0; run < 3; run++ {
		if diff := cmp.Diff(first, play()); diff != "" {
			t.Fatalf("run %d diverged (-first +again):\n%s", run, diff)
		}
	}
}

func TestSelfPlayFullGame(t *testing.T) {
	black := newPlayer(t, domain.Black, domain.NewBoard(), 2)
	white := newPlayer(t, domain.White, domain.NewBoard(), 1)
	referee := domain.NewGame()

	last := domain.Pass
	players := map[domain.Side]*Player{domain.Black: black, domain.White: white}
	side := domain.Black
	consecutivePasses := 0

	for consecutivePasses < 2 {
		m, err := players[side].DecideMove(last)
		if err != nil {
			t.Fatalf("%s: %v", side, err)
		}
		if m.IsPass() {
			consecutivePasses++
			if referee.Board.HasAnyLegalMove(side) {
				t.Fatalf("%s passed with legal moves available", side)
			}
		} else {
			consecutivePasses = 0
			if err := referee.Board.Play(m, side); err != nil {
				t.Fatalf("%s played %v: %v", side, m, err)
			}
		}
		last = m
		side = side.Opponent()
	}

	if !referee.Board.IsGameOver() {
		t.Error("both bots passed before the game was over")
	}
	for _, p := range players {
		if diff := cmp.Diff(referee.Board.Cells(), p.Board().Cells()); diff != "" {
			t.Errorf("%s lost track of the board:\n%s", p.Side(), diff)
		}
	}
}

func TestNewPlayerValidation(t *testing.T) {
	if _, err := NewPlayer(domain.Side(7), DefaultConfig()); !errors.Is(err, domain.ErrInvalidSide) {
		t.Errorf("invalid side error = %v", err)
	}
	if _, err := NewPlayer(domain.Black, Config{Depth: 0, Weights: DefaultWeights()}); err == nil {
		t.Error("depth 0 accepted")
	}
	if _, err := NewPlayer(domain.Black, Config{Depth: 2, Weights: Weights{Corner: 1, Side: 3, GameOverMultiplier: 5}}); !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("bad weights error = %v", err)
	}
}

func TestConfigFor(t *testing.T) {
	ec := config.EngineConfig{
		CornerWeight:       12,
		SideWeight:         4,
		GameOverMultiplier: 50,
		DepthEasy:          1,
		DepthMedium:        3,
		DepthHard:          5,
	}

	tests := []struct {
		difficulty string
		wantDepth  int
	}{
		{DifficultyEasy, 1},
		{DifficultyMedium, 3},
		{DifficultyHard, 5},
		{"", 3},
		{"impossible", 3},
	}
	for _, tt := range tests {
		cfg := ConfigFor(tt.difficulty, ec)
		if cfg.Depth != tt.wantDepth {
			t.Errorf("ConfigFor(%q).Depth = %d; want %d", tt.difficulty, cfg.Depth, tt.wantDepth)
		}
		if diff := cmp.Diff(Weights{Corner: 12, Side: 4, GameOverMultiplier: 50}, cfg.Weights); diff != "" {
			t.Errorf("ConfigFor(%q) weights (-want +got):\n%s", tt.difficulty, diff)
		}
	}

	if got := ConfigFor(DifficultyHard, config.EngineConfig{}).Depth; got != DEFAULT_DEPTH_HARD {
		t.Errorf("unset hard depth = %d; want %d", got, DEFAULT_DEPTH_HARD)
	}
}

func TestCalculateBestMove(t *testing.T) {
	board := domain.NewBoard()
	before := board.Cells()

	move, _, stats, err := CalculateBestMove(board, domain.Black, Config{Depth: 1, Weights: DefaultWeights()})
	if err != nil {
		t.Fatalf("CalculateBestMove: %v", err)
	}
	if want := (domain.Move{X: 2, Y: 3}); move != want {
		t.Errorf("move = %v; want %v", move, want)
	}
	if stats.Nodes != 4 {
		t.Errorf("Nodes = %d; want 4", stats.Nodes)
	}
	if diff := cmp.Diff(before, board.Cells()); diff != "" {
		t.Errorf("input board mutated:\n%s", diff)
	}
}
