package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/iamasit07/othello/backend/internal/config"
	"github.com/iamasit07/othello/backend/internal/domain"
)

type fakeConn struct {
	mu      sync.Mutex
	msgs    []domain.ServerMessage
	removed []int64
}

func (f *fakeConn) SendMessage(userID int64, message domain.ServerMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, message)
	return nil
}

func (f *fakeConn) RemoveConnection(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, userID)
}

func (f *fakeConn) ofType(msgType string) []domain.ServerMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ServerMessage
	for _, m := range f.msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

type fakeRepo struct {
	mu      sync.Mutex
	records []*domain.GameRecord
}

func (r *fakeRepo) SaveGame(record *domain.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *fakeRepo) saved() []*domain.GameRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.GameRecord(nil), r.records...)
}

// fakeLive behaves like the Redis store: the last write wins
type fakeLive struct {
	mu        sync.Mutex
	saveDelay time.Duration
	games     map[string]*domain.LiveGame
	seen      map[string]bool
	deleted   map[string]bool
}

func newFakeLive() *fakeLive {
	return &fakeLive{games: map[string]*domain.LiveGame{}, seen: map[string]bool{}, deleted: map[string]bool{}}
}

func (l *fakeLive) SaveLiveGame(ctx context.Context, g *domain.LiveGame) error {
	time.Sleep(l.saveDelay)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.games[g.GameID] = g
	l.seen[g.GameID] = true
	return nil
}

func (l *fakeLive) DeleteLiveGame(ctx context.Context, gameID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.games, gameID)
	l.deleted[gameID] = true
	return nil
}

func (l *fakeLive) state(gameID string) (seen, present bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, present = l.games[gameID]
	return l.seen[gameID], present
}

func (l *fakeLive) wasDeleted(gameID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deleted[gameID]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testSettings(botDelay time.Duration) Settings {
	return Settings{
		Engine: config.EngineConfig{
			CornerWeight:       10,
			SideWeight:         3,
			GameOverMultiplier: 100,
			DepthEasy:          1,
			DepthMedium:        2,
			DepthHard:          3,
		},
		BotMoveDelay:   botDelay,
		PostGameWindow: time.Hour,
	}
}

// snapshot reads session state under its lock
func snapshot(gs *GameSession) (current domain.Side, finished bool, board *domain.Board) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.Game.CurrentSide, gs.Game.IsFinished(), gs.Game.Board.Copy()
}

func TestCreateSessionSendsGameStart(t *testing.T) {
	conn := &fakeConn{}
	sm := NewSessionManager(&fakeRepo{}, nil, testSettings(time.Hour))

	gs, err := sm.CreateSession(7, "alice", domain.Black, "easy", conn)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	starts := conn.ofType("game_start")
	if len(starts) != 1 {
		t.Fatalf("got %d game_start messages; want 1", len(starts))
	}
	start := starts[0]
	if start.GameID != gs.GameID || start.YourSide != "black" || start.CurrentTurn != "black" {
		t.Errorf("game_start = %+v", start)
	}
	if start.Opponent != domain.GetBotName("easy") {
		t.Errorf("Opponent = %q", start.Opponent)
	}
	if diff := cmp.Diff(domain.NewBoard().LegalMoves(domain.Black), start.LegalMoves); diff != "" {
		t.Errorf("legal moves (-want +got):\n%s", diff)
	}
	if got, ok := sm.GetSessionByUserID(7); !ok || got != gs {
		t.Error("session not registered for the user")
	}

	if _, err := sm.CreateSession(8, "bob", domain.Side(0), "easy", conn); !errors.Is(err, domain.ErrInvalidSide) {
		t.Errorf("invalid side error = %v", err)
	}
}

func TestHumanMoveTriggersBotReply(t *testing.T) {
	conn := &fakeConn{}
	live := newFakeLive()
	sm := NewSessionManager(&fakeRepo{}, live, testSettings(0))

	gs, err := sm.CreateSession(1, "alice", domain.Black, "medium", conn)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := gs.HandleMove(1, domain.Move{X: 0, Y: 0}, conn); !errors.Is(err, domain.ErrIllegalMove) {
		t.Errorf("illegal move error = %v", err)
	}
	if err := gs.HandleMove(1, domain.Move{X: 9, Y: 0}, conn); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("out of range error = %v", err)
	}
	if err := gs.HandleMove(2, domain.Move{X: 2, Y: 3}, conn); err == nil {
		t.Error("move from a stranger accepted")
	}

	if err := gs.HandleMove(1, domain.Move{X: 2, Y: 3}, conn); err != nil {
		t.Fatalf("HandleMove: %v", err)
	}

	waitFor(t, "bot reply", func() bool { return len(conn.ofType("move_made")) == 2 })

	moves := conn.ofType("move_made")
	if moves[0].Side != "black" || *moves[0].Move != (domain.Move{X: 2, Y: 3}) {
		t.Errorf("first move_made = %+v", moves[0])
	}
	if moves[1].Side != "white" || moves[1].CurrentTurn != "black" {
		t.Errorf("bot move_made = %+v", moves[1])
	}
	if len(moves[1].LegalMoves) == 0 {
		t.Error("bot move_made should list the human's legal moves")
	}

	_, _, board := snapshot(gs)
	gs.mu.Lock()
	botBoard := gs.Bot.Board()
	gs.mu.Unlock()
	if diff := cmp.Diff(board.Cells(), botBoard.Cells()); diff != "" {
		t.Errorf("bot board out of sync (-game +bot):\n%s", diff)
	}

	waitFor(t, "live snapshot", func() bool {
		seen, present := live.state(gs.GameID)
		return seen && present
	})
}

func TestBotOpensWhenHumanIsWhite(t *testing.T) {
	conn := &fakeConn{}
	sm := NewSessionManager(&fakeRepo{}, nil, testSettings(50*time.Millisecond))

	gs, err := sm.CreateSession(1, "alice", domain.White, "easy", conn)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := gs.HandleMove(1, domain.Move{X: 2, Y: 4}, conn); !errors.Is(err, domain.ErrNotYourTurn) {
		t.Errorf("early move error = %v; want ErrNotYourTurn", err)
	}

	waitFor(t, "bot opening", func() bool { return len(conn.ofType("move_made")) == 1 })

	opening := conn.ofType("move_made")[0]
	if opening.Side != "black" || opening.CurrentTurn != "white" {
		t.Errorf("opening = %+v", opening)
	}
	// easy is depth one: every opening scores the same and the first is chosen
	if *opening.Move != (domain.Move{X: 2, Y: 3}) {
		t.Errorf("bot opened %v; want c4", *opening.Move)
	}
}

// playOut drives a whole game synchronously: the human always plays its
// first legal move and bot turns are run directly instead of via the timer.
func playOut(t *testing.T, gs *GameSession, conn *fakeConn) {
	t.Helper()
	for ply := 0; ply < 200; ply++ {
		current, finished, board := snapshot(gs)
		if finished {
			return
		}
		if current == gs.HumanSide {
			gs.mu.Lock()
			botBoard := gs.Bot.Board()
			pending := gs.lastHumanMove
			gs.mu.Unlock()
			if pending.IsPass() {
				if diff := cmp.Diff(board.Cells(), botBoard.Cells()); diff != "" {
					t.Fatalf("ply %d: bot board out of sync:\n%s", ply, diff)
				}
			}
			if err := gs.HandleMove(gs.UserID, board.LegalMoves(gs.HumanSide)[0], conn); err != nil {
				t.Fatalf("ply %d: HandleMove: %v", ply, err)
			}
		} else if err := gs.HandleBotMove(conn); err != nil {
			t.Fatalf("ply %d: HandleBotMove: %v", ply, err)
		}
	}
	t.Fatal("game did not finish")
}

func TestFullGameIsPersisted(t *testing.T) {
	for _, side := range []domain.Side{domain.Black, domain.White} {
		t.Run(side.String(), func(t *testing.T) {
			conn := &fakeConn{}
			repo := &fakeRepo{}
			live := newFakeLive()
			sm := NewSessionManager(repo, live, testSettings(time.Hour))

			gs, err := sm.CreateSession(3, "carol", side, "medium", conn)
			if err != nil {
				t.Fatalf("CreateSession: %v", err)
			}
			playOut(t, gs, conn)

			overs := conn.ofType("game_over")
			if len(overs) != 1 {
				t.Fatalf("got %d game_over messages; want 1", len(overs))
			}
			over := overs[0]
			if over.Reason != ReasonGameComplete || over.AllowRematch == nil || !*over.AllowRematch {
				t.Errorf("game_over = %+v", over)
			}

			waitFor(t, "saved record", func() bool { return len(repo.saved()) == 1 })
			rec := repo.saved()[0]

			gs.mu.Lock()
			history := append([]domain.Move(nil), gs.Game.History...)
			winner := gs.Game.Winner
			gs.mu.Unlock()

			if diff := cmp.Diff(history, rec.Moves); diff != "" {
				t.Errorf("recorded moves (-game +record):\n%s", diff)
			}
			if rec.WinnerSide != winner || rec.HumanSide != side || rec.BotDifficulty != "medium" {
				t.Errorf("record = %+v", rec)
			}
			if rec.BlackCount != over.BlackCount || rec.WhiteCount != over.WhiteCount {
				t.Errorf("record counts %d-%d, game_over %d-%d", rec.BlackCount, rec.WhiteCount, over.BlackCount, over.WhiteCount)
			}

			passes := 0
			for _, m := range history {
				if m.IsPass() {
					passes++
				}
			}
			if got := len(conn.ofType("pass")); got != passes {
				t.Errorf("sent %d pass messages for %d recorded passes", got, passes)
			}

			waitFor(t, "snapshot cleared", func() bool {
				_, present := live.state(gs.GameID)
				return !present
			})

			// rematch replaces the finished session with a new one
			next, err := gs.HandleRematchRequest(3, conn)
			if err != nil {
				t.Fatalf("HandleRematchRequest: %v", err)
			}
			if next.GameID == gs.GameID || next.HumanSide != side {
				t.Errorf("rematch session = %s as %s", next.GameID, next.HumanSide)
			}
			if _, ok := sm.GetSessionByGameID(gs.GameID); ok {
				t.Error("finished session still registered after rematch")
			}
			if got, ok := sm.GetSessionByUserID(3); !ok || got != next {
				t.Error("user not pointed at the rematch")
			}
		})
	}
}

func TestFinishedGameLeavesNoSnapshot(t *testing.T) {
	conn := &fakeConn{}
	live := newFakeLive()
	live.saveDelay = 20 * time.Millisecond
	sm := NewSessionManager(&fakeRepo{}, live, testSettings(time.Hour))

	gs, err := sm.CreateSession(6, "gina", domain.Black, "easy", conn)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	playOut(t, gs, conn)

	waitFor(t, "snapshot delete", func() bool { return live.wasDeleted(gs.GameID) })
	gs.live.wait()
	time.Sleep(100 * time.Millisecond)

	if _, present := live.state(gs.GameID); present {
		t.Error("finished game still published to spectators")
	}
}

func TestAbandonment(t *testing.T) {
	conn := &fakeConn{}
	repo := &fakeRepo{}
	sm := NewSessionManager(repo, nil, testSettings(time.Hour))

	gs, err := sm.CreateSession(5, "dave", domain.Black, "hard", conn)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if _, err := gs.HandleRematchRequest(5, conn); err == nil {
		t.Error("rematch accepted while the game is running")
	}

	if err := gs.TerminateSessionByAbandonment(5, conn); err != nil {
		t.Fatalf("TerminateSessionByAbandonment: %v", err)
	}
	if err := gs.TerminateSessionByAbandonment(5, conn); !errors.Is(err, domain.ErrGameFinished) {
		t.Errorf("second abandonment error = %v", err)
	}

	over := conn.ofType("game_over")
	if len(over) != 1 {
		t.Fatalf("got %d game_over messages", len(over))
	}
	if over[0].Winner != domain.GetBotName("hard") || over[0].Reason != ReasonSurrender || *over[0].AllowRematch {
		t.Errorf("game_over = %+v", over[0])
	}

	waitFor(t, "saved record", func() bool { return len(repo.saved()) == 1 })
	if rec := repo.saved()[0]; rec.WinnerSide != domain.White || rec.HumanScore() != 0 {
		t.Errorf("record = %+v", rec)
	}

	if _, err := gs.HandleRematchRequest(5, conn); err == nil {
		t.Error("rematch accepted after surrender")
	}
}

func TestHandleDisconnectRemovesSession(t *testing.T) {
	conn := &fakeConn{}
	sm := NewSessionManager(&fakeRepo{}, nil, testSettings(time.Hour))

	gs, err := sm.CreateSession(9, "erin", domain.Black, "easy", conn)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := gs.HandleDisconnect(9, conn); err != nil {
		t.Fatalf("HandleDisconnect: %v", err)
	}

	if _, ok := sm.GetSessionByUserID(9); ok {
		t.Error("session still registered")
	}
	if over := conn.ofType("game_over"); len(over) != 1 || over[0].Reason != ReasonDisconnect {
		t.Errorf("game_over = %+v", over)
	}
}

func TestActiveGamesAndCleanup(t *testing.T) {
	conn := &fakeConn{}
	sm := NewSessionManager(&fakeRepo{}, nil, testSettings(time.Hour))

	old, _ := sm.CreateSession(1, "old", domain.Black, "easy", conn)
	fresh, _ := sm.CreateSession(2, "fresh", domain.Black, "hard", conn)
	done, _ := sm.CreateSession(3, "done", domain.Black, "medium", conn)
	done.TerminateSessionByAbandonment(3, conn)

	old.mu.Lock()
	old.CreatedAt = time.Now().Add(-25 * time.Hour)
	old.mu.Unlock()

	active := sm.GetActiveGames()
	if len(active) != 2 {
		t.Fatalf("GetActiveGames returned %d games; want 2", len(active))
	}
	if active[0].GameID != old.GameID || active[1].GameID != fresh.GameID {
		t.Errorf("active games not ordered by start time: %+v", active)
	}

	sm.CleanupOldSessions()

	if _, ok := sm.GetSessionByGameID(old.GameID); ok {
		t.Error("stale session survived cleanup")
	}
	if _, ok := sm.GetSessionByGameID(fresh.GameID); !ok {
		t.Error("fresh session removed")
	}
	if _, ok := sm.GetSessionByGameID(done.GameID); !ok {
		t.Error("recently finished session removed before its hour was up")
	}
}

func TestForceCleanupForUser(t *testing.T) {
	conn := &fakeConn{}
	sm := NewSessionManager(&fakeRepo{}, nil, testSettings(time.Hour))

	sm.CreateSession(4, "frank", domain.Black, "easy", conn)
	sm.ForceCleanupForUser(4, conn)

	if _, ok := sm.GetSessionByUserID(4); ok {
		t.Error("session still registered")
	}
	if over := conn.ofType("game_over"); len(over) != 1 || over[0].Reason != ReasonSurrender {
		t.Errorf("game_over = %+v", over)
	}
}
