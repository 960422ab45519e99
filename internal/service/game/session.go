package game

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/iamasit07/othello/backend/internal/service/bot"
)

const (
	ReasonGameComplete = "game_complete"
	ReasonSurrender    = "surrender"
	ReasonDisconnect   = "disconnect"
	ReasonEngineError  = "engine_error"
)

type GameSession struct {
	GameID        string
	UserID        int64
	Username      string
	HumanSide     domain.Side
	BotName       string
	BotDifficulty string
	Game          *domain.Game
	// Bot tracks its own copy of the board and must hear about every human ply
	Bot           *bot.Player
	Reason        string
	CreatedAt     time.Time
	FinishedAt    time.Time
	PostGameTimer *time.Timer

	lastHumanMove  domain.Move // not yet told to the bot
	botTimer       *time.Timer
	mu             sync.Mutex
	repo           GameRepository
	live           *snapshotWriter
	settings       Settings
	sessionManager *SessionManager
}

func (gs *GameSession) botSide() domain.Side {
	return gs.HumanSide.Opponent()
}

func (gs *GameSession) usernameOf(side domain.Side) string {
	if side == gs.HumanSide {
		return gs.Username
	}
	return gs.BotName
}

// stateMessage fills in the board part shared by every server message
func (gs *GameSession) stateMessage(msgType string) domain.ServerMessage {
	msg := domain.ServerMessage{
		Type:       msgType,
		GameID:     gs.GameID,
		Board:      gs.Game.Board.Cells(),
		BlackCount: gs.Game.Board.Count(domain.Black),
		WhiteCount: gs.Game.Board.Count(domain.White),
	}
	if !gs.Game.IsFinished() {
		msg.CurrentTurn = gs.Game.CurrentSide.String()
		if gs.Game.CurrentSide == gs.HumanSide {
			msg.LegalMoves = gs.Game.Board.LegalMoves(gs.HumanSide)
		}
	}
	return msg
}

// HandleMove plays the human's move, tells the bot about it and, when it is
// the bot's turn, schedules the reply.
func (gs *GameSession) HandleMove(userID int64, move domain.Move, conn ConnectionManagerInterface) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if userID != gs.UserID {
		return fmt.Errorf("player not found in game")
	}
	if !move.InBounds() {
		return domain.ErrOutOfRange
	}
	if err := gs.Game.MakeMove(gs.HumanSide, move); err != nil {
		return err
	}
	gs.lastHumanMove = move

	msg := gs.stateMessage("move_made")
	msg.Move = &move
	msg.Side = gs.HumanSide.String()
	conn.SendMessage(gs.UserID, msg)
	gs.publishSnapshot(&move)

	if gs.Game.IsFinished() {
		gs.finishLocked(ReasonGameComplete, conn)
		return nil
	}

	if gs.Game.CurrentSide == gs.HumanSide {
		// bot has nothing to play; it still needs to see the move
		if err := gs.feedBotPassLocked(); err != nil {
			log.Printf("[BOT] Game %s: %v", gs.GameID, err)
			gs.abortLocked(conn)
			return nil
		}
		gs.sendPassLocked(gs.botSide(), conn)
		return nil
	}

	gs.scheduleBotTurn(conn)
	return nil
}

// feedBotPassLocked hands the pending human move to the bot when the bot
// is forced to pass.
func (gs *GameSession) feedBotPassLocked() error {
	reply, err := gs.Bot.DecideMove(gs.lastHumanMove)
	gs.lastHumanMove = domain.Pass
	if err != nil {
		return err
	}
	if !reply.IsPass() {
		return fmt.Errorf("bot answered %v where it had to pass", reply)
	}
	return nil
}

func (gs *GameSession) sendPassLocked(side domain.Side, conn ConnectionManagerInterface) {
	log.Printf("[SESSION] Game %s: %s has no legal move and passes", gs.GameID, side)
	msg := gs.stateMessage("pass")
	msg.Side = side.String()
	conn.SendMessage(gs.UserID, msg)
}

func (gs *GameSession) scheduleBotTurn(conn ConnectionManagerInterface) {
	gs.botTimer = time.AfterFunc(gs.settings.BotMoveDelay, func() {
		if err := gs.HandleBotMove(conn); err != nil {
			log.Printf("[BOT] Error handling bot move: %v", err)
		}
	})
}

// HandleBotMove lets the bot play until the turn is the human's again or the
// game ends. The loop covers the human being forced to pass.
func (gs *GameSession) HandleBotMove(conn ConnectionManagerInterface) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	for !gs.Game.IsFinished() && gs.Game.CurrentSide == gs.botSide() {
		start := time.Now()
		move, err := gs.Bot.DecideMove(gs.lastHumanMove)
		gs.lastHumanMove = domain.Pass
		if err != nil {
			gs.abortLocked(conn)
			return fmt.Errorf("game %s: %w", gs.GameID, err)
		}
		if err := gs.Game.MakeMove(gs.botSide(), move); err != nil {
			gs.abortLocked(conn)
			return fmt.Errorf("game %s: bot played %v: %w", gs.GameID, move, err)
		}

		stats := gs.Bot.LastStats()
		log.Printf("[BOT] Game %s: %s played %s (%d nodes, %v)", gs.GameID, gs.BotName, move, stats.Nodes, time.Since(start).Round(time.Millisecond))

		msg := gs.stateMessage("move_made")
		msg.Move = &move
		msg.Side = gs.botSide().String()
		conn.SendMessage(gs.UserID, msg)
		gs.publishSnapshot(&move)

		if gs.Game.IsFinished() {
			gs.finishLocked(ReasonGameComplete, conn)
			return nil
		}
		if gs.Game.CurrentSide == gs.botSide() {
			gs.sendPassLocked(gs.HumanSide, conn)
		}
	}
	return nil
}

// abortLocked ends the game when the bot's view of the board can no longer be trusted
func (gs *GameSession) abortLocked(conn ConnectionManagerInterface) {
	gs.Game.Resign(gs.botSide())
	gs.finishLocked(ReasonEngineError, conn)
}

func (gs *GameSession) finishLocked(reason string, conn ConnectionManagerInterface) {
	gs.FinishedAt = time.Now()
	gs.Reason = reason

	winner := "draw"
	if gs.Game.Winner.Valid() {
		winner = gs.usernameOf(gs.Game.Winner)
	}

	allowRematch := reason == ReasonGameComplete || reason == ReasonEngineError
	msg := gs.stateMessage("game_over")
	msg.Winner = winner
	msg.Reason = reason
	msg.AllowRematch = &allowRematch
	conn.SendMessage(gs.UserID, msg)

	log.Printf("[GAME] Game %s over (%s): winner %s, %d-%d", gs.GameID, reason, winner, msg.BlackCount, msg.WhiteCount)

	gs.saveGameAsync(gs.record(winner))
	gs.clearSnapshot()

	if allowRematch {
		gs.StartPostGameTimer(conn)
	}
}

func (gs *GameSession) record(winner string) *domain.GameRecord {
	return &domain.GameRecord{
		GameID:        gs.GameID,
		UserID:        gs.UserID,
		Username:      gs.Username,
		HumanSide:     gs.HumanSide,
		BotName:       gs.BotName,
		BotDifficulty: gs.BotDifficulty,
		Winner:        winner,
		WinnerSide:    gs.Game.Winner,
		Reason:        gs.Reason,
		Moves:         append([]domain.Move(nil), gs.Game.History...),
		BlackCount:    gs.Game.Board.Count(domain.Black),
		WhiteCount:    gs.Game.Board.Count(domain.White),
		Board:         gs.Game.Board.Cells(),
		CreatedAt:     gs.CreatedAt,
		FinishedAt:    gs.FinishedAt,
	}
}

// Saves game data to database in background to avoid blocking game_over messages
func (gs *GameSession) saveGameAsync(record *domain.GameRecord) {
	if gs.repo == nil {
		return
	}
	go func() {
		if err := gs.repo.SaveGame(record); err != nil {
			log.Printf("[GAME] Error saving game %s: %v", record.GameID, err)
		} else {
			log.Printf("[GAME] Game %s saved successfully", record.GameID)
		}
	}()
}

func (gs *GameSession) snapshotLocked(last *domain.Move) *domain.LiveGame {
	snapshot := &domain.LiveGame{
		GameID:        gs.GameID,
		Username:      gs.Username,
		BotName:       gs.BotName,
		BotDifficulty: gs.BotDifficulty,
		HumanSide:     gs.HumanSide.String(),
		Board:         gs.Game.Board.Cells(),
		BlackCount:    gs.Game.Board.Count(domain.Black),
		WhiteCount:    gs.Game.Board.Count(domain.White),
		MoveCount:     gs.Game.MoveCount,
		LastMove:      last,
		Finished:      gs.Game.IsFinished(),
		StartedAt:     gs.CreatedAt,
		UpdatedAt:     time.Now(),
	}
	if !snapshot.Finished {
		snapshot.CurrentTurn = gs.Game.CurrentSide.String()
	}
	return snapshot
}

// Snapshot is the spectator view of the game right now
func (gs *GameSession) Snapshot() *domain.LiveGame {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	var last *domain.Move
	if n := len(gs.Game.History); n > 0 {
		m := gs.Game.History[n-1]
		last = &m
	}
	return gs.snapshotLocked(last)
}

// publishSnapshot and clearSnapshot run under gs.mu, so the writer queues
// them in game order.
func (gs *GameSession) publishSnapshot(last *domain.Move) {
	if gs.live == nil {
		return
	}
	gs.live.publish(gs.snapshotLocked(last))
}

func (gs *GameSession) clearSnapshot() {
	if gs.live == nil {
		return
	}
	gs.live.remove()
}

func (gs *GameSession) HandleDisconnect(userID int64, conn ConnectionManagerInterface) error {
	gs.mu.Lock()

	if !gs.Game.IsFinished() {
		log.Printf("[DISCONNECT] Player %s (ID: %d) disconnected from game %s - ending by abandonment", gs.Username, userID, gs.GameID)
		gs.Game.Resign(gs.HumanSide)
		gs.finishLocked(ReasonDisconnect, conn)
	}
	gs.stopTimersLocked()
	conn.RemoveConnection(gs.UserID)
	gameID := gs.GameID
	gs.mu.Unlock()

	gs.sessionManager.RemoveSession(gameID)
	return nil
}

func (gs *GameSession) TerminateSessionByAbandonment(userID int64, conn ConnectionManagerInterface) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Game.IsFinished() {
		return domain.ErrGameFinished
	}

	log.Printf("[TERMINATE] Game %s terminated by abandonment from %s (ID: %d)", gs.GameID, gs.Username, userID)
	gs.Game.Resign(gs.HumanSide)
	gs.finishLocked(ReasonSurrender, conn)
	return nil
}

// StartPostGameTimer keeps the finished session around for a rematch window
func (gs *GameSession) StartPostGameTimer(conn ConnectionManagerInterface) {
	window := gs.settings.PostGameWindow
	gs.PostGameTimer = time.AfterFunc(window, func() {
		gs.mu.Lock()
		log.Printf("[POST_GAME] %v window expired for game %s, closing connection", window, gs.GameID)
		gs.PostGameTimer = nil
		conn.RemoveConnection(gs.UserID)
		gameID := gs.GameID
		gs.mu.Unlock()

		gs.sessionManager.RemoveSession(gameID)
	})
	log.Printf("[POST_GAME] Started %v post-game timer for game %s", window, gs.GameID)
}

func (gs *GameSession) stopTimersLocked() {
	if gs.PostGameTimer != nil {
		gs.PostGameTimer.Stop()
		gs.PostGameTimer = nil
	}
	if gs.botTimer != nil {
		gs.botTimer.Stop()
		gs.botTimer = nil
	}
}

// HandleRematchRequest starts a fresh game against the same bot with the same colours
func (gs *GameSession) HandleRematchRequest(userID int64, conn ConnectionManagerInterface) (*GameSession, error) {
	gs.mu.Lock()
	if !gs.Game.IsFinished() {
		gs.mu.Unlock()
		return nil, fmt.Errorf("cannot request rematch - game still in progress")
	}
	if userID != gs.UserID {
		gs.mu.Unlock()
		return nil, fmt.Errorf("you are not a player in this game")
	}
	if gs.PostGameTimer == nil {
		gs.mu.Unlock()
		return nil, fmt.Errorf("rematch window has closed")
	}
	gs.stopTimersLocked()
	gameID := gs.GameID
	gs.mu.Unlock()

	log.Printf("[REMATCH] %s (ID: %d) requested rematch against %s", gs.Username, userID, gs.BotName)

	gs.sessionManager.RemoveSession(gameID)
	return gs.sessionManager.CreateSession(gs.UserID, gs.Username, gs.HumanSide, gs.BotDifficulty, conn)
}
