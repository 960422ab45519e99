package game

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/iamasit07/othello/backend/internal/config"
	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/iamasit07/othello/backend/internal/service/bot"
	"github.com/iamasit07/othello/backend/pkg/uid"
)

type ConnectionManagerInterface interface {
	SendMessage(userID int64, message domain.ServerMessage) error
	RemoveConnection(userID int64)
}

type GameRepository interface {
	SaveGame(record *domain.GameRecord) error
}

// LiveGameStore keeps spectator snapshots of running games. Optional.
type LiveGameStore interface {
	SaveLiveGame(ctx context.Context, game *domain.LiveGame) error
	DeleteLiveGame(ctx context.Context, gameID string) error
}

type Settings struct {
	Engine         config.EngineConfig
	BotMoveDelay   time.Duration
	PostGameWindow time.Duration
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Engine:         cfg.Engine,
		BotMoveDelay:   cfg.BotMoveDelay,
		PostGameWindow: cfg.PostGameWindow,
	}
}

// SessionManager manages active game sessions
type SessionManager struct {
	Session    map[string]*GameSession // gameID → GameSession
	UserToGame map[int64]string        // userID → gameID
	mu         sync.RWMutex
	repo       GameRepository
	live       LiveGameStore
	settings   Settings
}

func NewSessionManager(repo GameRepository, live LiveGameStore, settings Settings) *SessionManager {
	return &SessionManager{
		Session:    make(map[string]*GameSession),
		UserToGame: make(map[int64]string),
		repo:       repo,
		live:       live,
		settings:   settings,
	}
}

// CreateSession starts a game between the user and the bot of the given
// difficulty. The user plays humanSide; if that is White the bot opens.
func (sm *SessionManager) CreateSession(userID int64, username string, humanSide domain.Side, difficulty string, conn ConnectionManagerInterface) (*GameSession, error) {
	if !humanSide.Valid() {
		return nil, domain.ErrInvalidSide
	}
	difficulty = bot.NormalizeDifficulty(difficulty)

	engine, err := bot.NewPlayer(humanSide.Opponent(), bot.ConfigFor(difficulty, sm.settings.Engine))
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	gameID := uid.GenerateGameID()
	gs := &GameSession{
		GameID:         gameID,
		UserID:         userID,
		Username:       username,
		HumanSide:      humanSide,
		BotName:        domain.GetBotName(difficulty),
		BotDifficulty:  difficulty,
		Game:           domain.NewGame(),
		Bot:            engine,
		CreatedAt:      time.Now(),
		lastHumanMove:  domain.Pass,
		repo:           sm.repo,
		live:           newSnapshotWriter(sm.live, gameID),
		settings:       sm.settings,
		sessionManager: sm,
	}

	sm.mu.Lock()
	sm.Session[gs.GameID] = gs
	sm.UserToGame[userID] = gs.GameID
	sm.mu.Unlock()

	log.Printf("[SESSION] Created session %s: %s (ID: %d) as %s vs %s (%s)",
		gs.GameID, username, userID, humanSide, gs.BotName, difficulty)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	start := gs.stateMessage("game_start")
	start.Opponent = gs.BotName
	start.YourSide = humanSide.String()
	conn.SendMessage(userID, start)
	gs.publishSnapshot(nil)

	if gs.Game.CurrentSide == gs.botSide() {
		gs.scheduleBotTurn(conn)
	}
	return gs, nil
}

func (sm *SessionManager) GetSessionByUserID(userID int64) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	gameID, exists := sm.UserToGame[userID]
	if !exists {
		return nil, false
	}

	session, exists := sm.Session[gameID]
	return session, exists
}

func (sm *SessionManager) GetSessionByGameID(gameID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.Session[gameID]
	return session, exists
}

func (sm *SessionManager) RemoveSession(gameID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.Session[gameID]
	if !exists {
		return fmt.Errorf("session not found")
	}

	log.Printf("[SESSION] Removing session %s", gameID)

	// a rematch may already have pointed the user at a newer game
	if sm.UserToGame[session.UserID] == gameID {
		delete(sm.UserToGame, session.UserID)
	}
	delete(sm.Session, gameID)
	return nil
}

// ForceCleanupForUser ends whatever the user is currently in so a new game can start
func (sm *SessionManager) ForceCleanupForUser(userID int64, conn ConnectionManagerInterface) {
	session, exists := sm.GetSessionByUserID(userID)
	if !exists {
		return
	}

	session.mu.Lock()
	finished := session.Game.IsFinished()
	if finished {
		session.stopTimersLocked()
	}
	session.mu.Unlock()

	if !finished {
		log.Printf("[SESSION] Abandoning active session %s for user %d", session.GameID, userID)
		session.TerminateSessionByAbandonment(userID, conn)
	}

	sm.RemoveSession(session.GameID)
}

type ActiveGame struct {
	GameID        string `json:"gameId"`
	Username      string `json:"username"`
	BotName       string `json:"botName"`
	BotDifficulty string `json:"botDifficulty"`
	HumanSide     string `json:"humanSide"`
	MoveCount     int    `json:"moveCount"`
	BlackCount    int    `json:"blackCount"`
	WhiteCount    int    `json:"whiteCount"`
	StartedAt     string `json:"startedAt"`
}

// GetActiveGames lists games still in progress, oldest first
func (sm *SessionManager) GetActiveGames() []ActiveGame {
	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.Session))
	for _, s := range sm.Session {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	games := make([]ActiveGame, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		if !s.Game.IsFinished() {
			games = append(games, ActiveGame{
				GameID:        s.GameID,
				Username:      s.Username,
				BotName:       s.BotName,
				BotDifficulty: s.BotDifficulty,
				HumanSide:     s.HumanSide.String(),
				MoveCount:     s.Game.MoveCount,
				BlackCount:    s.Game.Board.Count(domain.Black),
				WhiteCount:    s.Game.Board.Count(domain.White),
				StartedAt:     s.CreatedAt.Format(time.RFC3339),
			})
		}
		s.mu.Unlock()
	}

	sort.Slice(games, func(i, j int) bool { return games[i].StartedAt < games[j].StartedAt })
	return games
}

func (sm *SessionManager) CleanupOldSessions() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	count := 0
	now := time.Now()

	for gameID, session := range sm.Session {
		session.mu.Lock()
		stale := (session.Game.IsFinished() && now.Sub(session.FinishedAt) > 1*time.Hour) ||
			(!session.Game.IsFinished() && now.Sub(session.CreatedAt) > 24*time.Hour)
		if stale {
			session.stopTimersLocked()
		}
		session.mu.Unlock()

		if stale {
			if sm.UserToGame[session.UserID] == gameID {
				delete(sm.UserToGame, session.UserID)
			}
			delete(sm.Session, gameID)
			count++
		}
	}

	if count > 0 {
		log.Printf("[SESSION] Memory cleanup: Removed %d stale game sessions", count)
	}
}
