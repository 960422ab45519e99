package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/iamasit07/othello/backend/internal/service/game"
	"github.com/iamasit07/othello/backend/internal/service/matchmaking"
	"github.com/iamasit07/othello/backend/pkg/auth"
	"github.com/iamasit07/othello/backend/pkg/httputil"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Authenticator is the part of the auth service the socket needs
type Authenticator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
	GetSession(sessionID string) (*domain.UserSession, error)
}

type Handler struct {
	ConnManager    *ConnectionManager
	Matchmaking    *matchmaking.Queue
	SessionManager *game.SessionManager
	Auth           Authenticator
	Upgrader       websocket.Upgrader
}

// NewHandler builds the socket handler. Origins outside allowedOrigins are
// refused; an empty list allows any origin.
func NewHandler(cm *ConnectionManager, mq *matchmaking.Queue, sm *game.SessionManager, authn Authenticator, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Handler{
		ConnManager:    cm,
		Matchmaking:    mq,
		SessionManager: sm,
		Auth:           authn,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				if allowed[origin] {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	// a token on the upgrade request saves the client an init round trip
	token, _ := httputil.GetTokenFromRequest(c.Request)

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(conn, token)
}

// authenticate waits for the init message unless the upgrade request carried a token
func (h *Handler) authenticate(conn *websocket.Conn, token string) (*auth.Claims, error) {
	if token == "" {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, err
		}
		if msg.Type != "init" || msg.JWT == "" {
			return nil, errors.New("missing init message")
		}
		token = msg.JWT
	}
	return h.Auth.ValidateToken(token)
}

func (h *Handler) handleConnection(conn *websocket.Conn, token string) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	claims, err := h.authenticate(conn, token)
	if err != nil {
		log.Printf("[WS] Rejected connection: %v", err)
		conn.WriteJSON(domain.ErrorMessage{Type: "error", Message: "Invalid token or session expired"})
		conn.Close()
		return
	}
	userID, username, sessionID := claims.UserID, claims.Username, claims.SessionID

	h.ConnManager.AddConnection(userID, conn, username)
	log.Printf("[WS] Connection initialized for user: %s (ID: %d)", username, userID)

	done := make(chan struct{})
	go h.keepAlive(userID, conn, done)

	defer func() {
		close(done)
		log.Printf("[WS] Connection closed for user %s", username)

		// a newer socket for the same user keeps the game alive
		if !h.ConnManager.IsCurrentConnection(userID, conn) {
			conn.Close()
			return
		}
		h.Matchmaking.RemovePlayer(userID)
		if gs, exists := h.SessionManager.GetSessionByUserID(userID); exists {
			gs.HandleDisconnect(userID, h.ConnManager)
		}
		h.ConnManager.RemoveConnectionIfMatching(userID, conn)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] User %d disconnected unexpectedly: %v", userID, err)
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format from user %d: %v", userID, err)
			h.ConnManager.sendError(userID, "Invalid message format")
			continue
		}

		// logging out elsewhere revokes this socket on its next message
		if reason := h.checkSession(sessionID); reason != "" {
			log.Printf("[WS] Session %s of user %d no longer valid: %s", sessionID, userID, reason)
			h.ConnManager.sendError(userID, reason)
			return
		}

		h.processMessage(userID, username, msg)
	}
}

func (h *Handler) keepAlive(userID int64, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !h.ConnManager.IsCurrentConnection(userID, conn) {
				return
			}
			if err := h.ConnManager.Ping(userID); err != nil {
				return
			}
		}
	}
}

// checkSession returns a reason when the login behind the socket is gone
func (h *Handler) checkSession(sessionID string) string {
	sess, err := h.Auth.GetSession(sessionID)
	switch {
	case err != nil:
		return "Session lookup failed"
	case sess == nil:
		return "Session not found"
	case !sess.IsActive:
		return "Session expired or logged out"
	case time.Now().After(sess.ExpiresAt):
		return "Session expired"
	}
	return ""
}

func (h *Handler) processMessage(userID int64, username string, msg domain.ClientMessage) {
	switch msg.Type {
	case "init":
		// already authenticated

	case "start_game":
		side := domain.Black
		if msg.Side != "" {
			parsed, err := domain.ParseSide(msg.Side)
			if err != nil {
				h.ConnManager.sendError(userID, err.Error())
				return
			}
			side = parsed
		}

		err := h.Matchmaking.Enqueue(matchmaking.StartRequest{
			UserID:     userID,
			Username:   username,
			Difficulty: msg.Difficulty,
			Side:       side,
		})
		if err != nil {
			h.ConnManager.sendError(userID, err.Error())
		}

	case "cancel_start":
		h.Matchmaking.RemovePlayer(userID)

	case "make_move":
		gs, exists := h.SessionManager.GetSessionByUserID(userID)
		if !exists {
			h.ConnManager.sendError(userID, "Game not found")
			return
		}
		move, err := domain.NewMove(msg.X, msg.Y)
		if err != nil {
			h.ConnManager.sendError(userID, err.Error())
			return
		}
		if err := gs.HandleMove(userID, move, h.ConnManager); err != nil {
			h.ConnManager.sendError(userID, err.Error())
		}

	case "request_rematch":
		gs, exists := h.SessionManager.GetSessionByUserID(userID)
		if !exists {
			h.ConnManager.sendError(userID, "Game not found")
			return
		}
		if _, err := gs.HandleRematchRequest(userID, h.ConnManager); err != nil {
			h.ConnManager.sendError(userID, err.Error())
		}

	case "abandon_game":
		gs, exists := h.SessionManager.GetSessionByUserID(userID)
		if !exists {
			return
		}
		if err := gs.TerminateSessionByAbandonment(userID, h.ConnManager); err != nil {
			h.ConnManager.sendError(userID, err.Error())
		}

	default:
		h.ConnManager.sendError(userID, "Unknown message type: "+msg.Type)
	}
}
