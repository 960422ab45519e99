package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/othello/backend/internal/domain"
)

const writeWait = 10 * time.Second

// peer is one user's socket. gorilla connections allow a single concurrent writer.
type peer struct {
	conn     *websocket.Conn
	username string
	writeMu  sync.Mutex
}

func (p *peer) write(v interface{}) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteJSON(v)
}

func (p *peer) ping() error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	return p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// ConnectionManager tracks at most one socket per user
type ConnectionManager struct {
	peers map[int64]*peer
	mu    sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		peers: make(map[int64]*peer),
	}
}

// AddConnection registers conn for the user, closing any socket it replaces
func (cm *ConnectionManager) AddConnection(userID int64, conn *websocket.Conn, username string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if old, exists := cm.peers[userID]; exists && old.conn != conn {
		old.conn.Close()
	}
	cm.peers[userID] = &peer{conn: conn, username: username}
}

func (cm *ConnectionManager) RemoveConnection(userID int64) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if p, exists := cm.peers[userID]; exists {
		p.conn.Close()
		delete(cm.peers, userID)
	}
}

// RemoveConnectionIfMatching only drops the entry if it still belongs to conn,
// so a reader shutting down cannot evict the socket that replaced it.
func (cm *ConnectionManager) RemoveConnectionIfMatching(userID int64, conn *websocket.Conn) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	p, exists := cm.peers[userID]
	if !exists || p.conn != conn {
		return false
	}
	p.conn.Close()
	delete(cm.peers, userID)
	return true
}

func (cm *ConnectionManager) IsCurrentConnection(userID int64, conn *websocket.Conn) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	p, exists := cm.peers[userID]
	return exists && p.conn == conn
}

func (cm *ConnectionManager) peer(userID int64) (*peer, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	p, exists := cm.peers[userID]
	return p, exists
}

// SendMessage writes message to the user's socket. Offline users are ignored.
func (cm *ConnectionManager) SendMessage(userID int64, message domain.ServerMessage) error {
	p, exists := cm.peer(userID)
	if !exists {
		return nil
	}
	return p.write(message)
}

func (cm *ConnectionManager) sendError(userID int64, text string) {
	p, exists := cm.peer(userID)
	if !exists {
		return
	}
	p.write(domain.ErrorMessage{Type: "error", Message: text})
}

// Ping sends a control ping if the user is still connected
func (cm *ConnectionManager) Ping(userID int64) error {
	p, exists := cm.peer(userID)
	if !exists {
		return nil
	}
	return p.ping()
}

// DisconnectUser tells the client why it is being dropped, then closes the socket
func (cm *ConnectionManager) DisconnectUser(userID int64, reason string) {
	_ = cm.SendMessage(userID, domain.ServerMessage{
		Type:    "force_disconnect",
		Message: reason,
	})
	cm.RemoveConnection(userID)
}

func (cm *ConnectionManager) GetUsername(userID int64) (string, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	p, exists := cm.peers[userID]
	if !exists {
		return "", false
	}
	return p.username, true
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.peers)
}
