package matchmaking

import (
	"errors"
	"sync"
	"time"

	"github.com/iamasit07/othello/backend/internal/domain"
)

var (
	ErrAlreadyQueued = errors.New("a game is already being prepared")
	ErrQueueFull     = errors.New("server busy, try again")
)

// StartRequest asks for a new game against the bot
type StartRequest struct {
	UserID     int64
	Username   string
	Difficulty string
	Side       domain.Side
	QueuedAt   time.Time
}

// Queue serialises game starts. A user has at most one pending request and
// may withdraw it until the listener picks it up.
type Queue struct {
	requests chan StartRequest
	pending  map[int64]time.Time
	mu       sync.Mutex
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{
		requests: make(chan StartRequest, capacity),
		pending:  make(map[int64]time.Time),
	}
}

func (q *Queue) Enqueue(req StartRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.pending[req.UserID]; exists {
		return ErrAlreadyQueued
	}
	if req.QueuedAt.IsZero() {
		req.QueuedAt = time.Now()
	}

	select {
	case q.requests <- req:
		q.pending[req.UserID] = req.QueuedAt
		return nil
	default:
		return ErrQueueFull
	}
}

// RemovePlayer withdraws the user's pending request, if any
func (q *Queue) RemovePlayer(userID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, exists := q.pending[userID]
	delete(q.pending, userID)
	return exists
}

func (q *Queue) IsQueued(userID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, exists := q.pending[userID]
	return exists
}

// claim reports whether req is still wanted and marks it handled. A request
// withdrawn and re-sent leaves a stale copy in the channel; the timestamp
// tells them apart.
func (q *Queue) claim(req StartRequest) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	queuedAt, exists := q.pending[req.UserID]
	if !exists || !queuedAt.Equal(req.QueuedAt) {
		return false
	}
	delete(q.pending, req.UserID)
	return true
}
