package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/iamasit07/othello/backend/internal/domain"
)

const snapshotTimeout = 2 * time.Second

// snapshotWriter pushes one session's spectator snapshots to the live store.
// Writes run on a single goroutine at a time, so the store sees them in the
// order they were queued. Only the newest pending snapshot is kept, and once
// the game is cleared nothing else is written for it.
type snapshotWriter struct {
	store  LiveGameStore
	gameID string

	mu      sync.Mutex
	pending *domain.LiveGame
	clear   bool
	cleared bool
	running bool
	idle    chan struct{}
}

func newSnapshotWriter(store LiveGameStore, gameID string) *snapshotWriter {
	if store == nil {
		return nil
	}
	return &snapshotWriter{store: store, gameID: gameID}
}

func (w *snapshotWriter) publish(snapshot *domain.LiveGame) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.clear {
		return
	}
	w.pending = snapshot
	w.startLocked()
}

func (w *snapshotWriter) remove() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.clear {
		return
	}
	w.clear = true
	w.pending = nil
	w.startLocked()
}

func (w *snapshotWriter) startLocked() {
	if w.running {
		return
	}
	w.running = true
	w.idle = make(chan struct{})
	go w.run()
}

func (w *snapshotWriter) run() {
	for {
		w.mu.Lock()
		snapshot := w.pending
		w.pending = nil
		doClear := snapshot == nil && w.clear && !w.cleared
		if snapshot == nil && !doClear {
			w.running = false
			close(w.idle)
			w.mu.Unlock()
			return
		}
		if doClear {
			w.cleared = true
		}
		w.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		if doClear {
			if err := w.store.DeleteLiveGame(ctx, w.gameID); err != nil {
				log.Printf("[SESSION] Failed to clear snapshot for game %s: %v", w.gameID, err)
			}
		} else if err := w.store.SaveLiveGame(ctx, snapshot); err != nil {
			log.Printf("[SESSION] Failed to publish snapshot for game %s: %v", w.gameID, err)
		}
		cancel()
	}
}

// wait blocks until queued writes have reached the store
func (w *snapshotWriter) wait() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	idle := w.idle
	w.mu.Unlock()
	<-idle
}
