package cleanup

import (
	"context"
	"log"
	"time"
)

// SessionSweeper drops finished or abandoned in-memory games
type SessionSweeper interface {
	CleanupOldSessions()
}

// LoginPruner deletes login sessions older than the given number of days
type LoginPruner interface {
	CleanupOldSessions(olderThanDays int) (int64, error)
}

type Worker struct {
	Games    SessionSweeper
	Logins   LoginPruner
	Interval time.Duration
	KeepDays int
}

func NewWorker(games SessionSweeper, logins LoginPruner) *Worker {
	return &Worker{
		Games:    games,
		Logins:   logins,
		Interval: time.Hour,
		KeepDays: 30,
	}
}

// Start sweeps once immediately and then every Interval until ctx is done
func (w *Worker) Start(ctx context.Context) {
	go func() {
		w.RunOnce()

		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("[CLEANUP] Background worker stopped")
				return
			case <-ticker.C:
				w.RunOnce()
			}
		}
	}()
	log.Println("[CLEANUP] Background worker started")
}

func (w *Worker) RunOnce() {
	if w.Games != nil {
		w.Games.CleanupOldSessions()
	}
	if w.Logins == nil {
		return
	}

	deleted, err := w.Logins.CleanupOldSessions(w.KeepDays)
	if err != nil {
		log.Printf("[CLEANUP] Error cleaning up DB sessions: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[CLEANUP] Removed %d expired sessions from database", deleted)
	}
}
