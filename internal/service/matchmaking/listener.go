package matchmaking

import (
	"context"
	"log"

	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/iamasit07/othello/backend/internal/service/game"
)

// Listen starts a bot game for each request until ctx is done
func Listen(ctx context.Context, queue *Queue, cm game.ConnectionManagerInterface, sm *game.SessionManager) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("[MATCHMAKING] Listener stopped")
			return
		case req := <-queue.requests:
			if !queue.claim(req) {
				log.Printf("[MATCHMAKING] Dropping withdrawn request from user %d", req.UserID)
				continue
			}
			start(req, cm, sm)
		}
	}
}

func start(req StartRequest, cm game.ConnectionManagerInterface, sm *game.SessionManager) {
	// whatever the user was doing before is over
	sm.ForceCleanupForUser(req.UserID, cm)

	session, err := sm.CreateSession(req.UserID, req.Username, req.Side, req.Difficulty, cm)
	if err != nil {
		log.Printf("[MATCHMAKING] Failed to start game for %s (ID: %d): %v", req.Username, req.UserID, err)
		cm.SendMessage(req.UserID, domain.ServerMessage{Type: "error", Message: "Failed to start game"})
		return
	}

	log.Printf("[MATCHMAKING] Game %s started: %s (ID: %d) vs %s",
		session.GameID, req.Username, req.UserID, session.BotName)
}
