package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/iamasit07/othello/backend/pkg/auth"
	"github.com/iamasit07/othello/backend/pkg/uid"
)

const sessionKeyPrefix = "session:"
const blockedSessionKeyPrefix = "blocked_session:"

var (
	ErrSessionInvalid = errors.New("session invalidated")
	ErrSessionExpired = errors.New("session expired")
	ErrSessionBlocked = errors.New("session is blocked/revoked")
)

type SessionRepository interface {
	CreateSession(userID int64, sessionID, deviceInfo, ipAddress string, expiresAt time.Time) error
	GetSessionByID(sessionID string) (*domain.UserSession, error)
	DeactivateSession(sessionID string) error
	UpdateSessionActivity(sessionID string) error
	GetUserSessionHistory(userID int64, limit int) ([]domain.UserSession, error)
}

type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// AuthService handles authentication session logic
type AuthService struct {
	repo  SessionRepository
	cache CacheRepository // optional
	ttl   time.Duration
}

func NewAuthService(repo SessionRepository, cache CacheRepository, ttl time.Duration) *AuthService {
	return &AuthService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

// StartSession records a new login and returns the access token bound to it
func (s *AuthService) StartSession(userID int64, username, deviceInfo, ipAddress string) (string, *domain.UserSession, error) {
	sessionID, err := uid.GenerateSessionID()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	session := &domain.UserSession{
		UserID:       userID,
		SessionID:    sessionID,
		DeviceInfo:   deviceInfo,
		IPAddress:    ipAddress,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
		LastActivity: now,
		IsActive:     true,
	}
	if err := s.repo.CreateSession(userID, sessionID, deviceInfo, ipAddress, session.ExpiresAt); err != nil {
		return "", nil, fmt.Errorf("failed to store session in database: %w", err)
	}
	s.cacheSession(session)

	token, err := auth.GenerateAccessToken(userID, username, sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	log.Printf("[SESSION] Started session for user %d from %s", userID, deviceInfo)
	return token, session, nil
}

// ValidateToken accepts a token only while its session is active and unexpired
func (s *AuthService) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := auth.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	if s.IsSessionBlocked(claims.SessionID) {
		return nil, ErrSessionBlocked
	}

	session, err := s.GetSession(claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if session == nil || !session.IsActive {
		return nil, ErrSessionInvalid
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	return claims, nil
}

func (s *AuthService) GetSession(sessionID string) (*domain.UserSession, error) {
	if session := s.cachedSession(sessionID); session != nil {
		return session, nil
	}

	session, err := s.repo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		s.cacheSession(session)
	}
	return session, nil
}

// InvalidateSession deactivates the session and blocklists it for the lifetime of its tokens
func (s *AuthService) InvalidateSession(sessionID string) error {
	if err := s.repo.DeactivateSession(sessionID); err != nil {
		return fmt.Errorf("failed to deactivate session in database: %w", err)
	}
	if s.cache == nil {
		return nil
	}

	ctx := context.Background()
	if err := s.cache.Del(ctx, sessionKeyPrefix+sessionID); err != nil {
		log.Printf("[SESSION] Warning: Failed to evict session from cache: %v", err)
	}
	return s.cache.Set(ctx, blockedSessionKeyPrefix+sessionID, "1", s.ttl)
}

func (s *AuthService) IsSessionBlocked(sessionID string) bool {
	if s.cache == nil {
		return false
	}
	val, err := s.cache.Get(context.Background(), blockedSessionKeyPrefix+sessionID)
	return err == nil && val != ""
}

// TouchSession records activity; failures are only logged
func (s *AuthService) TouchSession(sessionID string) {
	if err := s.repo.UpdateSessionActivity(sessionID); err != nil {
		log.Printf("[SESSION] Warning: Failed to update activity for session: %v", err)
	}
}

func (s *AuthService) GetUserSessionHistory(userID int64, limit int) ([]domain.UserSession, error) {
	return s.repo.GetUserSessionHistory(userID, limit)
}

func (s *AuthService) cacheSession(session *domain.UserSession) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(session)
	if err != nil {
		return
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return
	}
	if err := s.cache.Set(context.Background(), sessionKeyPrefix+session.SessionID, data, ttl); err != nil {
		log.Printf("[SESSION] Warning: Failed to store session in cache: %v", err)
	}
}

func (s *AuthService) cachedSession(sessionID string) *domain.UserSession {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(context.Background(), sessionKeyPrefix+sessionID)
	if err != nil || data == "" {
		return nil
	}
	var session domain.UserSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil
	}
	return &session
}
