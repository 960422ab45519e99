package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/iamasit07/othello/backend/internal/repository/postgres"
	"github.com/iamasit07/othello/backend/internal/service/session"
	"github.com/iamasit07/othello/backend/internal/transport/http/middleware"
	"github.com/iamasit07/othello/backend/pkg/auth"
	"github.com/iamasit07/othello/backend/pkg/httputil"
	"github.com/iamasit07/othello/backend/pkg/useragent"
)

const profileCacheTTL = 30 * time.Second

type Disconnector interface {
	DisconnectUser(userID int64, reason string)
}

type UserStore interface {
	CreateUser(username, passwordHash string) (int64, error)
	GetUserByUsername(username string) (*postgres.User, error)
	GetUserByID(userID int64) (*postgres.User, error)
	GetLeaderboard(limit int) ([]postgres.PlayerStats, error)
}

type SessionService interface {
	StartSession(userID int64, username, deviceInfo, ipAddress string) (string, *domain.UserSession, error)
	InvalidateSession(sessionID string) error
	GetUserSessionHistory(userID int64, limit int) ([]domain.UserSession, error)
}

type AuthHandler struct {
	Users       UserStore
	Sessions    SessionService
	ConnManager Disconnector
	Cache       session.CacheRepository // optional
}

func NewAuthHandler(users UserStore, sessions SessionService, cm Disconnector, cache session.CacheRepository) *AuthHandler {
	return &AuthHandler{
		Users:       users,
		Sessions:    sessions,
		ConnManager: cm,
		Cache:       cache,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func profileKey(userID int64) string {
	return fmt.Sprintf("user_profile:%d", userID)
}

// queryLimit reads ?limit=, falling back to def and capping at max
func queryLimit(c *gin.Context, def, max int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func (h *AuthHandler) startSession(c *gin.Context, user *postgres.User, status int) {
	token, _, err := h.Sessions.StartSession(user.ID, user.Username,
		useragent.ExtractDeviceInfo(c.Request), useragent.ExtractIPAddress(c.Request))
	if err != nil {
		log.Printf("[AUTH] Failed to start session for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	httputil.SetAuthCookie(c.Writer, token)
	c.JSON(status, gin.H{
		"token": token,
		"user":  user.UserResponse(),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := auth.ValidateUsername(req.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if domain.IsBotName(req.Username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is reserved"})
		return
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.Users.GetUserByUsername(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	userID, err := h.Users.CreateUser(req.Username, hash)
	if err != nil {
		log.Printf("[AUTH] Failed to create user %s: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	user, err := h.Users.GetUserByID(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	log.Printf("[AUTH] Registered %s (ID: %d)", user.Username, user.ID)
	h.startSession(c, user, http.StatusCreated)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.Users.GetUserByUsername(strings.TrimSpace(req.Username))
	if err != nil || user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	h.startSession(c, user, http.StatusOK)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if sessionID := c.GetString(middleware.ContextSessionID); sessionID != "" {
		if err := h.Sessions.InvalidateSession(sessionID); err != nil {
			log.Printf("[AUTH] Failed to invalidate session for user %d: %v", userID, err)
		}
	}
	if h.ConnManager != nil {
		h.ConnManager.DisconnectUser(userID, "Logged out")
	}

	httputil.ClearAuthCookie(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if h.Cache != nil {
		if cached, err := h.Cache.Get(c.Request.Context(), profileKey(userID)); err == nil && cached != "" {
			var response map[string]interface{}
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				c.Header("X-Cache", "HIT")
				c.JSON(http.StatusOK, response)
				return
			}
		}
	}

	user, err := h.Users.GetUserByID(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	response := user.UserResponse()
	if h.Cache != nil {
		// ratings move after every game, so the copy is short-lived
		if data, err := json.Marshal(response); err == nil {
			h.Cache.Set(c.Request.Context(), profileKey(userID), data, profileCacheTTL)
		}
	}
	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) Leaderboard(c *gin.Context) {
	stats, err := h.Users.GetLeaderboard(queryLimit(c, 50, 100))
	if err != nil {
		log.Printf("[AUTH] Leaderboard query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AuthHandler) GetSessionHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessions, err := h.Sessions.GetUserSessionHistory(userID, queryLimit(c, 10, 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch session history"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}
