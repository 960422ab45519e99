package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/othello/backend/pkg/auth"
	"github.com/iamasit07/othello/backend/pkg/httputil"
)

// Keys under which AuthMiddleware stores the caller in the gin context
const (
	ContextUserID    = "user_id"
	ContextUsername  = "username"
	ContextSessionID = "session_id"
)

type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
	TouchSession(sessionID string)
}

// AuthMiddleware accepts a request only if its token maps to a live session
func AuthMiddleware(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := v.ValidateToken(tokenString)
		if err != nil {
			log.Printf("[AUTH] Rejected token on %s: %v", c.Request.URL.Path, err)
			httputil.ClearAuthCookie(c.Writer)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		go v.TouchSession(claims.SessionID)

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextSessionID, claims.SessionID)
		c.Next()
	}
}

// UserID returns the authenticated caller's ID
func UserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
