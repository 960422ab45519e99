package uid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

func randomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateGameID returns a random 32 character game ID
func GenerateGameID() string {
	id, err := randomHex(16)
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("uid: %v", err))
	}
	return id
}

// GenerateSessionID generates a cryptographically secure random session ID
func GenerateSessionID() (string, error) {
	id, err := randomHex(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return id, nil
}
