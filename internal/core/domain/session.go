package domain

import "time"

// SessionTokenPrefix marks plaintext login tokens handed to clients.
const SessionTokenPrefix = "qrs_"

// Session is a login session. Only the token hash is stored.
type Session struct {
	TokenHash string    `json:"tokenHash"`
	UserID    int       `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired reports whether the session is no longer valid at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	User      UserView  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
