package domain

import "time"

// TokenPair is what login and refresh return: a short-lived access token and
// a long-lived refresh token, both signed JWTs.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // always "Bearer"
}

// SessionRecord is one live refresh token in the session registry: the
// token's jti, its owner and when it stops being honoured. Records are never
// mutated; rotation deletes the old one and inserts a new one.
type SessionRecord struct {
	JTI       string
	UserID    string
	ExpiresAt time.Time
}
