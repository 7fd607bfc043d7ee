package domain

import "time"

// TokenPair is what a successful login or refresh returns: a short-lived
// access token and the long-lived refresh token that supersedes any previous
// one for the user.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // access token lifetime
}
