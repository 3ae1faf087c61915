package auth

import "errors"

var (
	// ErrIncompletePair is returned when a store is asked to persist a pair
	// that is missing either token.
	ErrIncompletePair = errors.New("credential pair must carry both access and refresh tokens")

	// ErrNoCredentials is returned by callers that require a stored pair.
	ErrNoCredentials = errors.New("no stored credentials")
)

// Pair is the access/refresh token pair issued by the hotel API.
// It doubles as the wire shape of POST /auth/refresh.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// Complete reports whether both tokens are present
func (p Pair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// Empty reports whether neither token is present
func (p Pair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}
