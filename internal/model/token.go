package model

import "time"

// AccessToken represents a bearer credential tied to a user account.
// Only the argon2id hash is stored; the plaintext token is shown
// once at issuance.
type AccessToken struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TokenHash   string     `json:"-"` // Never serialize
	TokenPrefix string     `json:"token_prefix"`
	Name        string     `json:"name,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsRevoked returns true if the token has been revoked.
func (t *AccessToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// AuthContext holds the authenticated caller's identity.
// This is injected into the request context by auth middleware and
// is the source for audit-field stamping.
type AuthContext struct {
	TokenID     string
	UserID      string
	Email       string
	Username    string
	FirstName   string
	LastName    string
	IsStaff     bool
	IsSuperuser bool
}

// DisplayLabel resolves the acting identity's label the same way
// User.DisplayLabel does: display name, then login handle.
func (a *AuthContext) DisplayLabel() string {
	u := User{
		Email:     a.Email,
		Username:  a.Username,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
	return u.DisplayLabel()
}

// TokenResponse represents an access token in API responses
// (without secrets).
type TokenResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TokenPrefix string     `json:"token_prefix"`
	Name        string     `json:"name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	Revoked     bool       `json:"revoked"`
}

// ToResponse converts an AccessToken to TokenResponse.
func (t *AccessToken) ToResponse() TokenResponse {
	return TokenResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		TokenPrefix: t.TokenPrefix,
		Name:        t.Name,
		CreatedAt:   t.CreatedAt,
		LastUsedAt:  t.LastUsedAt,
		Revoked:     t.IsRevoked(),
	}
}

// TokenCreateResponse includes the plaintext token (shown only once).
type TokenCreateResponse struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"` // Plaintext - display once only!
	UserID      string    `json:"user_id"`
	TokenPrefix string    `json:"token_prefix"`
	Name        string    `json:"name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
