package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/mailvend/mailvend/internal/model"
)

// sessionAudience is the audience claim stamped into every session token.
const sessionAudience = "mailvend-api"

// ErrInvalidSession indicates the session token could not be verified.
var ErrInvalidSession = errors.New("invalid session token")

// sessionClaims carries the identity inside a session JWT.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenManager mints and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(secret []byte, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
	}
}

// Mint issues a new session token for the user.
// The token id is a ULID so revocations can target one session.
func (m *TokenManager) Mint(user *model.User, now time.Time) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   user.ID,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{sessionAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Session is the verified content of a session token.
type Session struct {
	TokenID   string
	Identity  model.Identity
	ExpiresAt time.Time
}

// Verify parses a session token and checks signature, issuer, audience,
// and validity window. Revocation is checked separately by the Service.
func (m *TokenManager) Verify(tokenString string) (*Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidSession
	}

	return &Session{
		TokenID: claims.ID,
		Identity: model.Identity{
			ID:    claims.Subject,
			Email: claims.Email,
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
