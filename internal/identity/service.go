package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mailvend/mailvend/internal/model"
	"github.com/mailvend/mailvend/internal/repository"
)

// minPasswordLength mirrors the weak-password rule of the original
// identity provider.
const minPasswordLength = 6

// Service errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionStore tracks revoked session tokens.
type SessionStore interface {
	RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Service handles sign-up, sign-in, sign-out, and session verification.
type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   *TokenManager
	logger   *slog.Logger
}

// NewService creates an identity Service.
func NewService(users UserStore, sessions SessionStore, tokens *TokenManager, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger.With("component", "identity"),
	}
}

// SignUp registers a new account and returns the user with a fresh
// session token.
func (s *Service) SignUp(ctx context.Context, email, password string) (*model.User, string, error) {
	email = model.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, "", ErrWeakPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Mint(user, time.Now())
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// SignIn authenticates an existing account and returns a fresh session
// token. Not-found and wrong-password resolve to the same error so the
// response does not reveal which accounts exist.
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.User, string, error) {
	email = model.NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	match, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Mint(user, time.Now())
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user signed in", "user_id", user.ID)
	return user, token, nil
}

// SignOut revokes the session token. The revocation lives in the session
// store until the token would have expired on its own.
func (s *Service) SignOut(ctx context.Context, tokenString string) error {
	session, err := s.tokens.Verify(tokenString)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if err := s.sessions.RevokeSession(ctx, session.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	s.logger.Info("user signed out", "user_id", session.Identity.ID)
	return nil
}

// Verify resolves a session token into the authenticated identity,
// rejecting revoked sessions.
func (s *Service) Verify(ctx context.Context, tokenString string) (model.Identity, error) {
	session, err := s.tokens.Verify(tokenString)
	if err != nil {
		return model.Identity{}, err
	}

	revoked, err := s.sessions.IsSessionRevoked(ctx, session.TokenID)
	if err != nil {
		return model.Identity{}, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return model.Identity{}, ErrInvalidSession
	}

	return session.Identity, nil
}
