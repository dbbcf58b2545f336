package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/morningistar/study-buddy/internal/model/user"
	"github.com/morningistar/study-buddy/internal/store"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Store is the subset of persistence the auth service needs.
type Store interface {
	CreateUser(ctx context.Context, u user.User) error
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	CreateToken(ctx context.Context, t user.Token) error
	GetToken(ctx context.Context, value string) (user.Token, error)
	DeleteToken(ctx context.Context, value string) error
}

// Service issues and resolves bearer tokens. It is the only component that
// ever touches credentials; the chat core consumes resolved user IDs only.
type Service struct {
	store    Store
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewService wires the auth service to its persistence.
func NewService(st Store, tokenTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{store: st, tokenTTL: tokenTTL, logger: logger}
}

// Register creates an account and immediately issues a token for it.
func (s *Service) Register(ctx context.Context, email, password string) (user.User, user.Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, user.Token{}, ErrEmailRequired
	}
	if len(password) < 8 {
		return user.User{}, user.Token{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, user.Token{}, fmt.Errorf("hash password: %w", err)
	}

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return user.User{}, user.Token{}, ErrEmailTaken
		}
		return user.User{}, user.Token{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return user.User{}, user.Token{}, err
	}

	s.logger.Info("user registered", zap.String("userID", u.ID))
	return u, token, nil
}

// Login verifies the password and issues a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (user.Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return user.Token{}, ErrInvalidCredentials
		}
		return user.Token{}, fmt.Errorf("look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return user.Token{}, ErrInvalidCredentials
	}

	return s.issueToken(ctx, u.ID)
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, tokenValue string) error {
	return s.store.DeleteToken(ctx, tokenValue)
}

// Resolve turns a bearer token into a user ID, or ErrUnauthenticated when
// the token is unknown or expired.
func (s *Service) Resolve(ctx context.Context, tokenValue string) (string, error) {
	if tokenValue == "" {
		return "", ErrUnauthenticated
	}

	t, err := s.store.GetToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("look up token: %w", err)
	}

	if t.Expired(time.Now().UTC()) {
		return "", ErrUnauthenticated
	}

	return t.UserID, nil
}

func (s *Service) issueToken(ctx context.Context, userID string) (user.Token, error) {
	now := time.Now().UTC()
	t := user.Token{
		Value:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.store.CreateToken(ctx, t); err != nil {
		return user.Token{}, fmt.Errorf("store token: %w", err)
	}
	return t, nil
}
