package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "github.com/borrowez/borrowez/internal/errors"
	"github.com/borrowez/borrowez/internal/identity"
	"github.com/borrowez/borrowez/internal/model"
	"github.com/borrowez/borrowez/internal/store"
	"github.com/borrowez/borrowez/internal/validation"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Name            string `json:"name" validate:"notblank,max=100"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// Session is an issued token together with the user it belongs to.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Service registers users and manages their session tokens.
type Service struct {
	db        *sql.DB
	tokens    *TokenIssuer
	validator *validation.Validator
	timeout   time.Duration
	logger    *slog.Logger
}

// NewService creates an auth service. Each store call is bounded by timeout.
func NewService(db *sql.DB, tokens *TokenIssuer, v *validation.Validator, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{db: db, tokens: tokens, validator: v, timeout: timeout, logger: logger}
}

// Register creates an account and signs the new user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := model.ValidatePassword(in.Password); err != nil {
		return nil, domainerrors.InvalidInput(err.Error())
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, domainerrors.Storage(err)
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	user, err := store.CreateUser(sctx, s.db, in.Name, in.Email, hash)
	if errors.Is(err, store.ErrEmailTaken) {
		return nil, domainerrors.Conflict("email already registered")
	}
	if err != nil {
		s.logger.Error("registering user", "error", err)
		return nil, domainerrors.Storage(err)
	}

	s.logger.Info("user registered", "user", user.ID)
	return s.issue(user)
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domainerrors.InvalidInput("email and password required")
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	user, err := store.GetUserByEmail(sctx, s.db, strings.TrimSpace(email))
	if err != nil {
		s.logger.Error("looking up user", "error", err)
		return nil, domainerrors.Storage(err)
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		s.logger.Warn("login failed", "email", email)
		return nil, domainerrors.Unauthenticated("invalid credentials")
	}

	s.logger.Info("user logged in", "user", user.ID)
	return s.issue(user)
}

// Logout revokes the token identified by claims.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil {
		return domainerrors.ErrUnauthenticated
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := store.RevokeToken(sctx, s.db, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.logger.Error("revoking token", "error", err)
		return domainerrors.Storage(err)
	}

	s.logger.Info("user logged out", "user", claims.UserID)
	return nil
}

// Authenticate resolves a bearer token to the caller's identity. Malformed,
// expired and revoked tokens are all Unauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Identity, *Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return identity.Identity{}, nil, domainerrors.Unauthenticated("invalid or expired token")
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	revoked, err := store.IsTokenRevoked(sctx, s.db, claims.ID)
	if err != nil {
		s.logger.Error("checking token revocation", "error", err)
		return identity.Identity{}, nil, domainerrors.Storage(err)
	}
	if revoked {
		return identity.Identity{}, nil, domainerrors.Unauthenticated("token has been revoked")
	}

	return identity.Identity{UserID: claims.UserID, Name: claims.Name}, claims, nil
}

func (s *Service) issue(user *model.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("issuing token", "error", err)
		return nil, domainerrors.Storage(err)
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}
