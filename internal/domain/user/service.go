package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"voiceagent-server/internal/utils/platformerrors"
)

// TokenIssuer signs dashboard auth tokens.
type TokenIssuer interface {
	IssueAccess(u *User) (string, error)
	IssueRefresh(userID string) (string, error)
}

// AuthResult is returned from register/login.
type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

// Service defines account operations for the dashboard.
type Service interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Get(ctx context.Context, id string) (*User, error)
}

type service struct {
	store      Store
	tokens     TokenIssuer
	bcryptCost int
	log        zerolog.Logger
}

// NewService creates a new user service.
func NewService(store Store, tokens TokenIssuer, bcryptCost int, log zerolog.Logger) Service {
	return &service{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log.With().Str("component", "user-service").Logger(),
	}
}

func (s *service) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "email and password are required", nil)
	}
	if len(password) < 8 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "password must be at least 8 characters", nil)
	}

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeConflict, "email already registered", nil)
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to look up email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to hash password")
	}

	now := time.Now()
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Plan:         PlanFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create user")
	}

	s.log.Info().Str("user_id", u.ID).Msg("user registered")
	return s.issueTokens(ctx, u)
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "email and password are required", nil)
	}

	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeUnauthorized, "invalid email or password", nil)
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to look up user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnauthorized, "invalid email or password", nil)
	}

	return s.issueTokens(ctx, u)
}

func (s *service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound, "user not found", nil)
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load user")
	}
	return u, nil
}

func (s *service) issueTokens(ctx context.Context, u *User) (*AuthResult, error) {
	access, err := s.tokens.IssueAccess(u)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to sign access token")
	}
	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to sign refresh token")
	}
	return &AuthResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}
