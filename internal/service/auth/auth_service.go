// Package auth tracks the signed-in user. Credentials are not verified:
// the first login with an email creates the account.
package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/repository"
	"github.com/Domenick1991/spacevoyager/internal/validation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const loginPath = "/login"

type AuthUseCase interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) (*domain.User, error)
	RequireAuth(ctx context.Context, returnPath string) (bool, string)
}

type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	logger   logrus.FieldLogger
	engine   *validation.Engine
	now      func() time.Time
}

type AuthServiceOption func(*AuthService)

func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, logger logrus.FieldLogger, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		users:    users,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = validation.NewEngine(validation.WithClock(s.now))
	return s
}

// loginError maps a failed login form to an error. A too short password is
// treated as a bad credential rather than a malformed form.
func loginError(res validation.Result) error {
	email, _ := res.Failed("email")
	password, _ := res.Failed("password")
	switch {
	case email == validation.Required || password == validation.Required:
		return domain.NewValidationError("email and password are required")
	case email != "":
		return domain.NewValidationError("invalid email format")
	default:
		return &domain.AuthenticationError{Message: "password must be at least 4 characters"}
	}
}

func registerError(res validation.Result) error {
	kinds := make(map[string]validation.RuleKind, 3)
	for _, field := range []string{"name", "email", "password"} {
		if kind, ok := res.Failed(field); ok {
			if kind == validation.Required {
				return domain.NewValidationError("all fields are required")
			}
			kinds[field] = kind
		}
	}
	switch {
	case kinds["email"] != "":
		return domain.NewValidationError("invalid email format")
	case kinds["password"] != "":
		return domain.NewValidationError("password must be at least 6 characters")
	default:
		return domain.NewValidationError("name: " + res.FirstError("name"))
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	res := s.engine.Validate(map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}, validation.LoginFormRules())
	if !res.Valid {
		return nil, loginError(res)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	normalized := repository.NormalizeEmail(email)
	user, created, err := s.users.GetOrCreate(ctx, &domain.User{
		ID:        id.String(),
		Email:     normalized,
		Name:      strings.SplitN(normalized, "@", 2)[0],
		CreatedAt: s.now(),
		Bookings:  []string{},
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.WithField("user_id", user.ID).Info("created user on first login")
	}

	if err := s.sessions.Set(ctx, user); err != nil {
		return nil, err
	}
	s.logger.WithField("user_id", user.ID).Info("user logged in")
	return user, nil
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	res := s.engine.Validate(map[string]string{
		"name":     name,
		"email":    strings.TrimSpace(email),
		"password": password,
	}, validation.RegisterFormRules(password))
	if !res.Valid {
		return nil, registerError(res)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:        id.String(),
		Email:     repository.NormalizeEmail(email),
		Name:      strings.TrimSpace(name),
		CreatedAt: s.now(),
		Bookings:  []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, domain.NewValidationError("email is already registered")
		}
		return nil, err
	}

	if err := s.sessions.Set(ctx, user); err != nil {
		return nil, err
	}
	s.logger.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("user logged out")
	return nil
}

func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	user, err := s.CurrentUser(ctx)
	return err == nil && user != nil
}

// CurrentUser returns nil without error when nobody is signed in. The stored
// session is refreshed from the user collection so the booking list is current.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	session, err := s.sessions.Current(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, session.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return session, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RequireAuth reports whether a user is signed in. When not, it also returns
// the login location that resumes at returnPath.
func (s *AuthService) RequireAuth(ctx context.Context, returnPath string) (bool, string) {
	if s.IsAuthenticated(ctx) {
		return true, ""
	}
	if returnPath == "" {
		return false, loginPath
	}
	return false, loginPath + "?return=" + url.QueryEscape(returnPath)
}

var _ AuthUseCase = (*AuthService)(nil)
