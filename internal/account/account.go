// Package account registers users, logs them in and looks them up.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/PaulBabatuyi/chater/internal/apperr"
	"github.com/PaulBabatuyi/chater/internal/auth"
	"github.com/PaulBabatuyi/chater/internal/avatar"
	"github.com/PaulBabatuyi/chater/internal/data"
	"github.com/PaulBabatuyi/chater/internal/normalize"
)

// Messages shown to clients on the auth endpoints.
const (
	msgEmailTaken = "Bad Request: User with this email already exists"
	msgNoMatch    = "No matches found"
)

// Session is a signed-in user with the token that identifies them.
type Session struct {
	User      data.PublicUser
	Token     string
	ExpiresAt time.Time
}

// Service implements the account operations.
type Service struct {
	store data.Store
	jwt   *auth.JWTManager
	log   *slog.Logger
}

// New returns an account service.
func New(store data.Store, jwt *auth.JWTManager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, jwt: jwt, log: log}
}

// Register creates a user and signs them in.
func (s *Service) Register(ctx context.Context, req auth.RegisterRequest) (*Session, error) {
	if err := auth.ValidateRegister(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := NewUser(req.Email, req.Name, hash)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, data.ErrConflict) {
			return nil, apperr.Wrap(apperr.KindConflict, err, msgEmailTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", "user", user.ID)
	return s.sign(user)
}

// NewUser builds a user record with a fresh id and generated avatar.
func NewUser(email, name, passwordHash string) (*data.User, error) {
	name = strings.TrimSpace(name)
	pic, err := avatar.DataURI(name)
	if err != nil {
		return nil, err
	}
	return &data.User{
		ID:           data.NewID(),
		Email:        normalize.Email(email),
		Name:         name,
		PasswordHash: passwordHash,
		Avatar:       pic,
	}, nil
}

// Login checks credentials and signs the user in. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req auth.LoginRequest) (*Session, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, err.Error())
	}

	user, err := s.store.GetUserByEmail(ctx, normalize.Email(req.Email))
	if errors.Is(err, data.ErrNotFound) {
		return nil, apperr.NotFound(msgNoMatch)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, apperr.NotFound(msgNoMatch)
	}
	return s.sign(user)
}

func (s *Service) sign(user *data.User) (*Session, error) {
	token, exp, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{User: user.Public(), Token: token, ExpiresAt: exp}, nil
}

// Authorize resolves a bearer token to a stored user.
func (s *Service) Authorize(ctx context.Context, token string) (*data.User, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("Unauthorized")
	}
	claims, err := s.jwt.VerifyToken(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, err, "Unauthorized")
	}
	user, err := s.store.GetUser(ctx, claims.UserID)
	if errors.Is(err, data.ErrNotFound) {
		return nil, apperr.Unauthenticated("Unauthorized")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// GetUser returns the public view of one user.
func (s *Service) GetUser(ctx context.Context, id string) (*data.PublicUser, error) {
	if id == "" {
		return nil, apperr.Validation("id is required")
	}
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, data.ErrNotFound) {
		return nil, apperr.NotFound("User Not Found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	pub := user.Public()
	return &pub, nil
}

// GetUsers returns the public views of the listed users.
func (s *Service) GetUsers(ctx context.Context, ids []string) ([]data.PublicUser, error) {
	if len(ids) == 0 {
		return []data.PublicUser{}, nil
	}
	users, err := s.store.ListUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return publics(users), nil
}

// Search returns users whose name contains q.
func (s *Service) Search(ctx context.Context, q string) ([]data.PublicUser, error) {
	if q == "" {
		return nil, apperr.Validation("q is required")
	}
	users, err := s.store.SearchUsers(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return publics(users), nil
}

func publics(users []*data.User) []data.PublicUser {
	return lo.Map(users, func(u *data.User, _ int) data.PublicUser { return u.Public() })
}
