package service

import (
	"context"
	"errors"
	"strings"

	"taskmaster/internal/domain"
	"taskmaster/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the username is unknown so that both
// login failures take about the same time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type UserStore interface {
	CreateWithCategories(ctx context.Context, u *domain.User, categories []domain.CategoryInput) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type AuthService struct {
	users UserStore
	jwt   *JWTManager
	cost  int
}

func NewAuthService(users UserStore, jwt *JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwt, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// Session is what register and login hand back to the client.
type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, username, password string, email *string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.BadRequest("username is required")
	}
	if password == "" {
		return nil, domain.BadRequest("password is required")
	}
	if email != nil {
		e := strings.TrimSpace(*email)
		if e == "" {
			email = nil
		} else {
			email = &e
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, domain.Internal("failed to hash password", err)
	}

	u := &domain.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.users.CreateWithCategories(ctx, u, domain.DefaultCategories); err != nil {
		return nil, err
	}

	token, err := s.jwt.Issue(u.ID)
	if err != nil {
		return nil, domain.Internal("failed to issue token", err)
	}

	logger.FromContext(ctx).Info("user registered", "user_id", u.ID, "username", u.Username)
	return &Session{Token: token, User: u}, nil
}

// Login checks the credentials. An unknown username and a wrong password
// produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	invalid := domain.Unauthenticated("invalid username or password")

	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, invalid
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}

	token, err := s.jwt.Issue(u.ID)
	if err != nil {
		return nil, domain.Internal("failed to issue token", err)
	}
	return &Session{Token: token, User: u}, nil
}

// Resolve returns the user id a token was issued for, provided that user
// still exists. It is checked on every call.
func (s *AuthService) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	id, err := s.jwt.Parse(token)
	if err != nil {
		return uuid.Nil, err
	}

	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, domain.Unauthenticated("user no longer exists")
	}
	return id, nil
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
