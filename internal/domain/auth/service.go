package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"linkup/internal/pkg/jwt"
)

type userStore interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type Service struct {
	users userStore
	jwt   *jwt.Service
}

func NewService(users userStore, jwtSvc *jwt.Service) *Service {
	return &Service{users: users, jwt: jwtSvc}
}

type Session struct {
	User  *User
	Token string
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	role := RoleStudent
	if req.Role != "" {
		parsed, ok := ParseRole(req.Role)
		if !ok || parsed.IsElevated() {
			return nil, ErrRoleNotAllowed
		}
		role = parsed
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Name:         strings.TrimSpace(req.Name),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("auth_register user_id=%d role=%s", user.ID, user.Role)
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := CheckPassword(req.Password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) issue(user *User) (*Session, error) {
	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}
