package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"linkup/internal/database"
	"linkup/internal/pkg/jwt"
)

func setupTestService(t *testing.T) (*Service, *jwt.Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := database.Migrate(db, &UserModel{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	jwtSvc := jwt.New("test-secret", time.Hour)
	return NewService(NewUserRepository(db), jwtSvc), jwtSvc
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	svc, jwtSvc := setupTestService(t)

	session, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "  Ada@Example.com ",
		Password: "password123",
		Name:     "Ada",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if session.User.Role != RoleStudent {
		t.Fatalf("expected role student, got %s", session.User.Role)
	}
	if session.User.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", session.User.Email)
	}

	claims, err := jwtSvc.ValidateToken(session.Token)
	if err != nil {
		t.Fatalf("issued token did not validate: %v", err)
	}
	if claims.UserID != session.User.ID || claims.Role != "student" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRegisterRejectsElevatedRole(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email: "boss@example.com", Password: "password123", Name: "Boss", Role: "admin",
	})
	if err != ErrRoleNotAllowed {
		t.Fatalf("expected ErrRoleNotAllowed, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	req := RegisterRequest{Email: "dup@example.com", Password: "password123", Name: "Dup"}

	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	if _, err := svc.Register(ctx, req); err != ErrEmailAlreadyExists {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{
		Email: "m@example.com", Password: "password123", Name: "Manager", Role: "manager",
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	session, err := svc.Login(ctx, LoginRequest{Email: "M@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.User.Role != RoleManager {
		t.Fatalf("expected manager, got %s", session.User.Role)
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "m@example.com", Password: "wrong"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "x"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRoleIsElevated(t *testing.T) {
	cases := map[Role]bool{
		RoleStudent: false,
		RoleManager: false,
		RoleStaff:   true,
		RoleAdmin:   true,
	}
	for role, want := range cases {
		if got := role.IsElevated(); got != want {
			t.Errorf("%s.IsElevated() = %v, want %v", role, got, want)
		}
	}
}
