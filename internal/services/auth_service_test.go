package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nchalk/go-debate-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	return NewAuthService(db, NewSessionService(db, time.Hour))
}

func TestSignup_LoginRoundTrip(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, "Alice", "Alice@Example.com", "secret1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if token == "" {
		t.Fatalf("expected a session token")
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("password stored in the clear")
	}

	// Signup token passes whoami.
	me, err := svc.Whoami(ctx, token)
	if err != nil {
		t.Fatalf("whoami after signup: %v", err)
	}
	if me.ID != user.ID {
		t.Fatalf("whoami returned wrong user: %q vs %q", me.ID, user.ID)
	}

	// A later login with the same credentials succeeds and its token passes whoami.
	logged, token2, err := svc.Login(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("login returned wrong user")
	}
	if token2 == token {
		t.Fatalf("tokens must never be reused")
	}
	if _, err := svc.Whoami(ctx, token2); err != nil {
		t.Fatalf("whoami after login: %v", err)
	}
}

func TestSignup_Validation(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{" A ", "a@example.com", "secret1", ErrNameTooShort},
		{"Alice", "a@example.com", "12345", ErrPasswordTooShort},
		{"Alice", "not-an-email", "secret1", ErrInvalidEmail},
		{"Alice", "a@b", "secret1", ErrInvalidEmail},
		{"Alice", "", "secret1", ErrInvalidEmail},
	}
	for _, tc := range cases {
		if _, _, err := svc.Signup(ctx, tc.name, tc.email, tc.password); !errors.Is(err, tc.want) {
			t.Fatalf("Signup(%q, %q, %q) = %v; want %v", tc.name, tc.email, tc.password, err, tc.want)
		}
	}

	// Nothing was persisted by the rejected attempts.
	var cnt int64
	if err := svc.DB.Table("users").Count(&cnt).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("validation failures must not create rows, found %d", cnt)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "Alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, _, err := svc.Signup(ctx, "Other", "alice@example.com", "secret2")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	var cnt int64
	if err := svc.DB.Table("users").Count(&cnt).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected a single user row, got %d", cnt)
	}
}

func TestLogin_Mismatches(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "Alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	// Unknown email and wrong password must be indistinguishable.
	_, _, errUnknown := svc.Login(ctx, "nobody@example.com", "secret1")
	_, _, errWrong := svc.Login(ctx, "alice@example.com", "wrongpass")
	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errUnknown, errWrong)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	_, token, err := svc.Signup(ctx, "Alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	existed, err := svc.Logout(ctx, token)
	if err != nil || !existed {
		t.Fatalf("first logout = (%v, %v); want (true, nil)", existed, err)
	}
	existed, err = svc.Logout(ctx, token)
	if err != nil || existed {
		t.Fatalf("second logout = (%v, %v); want (false, nil)", existed, err)
	}

	if _, err := svc.Whoami(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("revoked token must fail whoami, got %v", err)
	}
}
