package user

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"voiceagent-server/internal/utils/platformerrors"
)

// mockUserStore keeps users in a map keyed by email.
type mockUserStore struct {
	byEmail map[string]*User
	byID    map[string]*User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		byEmail: make(map[string]*User),
		byID:    make(map[string]*User),
	}
}

func (m *mockUserStore) Create(ctx context.Context, u *User) error {
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id string) (*User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

// mockTokenIssuer returns fixed tokens.
type mockTokenIssuer struct{}

func (m *mockTokenIssuer) IssueAccess(u *User) (string, error) { return "access-" + u.ID, nil }
func (m *mockTokenIssuer) IssueRefresh(userID string) (string, error) {
	return "refresh-" + userID, nil
}

func newTestService(store Store) Service {
	return NewService(store, &mockTokenIssuer{}, bcrypt.MinCost, zerolog.Nop())
}

func errorType(t *testing.T, err error) platformerrors.ErrorType {
	t.Helper()
	var pe *platformerrors.PlatformError
	if !errors.As(err, &pe) {
		t.Fatalf("error %v is not a PlatformError", err)
	}
	return pe.Type
}

func TestRegister(t *testing.T) {
	store := newMockUserStore()
	svc := newTestService(store)

	result, err := svc.Register(context.Background(), "a@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.User.Plan != PlanFree {
		t.Errorf("Plan = %q, want free", result.User.Plan)
	}
	if result.User.PasswordHash == "password123" {
		t.Error("password stored in plaintext")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("tokens were not issued")
	}
	if _, ok := store.byEmail["a@example.com"]; !ok {
		t.Error("user was not persisted")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(newMockUserStore())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "missing email", email: "", password: "password123"},
		{name: "missing password", email: "a@example.com", password: ""},
		{name: "short password", email: "a@example.com", password: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.password)
			if err == nil {
				t.Fatal("Register() succeeded, want validation error")
			}
			if got := errorType(t, err); got != platformerrors.ErrorTypeValidation {
				t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeValidation)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newMockUserStore()
	svc := newTestService(store)

	if _, err := svc.Register(context.Background(), "a@example.com", "password123"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), "a@example.com", "password456")
	if err == nil {
		t.Fatal("duplicate Register() succeeded")
	}
	if got := errorType(t, err); got != platformerrors.ErrorTypeConflict {
		t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeConflict)
	}
}

func TestLogin(t *testing.T) {
	store := newMockUserStore()
	svc := newTestService(store)

	registered, err := svc.Register(context.Background(), "a@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.Login(context.Background(), "a@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.ID != registered.User.ID {
		t.Errorf("Login() user = %q, want %q", result.User.ID, registered.User.ID)
	}
	if result.AccessToken == "" {
		t.Error("access token missing")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := newMockUserStore()
	svc := newTestService(store)

	if _, err := svc.Register(context.Background(), "a@example.com", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "a@example.com", password: "wrongpassword"},
		{name: "unknown email", email: "nobody@example.com", password: "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.email, tt.password)
			if err == nil {
				t.Fatal("Login() succeeded, want rejection")
			}
			// Both cases look identical to the caller.
			if got := errorType(t, err); got != platformerrors.ErrorTypeUnauthorized {
				t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeUnauthorized)
			}
		})
	}
}

func TestGet(t *testing.T) {
	store := newMockUserStore()
	svc := newTestService(store)

	registered, err := svc.Register(context.Background(), "a@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	u, err := svc.Get(context.Background(), registered.User.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if u.Email != "a@example.com" {
		t.Errorf("Email = %q, want a@example.com", u.Email)
	}

	if _, err := svc.Get(context.Background(), "missing"); err == nil {
		t.Fatal("Get() for missing user succeeded")
	} else if got := errorType(t, err); got != platformerrors.ErrorTypeNotFound {
		t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeNotFound)
	}
}
