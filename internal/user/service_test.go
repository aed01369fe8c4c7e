package user

import (
	"context"
	"errors"
	"testing"
)

type fakeRepo struct {
	users map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User)}
}

func (f *fakeRepo) CreateUser(_ context.Context, u *User) error {
	if _, ok := f.users[u.Username]; ok {
		return ErrExists
	}
	f.users[u.Username] = &User{Username: u.Username, Password: u.Password}
	return nil
}

func (f *fakeRepo) GetUserByUsername(_ context.Context, username string) (*User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func TestSignupLoginRoundTrip(t *testing.T) {
	svc := NewService(newFakeRepo(), "test-secret")
	ctx := context.Background()

	req := &SignupRequest{Username: "ada", Password: "hunter2"}
	if err := svc.Signup(ctx, req); err != nil {
		t.Fatalf("signup: %v", err)
	}

	res, err := svc.Login(ctx, req)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.TokenType != "bearer" || res.Username != "ada" || res.AccessToken == "" {
		t.Fatalf("unexpected login response: %+v", res)
	}

	username, err := svc.ValidateToken(res.AccessToken)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if username != "ada" {
		t.Fatalf("token resolved to %q, want ada", username)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc := NewService(newFakeRepo(), "test-secret")
	ctx := context.Background()

	req := &SignupRequest{Username: "ada", Password: "hunter2"}
	if err := svc.Signup(ctx, req); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := svc.Signup(ctx, req); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewService(newFakeRepo(), "test-secret")
	ctx := context.Background()

	if err := svc.Signup(ctx, &SignupRequest{Username: "ada", Password: "hunter2"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := svc.Login(ctx, &SignupRequest{Username: "ada", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, &SignupRequest{Username: "nobody", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewService(newFakeRepo(), "test-secret")

	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}

	// Token signed with a different secret
	other := NewService(newFakeRepo(), "other-secret")
	ctx := context.Background()
	if err := other.Signup(ctx, &SignupRequest{Username: "eve", Password: "pw"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	res, err := other.Login(ctx, &SignupRequest{Username: "eve", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.ValidateToken(res.AccessToken); err == nil {
		t.Fatal("expected an error for a token signed with another secret")
	}
}
