package service_test

import (
	"errors"
	"testing"

	"git.sr.ht/~jakintosh/cookieauth/internal/service"
	"git.sr.ht/~jakintosh/cookieauth/internal/testutil"
)

func TestAuthenticate_Success(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	// setup env
	env.RegisterTestUser(t, "alice@example.com", "password123")

	// valid credentials return the account id
	id, err := env.Service.Authenticate("alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected account id")
	}

	// the id resolves to the same account
	info, err := env.Service.UserInfo(id)
	if err != nil {
		t.Fatalf("UserInfo failed: %v", err)
	}
	if info.Email != "alice@example.com" {
		t.Errorf("email = %s, want alice@example.com", info.Email)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	// setup env
	env.RegisterTestUser(t, "alice@example.com", "password123")

	// wrong password returns ErrInvalidCredentials
	_, err := env.Service.Authenticate("alice@example.com", "wrongpassword")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	// unknown user returns ErrAccountNotFound
	_, err := env.Service.Authenticate("unknown@example.com", "password")
	if !errors.Is(err, service.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUserInfo_UnknownAccount(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	// unknown id returns ErrAccountNotFound
	_, err := env.Service.UserInfo("missing")
	if !errors.Is(err, service.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
