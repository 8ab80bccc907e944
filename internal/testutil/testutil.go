// Package testutil provides test environment setup and utilities for internal package tests.
package testutil

import (
	"net/http"
	"testing"

	"github.com/alexedwards/scs/v2"

	"git.sr.ht/~jakintosh/cookieauth/internal/api"
	"git.sr.ht/~jakintosh/cookieauth/internal/database"
	"git.sr.ht/~jakintosh/cookieauth/internal/service"
	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

// TestEnv provides all dependencies needed for testing
type TestEnv struct {
	DB       *database.SQLiteStore
	Service  *service.Service
	Sessions *scs.SessionManager
	Router   http.Handler
}

// SetupTestEnv creates an isolated test environment with in-memory SQLite
func SetupTestEnv(
	t *testing.T,
) *TestEnv {
	t.Helper()

	// create in-memory SQLite database
	db, err := database.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// create service
	svc := service.New(
		db.IdentityStore(),
		service.DefaultPasswordPolicy(),
		service.PasswordModeTesting,
		nil,
	)

	// setup cleanup
	t.Cleanup(func() {
		_ = db.Close()
	})

	return &TestEnv{
		DB:       db,
		Service:  svc,
		Sessions: api.NewSessionManager(db.SessionStore()),
	}
}

// SetupTestEnvWithRouter creates TestEnv and configures the API router
func SetupTestEnvWithRouter(
	t *testing.T,
) *TestEnv {
	t.Helper()
	env := SetupTestEnv(t)
	a := api.New(env.Service, env.Sessions)
	env.Router = a.Router()
	return env
}

// RegisterTestUser creates a test user in the database, bypassing the
// password policy
func (env *TestEnv) RegisterTestUser(
	t *testing.T,
	email string,
	password string,
	claims ...identity.Claim,
) {
	t.Helper()
	created, err := env.Service.Seed(service.User{
		Email:    email,
		Password: password,
		Claims:   claims,
	})
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}
	if !created {
		t.Fatalf("test user %s already exists", email)
	}
}

// Login posts credentials to the router and returns a header carrying the
// resulting session cookie
func (env *TestEnv) Login(
	t *testing.T,
	email string,
	password string,
) Header {
	t.Helper()
	body := `{"email":"` + email + `","password":"` + password + `"}`
	result := PostJSON(env.Router, "/login?useCookies=true", body, nil)
	ExpectStatus(t, http.StatusOK, result)
	return CookiesFrom(t, result)
}
