package sessiontest

import (
	"net/http/httptest"
	"testing"

	"git.sr.ht/~jakintosh/cookieauth/internal/api"
	"git.sr.ht/~jakintosh/cookieauth/internal/database"
	"git.sr.ht/~jakintosh/cookieauth/internal/service"
	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
	"git.sr.ht/~jakintosh/cookieauth/pkg/session"
	"git.sr.ht/~jakintosh/cookieauth/pkg/transport"
)

// Server is an in-process identity server backed by in-memory SQLite.
type Server struct {
	*httptest.Server
	svc *service.Service
}

// NewServer starts a server with users already registered. It is closed
// when the test ends.
func NewServer(
	t testing.TB,
	users ...User,
) *Server {
	t.Helper()

	db, err := database.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("sessiontest: failed to create database: %v", err)
	}

	svc := service.New(
		db.IdentityStore(),
		service.DefaultPasswordPolicy(),
		service.PasswordModeTesting,
		nil,
	)
	a := api.New(svc, api.NewSessionManager(db.SessionStore()))

	s := &Server{
		Server: httptest.NewServer(a.Router()),
		svc:    svc,
	}
	t.Cleanup(func() {
		s.Close()
		_ = db.Close()
	})

	for _, u := range users {
		s.AddUser(t, u)
	}
	return s
}

// AddUser registers u without applying the password policy.
func (s *Server) AddUser(
	t testing.TB,
	u User,
) {
	t.Helper()
	created, err := s.svc.Seed(service.User{
		Email:          u.Email,
		Password:       u.Password,
		EmailConfirmed: u.EmailConfirmed,
		Claims:         identity.Claims(u.Claims),
	})
	if err != nil {
		t.Fatalf("sessiontest: failed to add user %s: %v", u.Email, err)
	}
	if !created {
		t.Fatalf("sessiontest: user %s already exists", u.Email)
	}
}

// NewManager returns a Manager for this server with its own cookie jar.
func (s *Server) NewManager(
	t testing.TB,
	opts ...session.Option,
) *session.Manager {
	t.Helper()

	client, err := transport.New(transport.Config{Base: s.Client().Transport})
	if err != nil {
		t.Fatalf("sessiontest: failed to create transport: %v", err)
	}

	m, err := session.New(s.URL, client, opts...)
	if err != nil {
		t.Fatalf("sessiontest: failed to create manager: %v", err)
	}
	return m
}
