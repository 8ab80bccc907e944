// Package service implements the business logic of the fake identity server:
// account registration with identity-style validation, password
// authentication, and user info lookup.
package service

import (
	"errors"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrValidation         = errors.New("validation failed")
	ErrInternal           = errors.New("internal error")
)

// PasswordMode controls bcrypt cost for password hashing.
// Use PasswordModeProduction for real deployments and PasswordModeTesting only in tests.
type PasswordMode int

const (
	// PasswordModeProduction uses bcrypt.DefaultCost (10) for secure password hashing.
	PasswordModeProduction PasswordMode = iota
	// PasswordModeTesting uses bcrypt.MinCost (4) for fast test execution.
	// WARNING: This mode will panic if used outside of go test.
	PasswordModeTesting
)

// Cost returns the bcrypt cost for this mode.
// Panics if PasswordModeTesting is used outside of a test binary.
func (m PasswordMode) Cost() int {
	switch m {
	case PasswordModeTesting:
		if !testing.Testing() {
			panic("service: PasswordModeTesting used outside of test environment")
		}
		return bcrypt.MinCost
	default:
		return bcrypt.DefaultCost
	}
}

// Service coordinates registration, authentication, and user info lookups.
// It depends on an IdentityStore and delegates to it for persistence.
type Service struct {
	identityStore IdentityStore
	policy        PasswordPolicy
	passwordMode  PasswordMode
	log           *slog.Logger
}

func New(
	identityStore IdentityStore,
	policy PasswordPolicy,
	passwordMode PasswordMode,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		identityStore: identityStore,
		policy:        policy,
		passwordMode:  passwordMode,
		log:           logger,
	}
}

func (s *Service) Policy() PasswordPolicy {
	return s.policy
}
