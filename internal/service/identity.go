package service

import (
	"database/sql"
	"errors"
	"fmt"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

// User describes an account to create outside the registration endpoint.
type User struct {
	Email          string          `json:"email"`
	Password       string          `json:"password"`
	EmailConfirmed bool            `json:"emailConfirmed"`
	Claims         identity.Claims `json:"claims"`
}

// Seed creates user without applying the password policy. An account that
// already exists for the email is left untouched and reported as not
// created.
func (s *Service) Seed(user User) (bool, error) {
	if user.Email == "" || user.Password == "" {
		return false, fmt.Errorf("%w: seed user needs an email and a password", ErrValidation)
	}

	err := s.insertAccount(user)
	if errors.Is(err, ErrEmailExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.log.Debug("seeded account", "email", user.Email)
	return true, nil
}

// UserInfo returns what the identity server reports about account id.
func (s *Service) UserInfo(id string) (*identity.UserInfo, error) {
	info, err := s.identityStore.GetUserInfo(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to load user info: %v", ErrInternal, err)
	}
	return info, nil
}
