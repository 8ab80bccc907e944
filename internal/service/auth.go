package service

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Authenticate checks email and password and returns the account id.
func (s *Service) Authenticate(
	email string,
	password string,
) (
	string,
	error,
) {
	id, hash, err := s.identityStore.GetSecret(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrAccountNotFound, email)
		}
		return "", fmt.Errorf("%w: failed to retrieve secret: %v", ErrInternal, err)
	}

	err = bcrypt.CompareHashAndPassword(hash, []byte(password))
	if err != nil {
		return "", ErrInvalidCredentials
	}

	return id, nil
}
