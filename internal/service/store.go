package service

import "git.sr.ht/~jakintosh/cookieauth/pkg/identity"

// Account is a stored identity.
type Account struct {
	ID             string
	Email          string
	Secret         []byte
	EmailConfirmed bool
	Claims         []identity.Claim
}

// IdentityStore handles persistence of user identity data. Emails compare
// case-insensitively.
type IdentityStore interface {
	InsertIdentity(account Account) error
	EmailExists(email string) (bool, error)
	GetSecret(email string) (id string, secret []byte, err error)
	GetUserInfo(id string) (*identity.UserInfo, error)
}
