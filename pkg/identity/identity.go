// Package identity defines the values exchanged between a cookie-session
// client and its identity server: identity snapshots, claims, credentials,
// operation results, and the wire shapes of user info and problem details.
//
// Every value in this package is immutable once constructed. A Snapshot is
// replaced wholesale when the current identity changes, never edited.
package identity

import "slices"

// Claim types used for the claims derived from a user's email address.
const (
	ClaimTypeName  = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	ClaimTypeEmail = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
)

// Claim is a typed fact about an identity.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Snapshot is the client's belief about the current user: either anonymous,
// or authenticated with an email address and an ordered set of claims.
type Snapshot struct {
	authenticated  bool
	email          string
	emailConfirmed bool
	claims         []Claim
}

// Anonymous returns the snapshot of a client with no authenticated user.
func Anonymous() Snapshot {
	return Snapshot{}
}

// Authenticated returns the snapshot of an authenticated user. The claims are
// copied; later changes to the passed slice are not observed.
func Authenticated(
	email string,
	emailConfirmed bool,
	claims ...Claim,
) Snapshot {
	return Snapshot{
		authenticated:  true,
		email:          email,
		emailConfirmed: emailConfirmed,
		claims:         slices.Clone(claims),
	}
}

func (s Snapshot) IsAuthenticated() bool { return s.authenticated }
func (s Snapshot) Email() string         { return s.email }
func (s Snapshot) EmailConfirmed() bool  { return s.emailConfirmed }

// Claims returns a copy of the snapshot's claims in order.
func (s Snapshot) Claims() []Claim {
	return slices.Clone(s.claims)
}

// Claim returns the value of the first claim with the given type.
func (s Snapshot) Claim(claimType string) (string, bool) {
	for _, c := range s.claims {
		if c.Type == claimType {
			return c.Value, true
		}
	}
	return "", false
}

// Name returns the value of the name claim, or "" for an anonymous snapshot.
func (s Snapshot) Name() string {
	name, _ := s.Claim(ClaimTypeName)
	return name
}

// Equal reports whether two snapshots carry identical content.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.authenticated == other.authenticated &&
		s.email == other.email &&
		s.emailConfirmed == other.emailConfirmed &&
		slices.Equal(s.claims, other.claims)
}

func (s Snapshot) String() string {
	if !s.authenticated {
		return "anonymous"
	}
	return "authenticated(" + s.email + ")"
}

// Credentials is the outbound payload of a login or registration request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
