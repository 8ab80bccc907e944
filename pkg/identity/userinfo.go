package identity

import (
	"encoding/json"
	"fmt"
)

// Claims is an ordered set of claims that travels on the wire as a JSON object
// mapping claim type to value. Decoding keeps the order the server emitted.
type Claims []Claim

func (c *Claims) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*c = nil
		return nil
	}

	members, err := decodeObject(data)
	if err != nil {
		return err
	}

	claims := make(Claims, 0, len(members))
	for _, m := range members {
		var value string
		if err := json.Unmarshal(m.value, &value); err != nil {
			return fmt.Errorf("claim %q: %w", m.key, err)
		}
		claims = append(claims, Claim{Type: m.key, Value: value})
	}
	*c = claims
	return nil
}

func (c Claims) MarshalJSON() ([]byte, error) {
	members := make([]member, 0, len(c))
	for _, claim := range c {
		value, err := json.Marshal(claim.Value)
		if err != nil {
			return nil, err
		}
		members = append(members, member{key: claim.Type, value: value})
	}
	return encodeObject(members)
}

// UserInfo is the body returned by the identity server's "who am I" endpoint.
type UserInfo struct {
	Email            string `json:"email"`
	IsEmailConfirmed bool   `json:"isEmailConfirmed"`
	Claims           Claims `json:"claims"`
}

// DecodeUserInfo decodes a user info body. A JSON null body is rejected, so a
// nil error always comes with a usable value.
func DecodeUserInfo(data []byte) (*UserInfo, error) {
	var info *UserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrNotObject
	}
	return info, nil
}

// Snapshot maps user info into an authenticated snapshot. The email becomes
// both the name claim and the email claim; any server claims follow in order.
func (u UserInfo) Snapshot() Snapshot {
	claims := make([]Claim, 0, 2+len(u.Claims))
	claims = append(claims,
		Claim{Type: ClaimTypeName, Value: u.Email},
		Claim{Type: ClaimTypeEmail, Value: u.Email},
	)
	claims = append(claims, u.Claims...)
	return Authenticated(u.Email, u.IsEmailConfirmed, claims...)
}
