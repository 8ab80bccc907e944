package identity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

func TestUserInfo_Snapshot(t *testing.T) {
	t.Parallel()

	info, err := identity.DecodeUserInfo([]byte(`{"email":"a@b.com","isEmailConfirmed":true,"claims":{}}`))
	require.NoError(t, err)

	snapshot := info.Snapshot()

	// email populates both the name and the email claim
	assert.True(t, snapshot.IsAuthenticated())
	assert.Equal(t, "a@b.com", snapshot.Email())
	assert.True(t, snapshot.EmailConfirmed())
	assert.Equal(t, "a@b.com", snapshot.Name())
	email, ok := snapshot.Claim(identity.ClaimTypeEmail)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", email)
	assert.Len(t, snapshot.Claims(), 2)
}

func TestUserInfo_ServerClaimsFollowInOrder(t *testing.T) {
	t.Parallel()

	body := `{"email":"a@b.com","isEmailConfirmed":false,"claims":{"role":"admin","tenant":"t1","amr":"pwd"}}`
	info, err := identity.DecodeUserInfo([]byte(body))
	require.NoError(t, err)

	claims := info.Snapshot().Claims()
	require.Len(t, claims, 5)
	assert.Equal(t, identity.ClaimTypeName, claims[0].Type)
	assert.Equal(t, identity.ClaimTypeEmail, claims[1].Type)
	assert.Equal(t, []identity.Claim{
		{Type: "role", Value: "admin"},
		{Type: "tenant", Value: "t1"},
		{Type: "amr", Value: "pwd"},
	}, claims[2:])
}

func TestDecodeUserInfo_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"null":          `null`,
		"not json":      `Unauthorized`,
		"claim number":  `{"email":"a@b.com","claims":{"n":1}}`,
		"claims array":  `{"email":"a@b.com","claims":["x"]}`,
		"wrong type":    `{"email":5}`,
		"top-level arr": `[]`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := identity.DecodeUserInfo([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestClaims_MarshalRoundTripOrder(t *testing.T) {
	t.Parallel()

	info := identity.UserInfo{
		Email: "a@b.com",
		Claims: identity.Claims{
			{Type: "z", Value: "1"},
			{Type: "a", Value: "2"},
		},
	}
	data, err := json.Marshal(info)
	require.NoError(t, err)

	// claims serialize as an object in slice order
	assert.Contains(t, string(data), `"claims":{"z":"1","a":"2"}`)
}

func TestSnapshot_Anonymous(t *testing.T) {
	t.Parallel()

	anon := identity.Anonymous()

	assert.False(t, anon.IsAuthenticated())
	assert.Empty(t, anon.Email())
	assert.Empty(t, anon.Name())
	assert.Empty(t, anon.Claims())
	assert.Equal(t, "anonymous", anon.String())
	assert.True(t, anon.Equal(identity.Anonymous()))
}

func TestSnapshot_Immutable(t *testing.T) {
	t.Parallel()

	claims := []identity.Claim{{Type: "role", Value: "admin"}}
	snapshot := identity.Authenticated("a@b.com", true, claims...)

	// mutating the input slice does not reach the snapshot
	claims[0].Value = "changed"
	value, _ := snapshot.Claim("role")
	assert.Equal(t, "admin", value)

	// mutating the returned slice does not reach the snapshot
	out := snapshot.Claims()
	out[0].Value = "changed again"
	value, _ = snapshot.Claim("role")
	assert.Equal(t, "admin", value)
}

func TestSnapshot_Equal(t *testing.T) {
	t.Parallel()

	a := identity.Authenticated("a@b.com", true, identity.Claim{Type: "x", Value: "1"})
	b := identity.Authenticated("a@b.com", true, identity.Claim{Type: "x", Value: "1"})
	c := identity.Authenticated("a@b.com", false, identity.Claim{Type: "x", Value: "1"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(identity.Anonymous()))
}

func TestResult(t *testing.T) {
	t.Parallel()

	// success carries an empty, non-nil error list
	ok := identity.Success()
	assert.True(t, ok.Succeeded)
	assert.NotNil(t, ok.Errors)
	assert.Empty(t, ok.Errors)

	// failure keeps messages in order and drops empties
	failed := identity.Failure("first", "", "second")
	assert.False(t, failed.Succeeded)
	assert.Equal(t, []string{"first", "second"}, failed.Errors)

	// failure is never empty
	bare := identity.Failure()
	assert.False(t, bare.Succeeded)
	assert.Len(t, bare.Errors, 1)
}
