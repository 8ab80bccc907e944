package sessiontest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
	"git.sr.ht/~jakintosh/cookieauth/pkg/session"
	"git.sr.ht/~jakintosh/cookieauth/pkg/sessiontest"
)

var alice = sessiontest.User{
	Email:    "alice@example.com",
	Password: "pw",
	Claims:   []identity.Claim{{Type: "role", Value: "admin"}},
}

func TestStub_LoginAndLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	stub := sessiontest.NewStub(alice)

	var seen []identity.Snapshot
	stub.Subscribe(func(s identity.Snapshot) { seen = append(seen, s) })

	// anonymous until login
	assert.False(t, stub.CurrentIdentity(ctx).IsAuthenticated())

	// login publishes the authenticated snapshot
	require.True(t, stub.Login(ctx, identity.Credentials{Email: "alice@example.com", Password: "pw"}).Succeeded)
	current := stub.Current()
	assert.True(t, current.IsAuthenticated())
	assert.Equal(t, "alice@example.com", current.Name())
	role, ok := current.Claim("role")
	assert.True(t, ok)
	assert.Equal(t, "admin", role)

	// logout publishes anonymous
	stub.Logout(ctx)
	assert.False(t, stub.Current().IsAuthenticated())

	require.Len(t, seen, 2)
	assert.Equal(t, seen, stub.Notifications())
}

func TestStub_LoginFailure(t *testing.T) {
	t.Parallel()
	stub := sessiontest.NewStub(alice)

	// wrong password fails with the fixed message and publishes nothing
	result := stub.Login(context.Background(), identity.Credentials{Email: "alice@example.com", Password: "nope"})
	assert.Equal(t, identity.Failure(session.MessageInvalidLogin), result)
	assert.Empty(t, stub.Notifications())
}

func TestStub_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	stub := sessiontest.NewStub(alice)

	// new account can log in but is not logged in by registering
	assert.True(t, stub.Register(ctx, "bob@example.com", "pw2").Succeeded)
	assert.False(t, stub.Current().IsAuthenticated())
	assert.True(t, stub.Login(ctx, identity.Credentials{Email: "bob@example.com", Password: "pw2"}).Succeeded)

	// duplicate email fails
	result := stub.Register(ctx, "ALICE@example.com", "x")
	assert.Equal(t, []string{"Username 'ALICE@example.com' is already taken."}, result.Errors)

	// scripted failures are returned as given
	stub.FailRegister("Too short", "Needs a digit")
	result = stub.Register(ctx, "carol@example.com", "x")
	assert.Equal(t, []string{"Too short", "Needs a digit"}, result.Errors)

	stub.FailRegister()
	assert.True(t, stub.Register(ctx, "carol@example.com", "x").Succeeded)
}

func TestStub_ExpireSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	stub := sessiontest.NewStub(alice)
	require.True(t, stub.Login(ctx, identity.Credentials{Email: "alice@example.com", Password: "pw"}).Succeeded)

	// expiry is only seen by the next query, without notification
	stub.ExpireSession()
	assert.True(t, stub.Current().IsAuthenticated())
	assert.False(t, stub.CurrentIdentity(ctx).IsAuthenticated())
	assert.Len(t, stub.Notifications(), 1)
}

func TestStub_Unsubscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	stub := sessiontest.NewStub(alice)

	calls := 0
	unsubscribe := stub.Subscribe(func(identity.Snapshot) { calls++ })
	stub.Logout(ctx)
	unsubscribe()
	stub.Logout(ctx)

	assert.Equal(t, 1, calls)
	assert.Len(t, stub.Notifications(), 2)
}
