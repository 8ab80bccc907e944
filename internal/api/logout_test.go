package api_test

import (
	"net/http"
	"testing"

	"git.sr.ht/~jakintosh/cookieauth/internal/testutil"
)

func TestLogout_Success(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// setup env
	env.RegisterTestUser(t, "alice@example.com", "password123")
	cookie := env.Login(t, "alice@example.com", "password123")

	// logout with a session and an empty object succeeds
	result := testutil.PostJSON(env.Router, "/auth/logout", "{}", nil, cookie)
	testutil.ExpectStatus(t, http.StatusOK, result)
}

func TestLogout_EndsSession(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// setup env
	env.RegisterTestUser(t, "alice@example.com", "password123")
	cookie := env.Login(t, "alice@example.com", "password123")

	// logout
	result := testutil.PostJSON(env.Router, "/auth/logout", "{}", nil, cookie)
	testutil.ExpectStatus(t, http.StatusOK, result)

	// the old cookie no longer identifies anyone
	result = testutil.Get(env.Router, "/manage/info", nil, cookie)
	testutil.ExpectStatus(t, http.StatusUnauthorized, result)
}

func TestLogout_WithoutSession(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// logout without a session is unauthorized
	result := testutil.PostJSON(env.Router, "/auth/logout", "{}", nil)
	testutil.ExpectStatus(t, http.StatusUnauthorized, result)
}

func TestLogout_NullBody(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// setup env
	env.RegisterTestUser(t, "alice@example.com", "password123")
	cookie := env.Login(t, "alice@example.com", "password123")

	// a null or missing body is refused and the session survives
	for _, body := range []string{"null", ""} {
		result := testutil.PostJSON(env.Router, "/auth/logout", body, nil, cookie)
		testutil.ExpectStatus(t, http.StatusUnauthorized, result)
	}
	result := testutil.Get(env.Router, "/manage/info", nil, cookie)
	testutil.ExpectStatus(t, http.StatusOK, result)
}
