package identity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

func TestParseProblemDetails_FlattensArrayAndScalar(t *testing.T) {
	t.Parallel()

	body := `{"errors":{"DuplicateEmail":["Email already taken"],"PasswordTooShort":"Too short"}}`
	problem, err := identity.ParseProblemDetails([]byte(body))
	require.NoError(t, err)

	// messages keep server order across array and scalar forms
	assert.Equal(t, []string{"Email already taken", "Too short"}, problem.Messages())
}

func TestParseProblemDetails_PreservesEmissionOrder(t *testing.T) {
	t.Parallel()

	// keys deliberately out of lexical order
	body := `{
		"type": "https://tools.ietf.org/html/rfc9110#section-15.5.1",
		"title": "One or more validation errors occurred.",
		"status": 400,
		"errors": {
			"Zeta": ["z1", "z2"],
			"Alpha": "a1",
			"Mu": ["m1"]
		}
	}`
	problem, err := identity.ParseProblemDetails([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, []string{"z1", "z2", "a1", "m1"}, problem.Messages())
	assert.Equal(t, 400, problem.Status)
	assert.Equal(t, "One or more validation errors occurred.", problem.Title)
	require.Len(t, problem.Errors, 3)
	assert.Equal(t, "Zeta", problem.Errors[0].Field)
}

func TestParseProblemDetails_DropsEmptyMessages(t *testing.T) {
	t.Parallel()

	body := `{"errors":{"A":["", "kept"],"B":""}}`
	problem, err := identity.ParseProblemDetails([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, []string{"kept"}, problem.Messages())
}

func TestParseProblemDetails_LenientDescriptiveMembers(t *testing.T) {
	t.Parallel()

	// a malformed status does not invalidate usable errors
	body := `{"status":"bad","errors":{"A":"message"}}`
	problem, err := identity.ParseProblemDetails([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, []string{"message"}, problem.Messages())
}

func TestParseProblemDetails_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":         `<html>oops</html>`,
		"empty":            ``,
		"array":            `["a"]`,
		"null":             `null`,
		"missing errors":   `{"title":"Bad Request","status":400}`,
		"errors not obj":   `{"errors":["a","b"]}`,
		"errors null":      `{"errors":null}`,
		"number value":     `{"errors":{"A":42}}`,
		"mixed array":      `{"errors":{"A":["ok", 3]}}`,
		"trailing garbage": `{"errors":{"A":"x"}} trailing`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := identity.ParseProblemDetails([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestProblemDetails_MarshalKeepsOrder(t *testing.T) {
	t.Parallel()

	problem := identity.ProblemDetails{
		Title:  "One or more validation errors occurred.",
		Status: 400,
		Errors: []identity.FieldErrors{
			{Field: "PasswordTooShort", Messages: []string{"short"}},
			{Field: "DuplicateUserName", Messages: []string{"taken"}},
		},
	}

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	// output is parseable and messages come back in the same order
	parsed, err := identity.ParseProblemDetails(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"short", "taken"}, parsed.Messages())
	assert.JSONEq(t,
		`{"title":"One or more validation errors occurred.","status":400,"errors":{"PasswordTooShort":["short"],"DuplicateUserName":["taken"]}}`,
		string(data),
	)
}
