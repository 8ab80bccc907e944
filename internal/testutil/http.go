package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

// HTTPResult captures HTTP response details for test assertions
type HTTPResult struct {
	Code    int
	Error   error
	Headers http.Header
	Body    []byte
}

// Header represents an HTTP header key-value pair
type Header struct {
	Key   string
	Value string
}

// ContentTypeJSON returns a header for JSON content type
func ContentTypeJSON() Header {
	return Header{
		Key:   "Content-Type",
		Value: "application/json",
	}
}

// ExpectStatus validates the HTTP status code and fails the test if it doesn't match
func ExpectStatus(
	t *testing.T,
	expected int,
	result HTTPResult,
) {
	t.Helper()
	if result.Error != nil {
		t.Fatalf("request error: %v", result.Error)
	}
	if result.Code != expected {
		t.Fatalf("expected status %d, got %d. Body: %s", expected, result.Code, string(result.Body))
	}
}

// ExpectProblem validates a problem details response and returns it parsed
func ExpectProblem(
	t *testing.T,
	expected int,
	result HTTPResult,
) *identity.ProblemDetails {
	t.Helper()
	ExpectStatus(t, expected, result)
	if ct := result.Headers.Get("Content-Type"); ct != identity.ContentTypeProblem {
		t.Fatalf("expected content type %s, got %q", identity.ContentTypeProblem, ct)
	}

	var problem struct {
		Title  string `json:"title"`
		Status int    `json:"status"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(result.Body, &problem); err != nil {
		t.Fatalf("problem body is not JSON: %v", err)
	}

	parsed, err := identity.ParseProblemDetails(result.Body)
	if err != nil {
		// problems without validation errors still carry title and status
		return &identity.ProblemDetails{
			Title:  problem.Title,
			Status: problem.Status,
			Detail: problem.Detail,
		}
	}
	return parsed
}

// CookiesFrom returns a Cookie header carrying every cookie set by result
func CookiesFrom(
	t *testing.T,
	result HTTPResult,
) Header {
	t.Helper()
	cookies := (&http.Response{Header: result.Headers}).Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected Set-Cookie in response")
	}

	pairs := make([]string, len(cookies))
	for i, c := range cookies {
		pairs[i] = c.Name + "=" + c.Value
	}
	return Header{Key: "Cookie", Value: strings.Join(pairs, "; ")}
}

// Get performs a GET request and optionally decodes JSON response
func Get(
	router http.Handler,
	url string,
	response any,
	headers ...Header,
) HTTPResult {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	return serve(router, req, response, headers)
}

// Post performs a POST request and optionally decodes JSON response
func Post(
	router http.Handler,
	url string,
	body string,
	response any,
	headers ...Header,
) HTTPResult {
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	return serve(router, req, response, headers)
}

// PostJSON performs a POST with JSON body
func PostJSON(
	router http.Handler,
	urlPath string,
	body string,
	response any,
	headers ...Header,
) HTTPResult {
	return Post(router, urlPath, body, response, append([]Header{ContentTypeJSON()}, headers...)...)
}

func serve(
	router http.Handler,
	req *http.Request,
	response any,
	headers []Header,
) HTTPResult {
	res := httptest.NewRecorder()
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	router.ServeHTTP(res, req)

	if response != nil && res.Body.Len() > 0 {
		if err := json.Unmarshal(res.Body.Bytes(), response); err != nil {
			return HTTPResult{
				Code:    res.Code,
				Error:   fmt.Errorf("failed to decode JSON: %v\n%s", err, res.Body.String()),
				Headers: res.Header(),
				Body:    res.Body.Bytes(),
			}
		}
	}

	return HTTPResult{Code: res.Code, Headers: res.Header(), Body: res.Body.Bytes()}
}
