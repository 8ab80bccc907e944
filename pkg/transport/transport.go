// Package transport builds the HTTP client a session talks to its identity
// server through. The client keeps the server's session cookie in an
// in-memory jar and marks every request as a script request, so the server
// answers with status codes instead of login-page redirects.
package transport

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

const (
	HeaderRequestedWith = "X-Requested-With"
	RequestedWithXHR    = "XMLHttpRequest"
	DefaultTimeout      = 30 * time.Second
)

// Config controls the client returned by New. The zero value is usable.
type Config struct {
	// Timeout bounds each request; zero means DefaultTimeout.
	Timeout time.Duration

	// Jar stores cookies; nil means a fresh in-memory jar.
	Jar http.CookieJar

	// Base performs the round trips; nil means http.DefaultTransport.
	Base http.RoundTripper
}

// New returns an *http.Client that attaches the session cookie and the
// anti-forgery header to every request.
func New(cfg Config) (*http.Client, error) {
	jar := cfg.Jar
	if jar == nil {
		var err error
		if jar, err = NewJar(); err != nil {
			return nil, err
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Jar:       jar,
		Timeout:   timeout,
		Transport: &headerTransport{base: cfg.Base},
	}, nil
}

// NewJar returns an empty in-memory cookie jar. Cookies never outlive it.
func NewJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// a RoundTripper must not modify the caller's request
	req = req.Clone(req.Context())
	req.Header.Set(HeaderRequestedWith, RequestedWithXHR)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
