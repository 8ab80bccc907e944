package transport_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~jakintosh/cookieauth/pkg/transport"
)

func TestNew_AttachesHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client, err := transport.New(transport.Config{})
	require.NoError(t, err)

	res, err := client.Get(ts.URL)
	require.NoError(t, err)
	res.Body.Close()

	// every request carries the anti-forgery header and asks for json
	assert.Equal(t, transport.RequestedWithXHR, got.Get(transport.HeaderRequestedWith))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestNew_KeepsCallerAccept(t *testing.T) {
	t.Parallel()

	var accept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
	}))
	defer ts.Close()

	client, err := transport.New(transport.Config{})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/plain")

	res, err := client.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	// an explicit Accept header is left alone, and the original request is untouched
	assert.Equal(t, "text/plain", accept)
	assert.Empty(t, req.Header.Get(transport.HeaderRequestedWith))
}

func TestNew_CarriesSessionCookie(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
	})
	var cookie string
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			cookie = c.Value
		}
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client, err := transport.New(transport.Config{})
	require.NoError(t, err)

	res, err := client.Get(ts.URL + "/set")
	require.NoError(t, err)
	res.Body.Close()
	res, err = client.Get(ts.URL + "/echo")
	require.NoError(t, err)
	res.Body.Close()

	// cookie set by the server is sent back on later requests
	assert.Equal(t, "abc", cookie)
}

func TestNew_SeparateJars(t *testing.T) {
	t.Parallel()

	a, err := transport.New(transport.Config{})
	require.NoError(t, err)
	b, err := transport.New(transport.Config{})
	require.NoError(t, err)

	// each client gets its own jar
	assert.NotSame(t, a.Jar, b.Jar)
}

func TestNew_Timeout(t *testing.T) {
	t.Parallel()

	client, err := transport.New(transport.Config{})
	require.NoError(t, err)
	assert.Equal(t, transport.DefaultTimeout, client.Timeout)

	client, err = transport.New(transport.Config{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, time.Second, client.Timeout)
}
