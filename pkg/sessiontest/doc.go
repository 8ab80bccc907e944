// Package sessiontest provides utilities for testing applications that use
// the session package.
//
// It provides:
//
//   - Stub: an in-memory session.Provider with no network and no server
//   - Server: an in-process identity server speaking the real wire protocol
//
// # Basic Usage
//
// Views and route guards that depend on session.StateReader or
// session.AccountManager can be tested against a Stub:
//
//	func TestProfilePage(t *testing.T) {
//	    stub := sessiontest.NewStub(sessiontest.User{Email: "alice@example.com", Password: "pw"})
//	    page := myapp.NewProfilePage(stub) // stub implements session.Provider
//
//	    stub.Login(ctx, identity.Credentials{Email: "alice@example.com", Password: "pw"})
//
//	    if got := page.Greeting(ctx); got != "hello, alice@example.com" {
//	        t.Errorf("unexpected greeting %q", got)
//	    }
//	}
//
// Stub.Notifications records every snapshot published to subscribers, so
// tests can check that a view was told about each change.
//
// # Against a Real Server
//
// To exercise cookies, status codes, and problem details end to end, start
// an in-process server and build a Manager for it:
//
//	func TestLoginFlow(t *testing.T) {
//	    srv := sessiontest.NewServer(t, sessiontest.User{Email: "alice@example.com", Password: "pw"})
//	    auth := srv.NewManager(t)
//
//	    result := auth.Login(ctx, identity.Credentials{Email: "alice@example.com", Password: "pw"})
//	    if !result.Succeeded {
//	        t.Fatal(result.Errors)
//	    }
//	}
//
// Each Manager from NewManager has its own cookie jar, so two managers are
// two independent browser sessions. The server enforces the default password
// policy on registration; users passed to NewServer bypass it.
package sessiontest
