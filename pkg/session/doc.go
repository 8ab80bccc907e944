// Package session keeps an application's view of who is logged in to a
// cookie-session identity server, and performs the operations that change it.
//
// The server owns the session: it sets a cookie on login and forgets it on
// logout. This package never sees a password after the request that carries
// it, never stores tokens, and keeps nothing beyond the last computed
// identity snapshot in memory.
//
// # Quick Start
//
// Build an HTTP client with the transport package and hand it to New along
// with the identity server's base address:
//
//	import (
//	    "git.sr.ht/~jakintosh/cookieauth/pkg/session"
//	    "git.sr.ht/~jakintosh/cookieauth/pkg/transport"
//	)
//
//	httpClient, err := transport.New(transport.Config{})
//	if err != nil {
//	    return err
//	}
//
//	auth, err := session.New("https://identity.example.com/", httpClient)
//	if err != nil {
//	    return err
//	}
//
// # Reading the Current Identity
//
// CurrentIdentity asks the server and returns a snapshot. It never returns an
// error: when the server cannot be reached, answers with a non-2xx status, or
// sends a body that does not decode, the snapshot is anonymous.
//
//	me := auth.CurrentIdentity(ctx)
//	if !me.IsAuthenticated() {
//	    // show the login form
//	}
//	fmt.Println("hello,", me.Name())
//
// Current returns the last computed snapshot without a request.
//
// # Changing the Session
//
// Login, Logout, and Register return plain values; nothing to unwrap:
//
//	result := auth.Login(ctx, identity.Credentials{Email: email, Password: password})
//	if !result.Succeeded {
//	    showErrors(result.Errors) // always ["Invalid email or password"]
//	}
//
//	result = auth.Register(ctx, email, password)
//	if !result.Succeeded {
//	    showErrors(result.Errors) // the server's validation messages, in order
//	}
//
//	auth.Logout(ctx)
//
// # Change Notifications
//
// Subscribers receive a freshly computed snapshot after every successful
// login and after every logout:
//
//	unsubscribe := auth.Subscribe(func(s identity.Snapshot) {
//	    render(s)
//	})
//	defer unsubscribe()
//
// Notifications are delivered synchronously on the goroutine that performed
// the operation, after its request completed. When operations overlap, the
// snapshot from the query that finishes last is the one Current reports.
//
// # Testing
//
// Depend on StateReader or AccountManager rather than *Manager. The
// sessiontest package provides a network-free Stub and an in-process fake
// identity server.
package session
