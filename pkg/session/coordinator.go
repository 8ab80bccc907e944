package session

import (
	"context"
	"fmt"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

// Coordinator performs the session-mutating operations. After a successful
// login, and after every logout, it calls notify so the current identity is
// recomputed and published.
type Coordinator struct {
	client *client
	notify func(context.Context) identity.Snapshot
}

func newCoordinator(
	c *client,
	notify func(context.Context) identity.Snapshot,
) *Coordinator {
	return &Coordinator{client: c, notify: notify}
}

// Login asks the server to establish a cookie session for credentials. Any
// failure is reported with the single message MessageInvalidLogin; the
// server's own detail is not passed on.
func (c *Coordinator) Login(
	ctx context.Context,
	credentials identity.Credentials,
) identity.Result {
	if err := c.login(ctx, credentials); err != nil {
		c.client.log.InfoContext(ctx, "login failed", "error", err)
		c.client.metrics.operation(opLogin, outcomeFailed)
		return identity.Failure(MessageInvalidLogin)
	}

	c.client.metrics.operation(opLogin, outcomeSucceeded)
	c.notify(ctx)
	return identity.Success()
}

func (c *Coordinator) login(ctx context.Context, credentials identity.Credentials) error {
	res, err := c.client.postJSON(ctx, PathLogin, credentials)
	if err != nil {
		return err
	}
	defer closeBody(res)

	if !isSuccess(res.StatusCode) {
		return fmt.Errorf("%w: %d", ErrStatus, res.StatusCode)
	}
	return nil
}

// Register asks the server to create an account. It does not log the new
// account in. On failure the server's validation messages are returned in
// the order it emitted them, or MessageRegisterUnknown when there are none
// to report.
func (c *Coordinator) Register(
	ctx context.Context,
	email string,
	password string,
) identity.Result {
	messages, err := c.register(ctx, identity.Credentials{Email: email, Password: password})
	switch {
	case err != nil:
		c.client.log.WarnContext(ctx, "registration failed", "error", err)
		c.client.metrics.operation(opRegister, outcomeFailed)
		return identity.Failure(MessageRegisterUnknown)
	case len(messages) > 0:
		c.client.log.InfoContext(ctx, "registration rejected", "errors", len(messages))
		c.client.metrics.operation(opRegister, outcomeRejected)
		return identity.Failure(messages...)
	default:
		c.client.metrics.operation(opRegister, outcomeSucceeded)
		return identity.Success()
	}
}

// register returns the server's validation messages; none and a nil error
// means the account was created.
func (c *Coordinator) register(
	ctx context.Context,
	credentials identity.Credentials,
) (
	[]string,
	error,
) {
	res, err := c.client.postJSON(ctx, PathRegister, credentials)
	if err != nil {
		return nil, err
	}
	defer closeBody(res)

	if isSuccess(res.StatusCode) {
		return nil, nil
	}

	body, err := readBody(res)
	if err != nil {
		return nil, fmt.Errorf("read problem details: %w", err)
	}

	problem, err := identity.ParseProblemDetails(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %d: %v", ErrStatus, res.StatusCode, err)
	}

	messages := problem.Messages()
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: %d: %v", ErrStatus, res.StatusCode, identity.ErrNoValidationErrors)
	}
	return messages, nil
}

// Logout asks the server to end the session, then recomputes and publishes
// the current identity whatever the outcome of the request.
func (c *Coordinator) Logout(ctx context.Context) {
	if err := c.logout(ctx); err != nil {
		c.client.log.WarnContext(ctx, "logout request failed", "error", err)
		c.client.metrics.operation(opLogout, outcomeFailed)
	} else {
		c.client.metrics.operation(opLogout, outcomeSucceeded)
	}

	c.notify(ctx)
}

func (c *Coordinator) logout(ctx context.Context) error {
	res, err := c.client.postJSON(ctx, PathLogout, struct{}{})
	if err != nil {
		return err
	}
	defer closeBody(res)

	if !isSuccess(res.StatusCode) {
		return fmt.Errorf("%w: %d", ErrStatus, res.StatusCode)
	}
	return nil
}
