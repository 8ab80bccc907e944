package sessiontest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
	"git.sr.ht/~jakintosh/cookieauth/pkg/session"
)

// User is an account known to a Stub or a Server.
type User struct {
	Email          string
	Password       string
	EmailConfirmed bool
	Claims         []identity.Claim
}

func (u User) snapshot() identity.Snapshot {
	info := identity.UserInfo{
		Email:            u.Email,
		IsEmailConfirmed: u.EmailConfirmed,
		Claims:           u.Claims,
	}
	return info.Snapshot()
}

// Stub is a session.Provider that keeps its accounts in memory. It follows
// the same notification rules as session.Manager: one published snapshot
// after each successful login and after each logout.
type Stub struct {
	mu            sync.Mutex
	users         map[string]User
	loggedIn      *User
	current       identity.Snapshot
	subscribers   map[int]func(identity.Snapshot)
	order         []int
	nextID        int
	notifications []identity.Snapshot
	registerErrs  []string
}

var _ session.Provider = (*Stub)(nil)

func NewStub(users ...User) *Stub {
	s := &Stub{
		users:       make(map[string]User),
		current:     identity.Anonymous(),
		subscribers: make(map[int]func(identity.Snapshot)),
	}
	for _, u := range users {
		s.users[strings.ToLower(u.Email)] = u
	}
	return s
}

func (s *Stub) CurrentIdentity(context.Context) identity.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.remoteLocked()
	return s.current
}

func (s *Stub) Current() identity.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Stub) Subscribe(fn func(identity.Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subscribers[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Stub) Login(
	_ context.Context,
	credentials identity.Credentials,
) identity.Result {
	s.mu.Lock()
	u, ok := s.users[strings.ToLower(credentials.Email)]
	if !ok || u.Password != credentials.Password {
		s.mu.Unlock()
		return identity.Failure(session.MessageInvalidLogin)
	}
	s.loggedIn = &u
	s.mu.Unlock()

	s.publish()
	return identity.Success()
}

func (s *Stub) Logout(context.Context) {
	s.mu.Lock()
	s.loggedIn = nil
	s.mu.Unlock()

	s.publish()
}

func (s *Stub) Register(
	_ context.Context,
	email string,
	password string,
) identity.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.registerErrs) > 0 {
		return identity.Failure(s.registerErrs...)
	}

	key := strings.ToLower(email)
	if _, exists := s.users[key]; exists {
		return identity.Failure(fmt.Sprintf("Username '%s' is already taken.", email))
	}
	s.users[key] = User{Email: email, Password: password}
	return identity.Success()
}

// FailRegister makes every later Register call fail with messages. With no
// messages registration behaves normally again.
func (s *Stub) FailRegister(messages ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerErrs = messages
}

// ExpireSession ends the logged-in session as a server would, without
// notifying anyone. The next CurrentIdentity reports anonymous.
func (s *Stub) ExpireSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = nil
}

// Notifications returns every snapshot published so far, oldest first.
func (s *Stub) Notifications() []identity.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]identity.Snapshot(nil), s.notifications...)
}

func (s *Stub) publish() {
	s.mu.Lock()
	s.current = s.remoteLocked()
	snapshot := s.current
	s.notifications = append(s.notifications, snapshot)

	var fns []func(identity.Snapshot)
	for _, id := range s.order {
		if fn, ok := s.subscribers[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// remoteLocked is what a server would report for the current session.
func (s *Stub) remoteLocked() identity.Snapshot {
	if s.loggedIn == nil {
		return identity.Anonymous()
	}
	return s.loggedIn.snapshot()
}
