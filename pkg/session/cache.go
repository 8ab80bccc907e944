package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

// StateCache answers "who is the current user" and tells subscribers when
// the answer changes. The cached value is the last computed snapshot; every
// query recomputes it from the identity server.
type StateCache struct {
	client  *client
	current atomic.Pointer[identity.Snapshot]

	mu          sync.Mutex
	nextID      uint64
	subscribers []subscriber
}

type subscriber struct {
	id uint64
	fn func(identity.Snapshot)
}

func newStateCache(c *client) *StateCache {
	cache := &StateCache{client: c}
	anon := identity.Anonymous()
	cache.current.Store(&anon)
	return cache
}

// CurrentIdentity queries the identity server and returns the resulting
// snapshot, which also becomes the cached value. It never fails: a transport
// error, a non-2xx status, or an undecodable body all yield Anonymous.
func (c *StateCache) CurrentIdentity(ctx context.Context) identity.Snapshot {
	snapshot := c.query(ctx)
	// whichever query completes last wins
	c.current.Store(&snapshot)
	return snapshot
}

// Current returns the last computed snapshot without contacting the server.
// Before the first query it is Anonymous.
func (c *StateCache) Current() identity.Snapshot {
	return *c.current.Load()
}

// Subscribe registers fn to receive every published snapshot, in the order
// subscriptions were made. The returned function removes the subscription.
func (c *StateCache) Subscribe(fn func(identity.Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { c.remove(id) })
	}
}

// Refresh recomputes the current identity and publishes it to subscribers.
func (c *StateCache) Refresh(ctx context.Context) identity.Snapshot {
	snapshot := c.CurrentIdentity(ctx)
	c.publish(snapshot)
	return snapshot
}

func (c *StateCache) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range c.subscribers {
		if s.id == id {
			c.subscribers = append(c.subscribers[:i:i], c.subscribers[i+1:]...)
			return
		}
	}
}

func (c *StateCache) publish(snapshot identity.Snapshot) {
	c.mu.Lock()
	subs := make([]subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	// fn runs unlocked and may unsubscribe
	for _, s := range subs {
		s.fn(snapshot)
	}
}

func (c *StateCache) query(ctx context.Context) identity.Snapshot {
	snapshot, err := c.fetch(ctx)
	if err != nil {
		c.client.log.DebugContext(ctx, "identity query failed, treating as anonymous", "error", err)
		c.client.metrics.identityQuery(false)
		return identity.Anonymous()
	}
	c.client.metrics.identityQuery(true)
	return snapshot
}

func (c *StateCache) fetch(ctx context.Context) (identity.Snapshot, error) {
	res, err := c.client.get(ctx, PathUserInfo)
	if err != nil {
		return identity.Snapshot{}, err
	}
	defer closeBody(res)

	if !isSuccess(res.StatusCode) {
		return identity.Snapshot{}, fmt.Errorf("%w: %d", ErrStatus, res.StatusCode)
	}

	body, err := readBody(res)
	if err != nil {
		return identity.Snapshot{}, fmt.Errorf("read user info: %w", err)
	}

	info, err := identity.DecodeUserInfo(body)
	if err != nil {
		return identity.Snapshot{}, fmt.Errorf("decode user info: %w", err)
	}

	return info.Snapshot(), nil
}
