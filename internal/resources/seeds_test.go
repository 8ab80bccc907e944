package resources_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"git.sr.ht/~jakintosh/cookieauth/internal/resources"
	"git.sr.ht/~jakintosh/cookieauth/internal/service"
)

// collector records every batch handed to the loader.
type collector struct {
	mu      sync.Mutex
	batches [][]service.User
}

func (c *collector) load(users []service.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, users)
}

func (c *collector) last() []service.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.batches) == 0 {
		return nil
	}
	return c.batches[len(c.batches)-1]
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func emails(users []service.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Email
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestNewSeedDirectory_LoadsAtStartup(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `[{"email":"b1@example.com","password":"x"},{"email":"b2@example.com","password":"y"}]`)
	writeFile(t, dir, "a.json", `{"email":"a@example.com","password":"z","emailConfirmed":true,"claims":{"role":"admin"}}`)
	writeFile(t, dir, "notes.txt", `not a seed`)

	c := &collector{}
	seeds, err := resources.NewSeedDirectory(dir, c.load, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = seeds.Close() })

	// files are read in name order; non-json files are ignored
	require.Equal(t, 1, c.count())
	users := c.last()
	assert.Equal(t, []string{"a@example.com", "b1@example.com", "b2@example.com"}, emails(users))

	// fields and claims are decoded
	assert.True(t, users[0].EmailConfirmed)
	require.Len(t, users[0].Claims, 1)
	assert.Equal(t, "role", users[0].Claims[0].Type)
}

func TestNewSeedDirectory_SkipsBrokenFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `{"email":`)
	writeFile(t, dir, "good.json", `{"email":"good@example.com","password":"x"}`)

	c := &collector{}
	seeds, err := resources.NewSeedDirectory(dir, c.load, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = seeds.Close() })

	// a file that fails to parse does not block the others
	assert.Equal(t, []string{"good@example.com"}, emails(c.last()))
}

func TestNewSeedDirectory_MissingDir(t *testing.T) {
	t.Parallel()

	// a directory that does not exist is an error
	_, err := resources.NewSeedDirectory(filepath.Join(t.TempDir(), "missing"), func([]service.User) {}, nil)
	assert.Error(t, err)
}

func TestSeedDirectory_ReloadsOnChange(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	c := &collector{}
	seeds, err := resources.NewSeedDirectory(dir, c.load, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = seeds.Close() })

	// empty directory loads nothing
	require.Equal(t, 1, c.count())
	assert.Empty(t, c.last())

	// a new file triggers a debounced reload
	writeFile(t, dir, "new.json", `{"email":"new@example.com","password":"x"}`)
	require.Eventually(t, func() bool {
		return len(c.last()) == 1
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, []string{"new@example.com"}, emails(c.last()))
}

func TestSeedDirectory_CloseStopsWatching(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()

	c := &collector{}
	seeds, err := resources.NewSeedDirectory(dir, c.load, nil)
	require.NoError(t, err)

	// close returns after the watcher goroutines exit
	require.NoError(t, seeds.Close())

	// later changes are not loaded
	writeFile(t, dir, "late.json", `{"email":"late@example.com","password":"x"}`)
	time.Sleep(700 * time.Millisecond)
	assert.Equal(t, 1, c.count())
}
