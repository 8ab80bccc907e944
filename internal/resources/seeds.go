// Package resources loads seed users from a directory of JSON files and
// reloads them whenever the directory changes.
package resources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.sr.ht/~jakintosh/cookieauth/internal/service"
)

// SeedDirectory hands every user described by the *.json files in a
// directory to a loader, at startup and after each change. A file holds one
// user object or an array of them.
type SeedDirectory struct {
	dir     string
	loader  func([]service.User)
	log     *slog.Logger
	watcher *dirWatcher
}

func NewSeedDirectory(
	dir string,
	loader func([]service.User),
	logger *slog.Logger,
) (
	*SeedDirectory,
	error,
) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &SeedDirectory{
		dir:    dir,
		loader: loader,
		log:    logger,
	}

	if _, err := s.Load(); err != nil {
		return nil, err
	}

	watcher, err := watchDir(dir, func() {
		if _, err := s.Load(); err != nil {
			s.log.Warn("seeds: reload failed", "dir", dir, "error", err)
		}
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start seed watcher: %w", err)
	}
	s.watcher = watcher

	return s, nil
}

// Load reads the directory once and passes the users found to the loader.
// Files that fail to parse are skipped and logged.
func (s *SeedDirectory) Load() (int, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("seeds: failed to read seed dir: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		if !file.Type().IsRegular() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		names = append(names, file.Name())
	}
	sort.Strings(names)

	var users []service.User
	for _, name := range names {
		loaded, err := loadSeedFile(filepath.Join(s.dir, name))
		if err != nil {
			s.log.Warn("seeds: skipping file", "file", name, "error", err)
			continue
		}
		users = append(users, loaded...)
	}

	s.log.Info("loaded seed users", "dir", s.dir, "users", len(users))
	s.loader(users)
	return len(users), nil
}

func (s *SeedDirectory) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}

func loadSeedFile(path string) ([]service.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var users []service.User
		if err := json.Unmarshal(trimmed, &users); err != nil {
			return nil, fmt.Errorf("failed to parse json of '%s': %w", path, err)
		}
		return users, nil
	}

	var user service.User
	if err := json.Unmarshal(trimmed, &user); err != nil {
		return nil, fmt.Errorf("failed to parse json of '%s': %w", path, err)
	}
	return []service.User{user}, nil
}
