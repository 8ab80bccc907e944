// Package testharness runs identity-testserver as a child process for
// out-of-process integration tests.
package testharness

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/cookieauth/pkg/session"
	"git.sr.ht/~jakintosh/cookieauth/pkg/transport"
)

const (
	binaryName = "identity-testserver"
	binaryEnv  = "IDENTITY_TESTSERVER_BIN"
)

// Config holds configuration for starting the test harness.
type Config struct {
	Users      []User
	ListenAddr string
	DataDir    string
	SeedDir    string
	Keep       bool
	BinaryPath string
	Quiet      bool
}

// User holds test user credentials.
type User struct {
	Email    string
	Password string
}

// Harness represents a running identity-testserver instance.
type Harness struct {
	BaseURL string
	DataDir string
	DBPath  string
	SeedDir string
	Users   []User

	// Internal state
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

// outputContract matches the JSON line printed by identity-testserver
type outputContract struct {
	BaseURL string       `json:"base_url"`
	Paths   outputPaths  `json:"paths"`
	Users   []outputUser `json:"users"`
}

type outputPaths struct {
	DataDir string `json:"data_dir"`
	DBPath  string `json:"db_path"`
	SeedDir string `json:"seed_dir"`
}

type outputUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Available reports whether the identity-testserver binary can be found.
func Available(cfg Config) bool {
	return findBinary(cfg.BinaryPath) != ""
}

// Start spawns an identity-testserver and returns a handle to it.
// It registers cleanup with t.Cleanup().
func Start(t *testing.T, cfg Config) *Harness {
	t.Helper()

	binaryPath := findBinary(cfg.BinaryPath)
	if binaryPath == "" {
		t.Fatalf("%s binary not found (check PATH or set Config.BinaryPath or %s)", binaryName, binaryEnv)
	}

	ctx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(ctx, binaryPath, buildArgs(cfg)...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = 5 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		t.Fatalf("failed to create stdout pipe: %v", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		t.Fatalf("failed to create stderr pipe: %v", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		t.Fatalf("failed to start %s: %v", binaryName, err)
	}

	// first stdout line is the contract
	scanner := bufio.NewScanner(stdout)
	if !scanner.Scan() {
		cancel()
		_ = cmd.Wait()
		t.Fatalf("failed to read JSON contract from %s", binaryName)
	}

	var contract outputContract
	if err := json.Unmarshal(scanner.Bytes(), &contract); err != nil {
		cancel()
		_ = cmd.Wait()
		t.Fatalf("failed to parse JSON contract: %v", err)
	}

	if !cfg.Quiet {
		go func() {
			for scanner.Scan() {
				t.Logf("[%s] %s", binaryName, scanner.Text())
			}
		}()

		go func() {
			stderrScanner := bufio.NewScanner(stderr)
			for stderrScanner.Scan() {
				t.Logf("[%s stderr] %s", binaryName, stderrScanner.Text())
			}
		}()
	}

	harness := &Harness{
		BaseURL: contract.BaseURL,
		DataDir: contract.Paths.DataDir,
		DBPath:  contract.Paths.DBPath,
		SeedDir: contract.Paths.SeedDir,
		Users:   make([]User, len(contract.Users)),
		cmd:     cmd,
		cancel:  cancel,
	}

	for i, user := range contract.Users {
		harness.Users[i] = User{Email: user.Email, Password: user.Password}
	}

	t.Cleanup(func() {
		if err := harness.Close(); err != nil {
			t.Logf("warning: harness cleanup failed: %v", err)
		}
	})

	return harness
}

// NewManager returns a session manager for the running server with its own
// cookie jar.
func (h *Harness) NewManager(opts ...session.Option) (*session.Manager, error) {
	client, err := transport.New(transport.Config{})
	if err != nil {
		return nil, err
	}
	return session.New(h.BaseURL, client, opts...)
}

// Close interrupts the server process and waits for it to exit.
func (h *Harness) Close() error {
	if h.cmd == nil || h.cmd.Process == nil {
		return nil
	}

	h.cancel()
	err := h.cmd.Wait()
	h.cmd = nil

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("wait for %s: %w", binaryName, err)
	}
	return nil
}

func findBinary(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	if envPath := os.Getenv(binaryEnv); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	if pathBinary, err := exec.LookPath(binaryName); err == nil {
		return pathBinary
	}

	return ""
}

func buildArgs(cfg Config) []string {
	var args []string

	if cfg.ListenAddr != "" {
		args = append(args, "--listen", cfg.ListenAddr)
	}

	if cfg.DataDir != "" {
		args = append(args, "--data-dir", cfg.DataDir)
	}

	if cfg.SeedDir != "" {
		args = append(args, "--seed-dir", cfg.SeedDir)
	}

	if cfg.Keep {
		args = append(args, "--keep")
	}

	if cfg.Quiet {
		args = append(args, "--quiet")
	}

	for _, user := range cfg.Users {
		args = append(args, "--user", fmt.Sprintf("%s:%s", user.Email, user.Password))
	}

	return args
}
