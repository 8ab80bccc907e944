package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"git.sr.ht/~jakintosh/cookieauth/internal/api"
	"git.sr.ht/~jakintosh/cookieauth/internal/database"
	"git.sr.ht/~jakintosh/cookieauth/internal/logging"
	"git.sr.ht/~jakintosh/cookieauth/internal/resources"
	"git.sr.ht/~jakintosh/cookieauth/internal/service"
)

const (
	programName = "identity-testserver"
	version     = "dev"
)

// Config holds all command-line configuration
type Config struct {
	ListenAddr string
	Users      []UserCredentials
	DataDir    string
	SeedDir    string
	Keep       bool
	Quiet      bool
	LogFormat  string
}

// UserCredentials holds an email and password
type UserCredentials struct {
	Email    string
	Password string
}

// OutputContract is the JSON structure emitted on stdout
type OutputContract struct {
	BaseURL string       `json:"base_url"`
	Paths   OutputPaths  `json:"paths"`
	Users   []OutputUser `json:"users"`
}

type OutputPaths struct {
	DataDir string `json:"data_dir"`
	DBPath  string `json:"db_path"`
	SeedDir string `json:"seed_dir,omitempty"`
}

type OutputUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserFlag is a custom flag type for repeatable --user flags
type UserFlag []UserCredentials

func (u *UserFlag) String() string {
	return fmt.Sprintf("%v", *u)
}

func (u *UserFlag) Set(value string) error {
	email, password, ok := strings.Cut(value, ":")
	if !ok || email == "" {
		return fmt.Errorf("user must be in format 'email:password'")
	}
	*u = append(*u, UserCredentials{Email: email, Password: password})
	return nil
}

func main() {
	cfg := parseFlags()

	logger := logging.Discard()
	if !cfg.Quiet {
		l, err := logging.New(logging.Options{
			Program: programName,
			Version: version,
			Format:  cfg.LogFormat,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
			os.Exit(2)
		}
		logger = l
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	workspace, cleanup, err := createWorkspace(cfg)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	defer cleanup()

	db, err := database.NewSQLiteStore(workspace.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.New(
		db.IdentityStore(),
		service.DefaultPasswordPolicy(),
		service.PasswordModeProduction,
		logger,
	)

	if err := seedUsers(svc, cfg.Users, logger); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if workspace.SeedDir != "" {
		seeds, err := resources.NewSeedDirectory(
			workspace.SeedDir,
			seedLoader(svc, logger),
			logger,
		)
		if err != nil {
			return err
		}
		defer seeds.Close()
	}

	sessions := api.NewSessionManager(db.SessionStore())
	handler := api.New(svc, sessions, api.WithLogger(logger)).Router()

	// ephemeral port unless told otherwise
	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	defer listener.Close()

	addr := listener.Addr().(*net.TCPAddr)
	contract := OutputContract{
		BaseURL: fmt.Sprintf("http://%s/", net.JoinHostPort(addr.IP.String(), fmt.Sprint(addr.Port))),
		Paths: OutputPaths{
			DataDir: workspace.DataDir,
			DBPath:  workspace.DBPath,
			SeedDir: workspace.SeedDir,
		},
		Users: make([]OutputUser, len(cfg.Users)),
	}
	for i, user := range cfg.Users {
		contract.Users[i] = OutputUser{Email: user.Email, Password: user.Password}
	}

	if err := json.NewEncoder(os.Stdout).Encode(contract); err != nil {
		return fmt.Errorf("failed to encode JSON contract: %w", err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Serve(listener)
	}()
	logger.Info("listening", "base_url", contract.BaseURL)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func parseFlags() Config {
	var cfg Config
	var users UserFlag

	flag.StringVar(&cfg.ListenAddr, "listen", "127.0.0.1:0", "Listen address (default uses ephemeral port)")
	flag.Var(&users, "user", "User credentials in format 'email:password' (repeatable)")
	flag.StringVar(&cfg.DataDir, "data-dir", "", "Data directory (uses temp dir if not set)")
	flag.StringVar(&cfg.SeedDir, "seed-dir", "", "Directory of JSON seed users, reloaded on change")
	flag.BoolVar(&cfg.Keep, "keep", false, "Keep data directory on exit")
	flag.BoolVar(&cfg.Quiet, "quiet", false, "Suppress log output")
	flag.StringVar(&cfg.LogFormat, "log-format", logging.FormatText, "Log format: text or json")

	flag.Parse()

	if len(users) == 0 {
		cfg.Users = []UserCredentials{{Email: "test@example.com", Password: "test"}}
	} else {
		cfg.Users = users
	}

	return cfg
}

type Workspace struct {
	DataDir string
	DBPath  string
	SeedDir string
}

func createWorkspace(cfg Config) (*Workspace, func(), error) {
	var dataDir string
	var shouldCleanup bool

	if cfg.DataDir != "" {
		dataDir = cfg.DataDir
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, nil, err
		}
	} else {
		tempDir, err := os.MkdirTemp("", programName+"-*")
		if err != nil {
			return nil, nil, err
		}
		dataDir = tempDir
		shouldCleanup = !cfg.Keep
	}

	workspace := &Workspace{
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "db.sqlite"),
	}

	if cfg.SeedDir != "" {
		seedDir, err := filepath.Abs(cfg.SeedDir)
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(seedDir, 0755); err != nil {
			return nil, nil, err
		}
		workspace.SeedDir = seedDir
	}

	cleanup := func() {
		if shouldCleanup {
			os.RemoveAll(dataDir)
		}
	}

	return workspace, cleanup, nil
}

func seedUsers(
	svc *service.Service,
	users []UserCredentials,
	logger *slog.Logger,
) error {
	for _, user := range users {
		created, err := svc.Seed(service.User{
			Email:    user.Email,
			Password: user.Password,
		})
		if err != nil {
			return fmt.Errorf("seed %s: %w", user.Email, err)
		}
		if !created {
			logger.Warn("user already exists, keeping stored password", "email", user.Email)
		}
	}
	return nil
}

func seedLoader(
	svc *service.Service,
	logger *slog.Logger,
) func([]service.User) {
	return func(users []service.User) {
		for _, user := range users {
			created, err := svc.Seed(user)
			if err != nil {
				logger.Warn("failed to seed user", "email", user.Email, "error", err)
				continue
			}
			if created {
				logger.Info("seeded user", "email", user.Email)
			}
		}
	}
}
