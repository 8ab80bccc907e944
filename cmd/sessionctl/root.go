package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"git.sr.ht/~jakintosh/cookieauth/internal/logging"
	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
	"git.sr.ht/~jakintosh/cookieauth/pkg/session"
)

var ErrOperationFailed = errors.New("operation failed")

// rootOptions holds state shared by every subcommand of one root command.
type rootOptions struct {
	configFile string
}

// NewRootCmd creates the root command for the sessionctl CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sessionctl",
		Short: "Drive a cookie session against an identity server",
		Long: `sessionctl logs in, registers, and inspects the current identity on a
cookie-authenticated identity server. Each invocation holds its session
in memory only; use the shell subcommand to keep one across commands.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file path")
	flags.String("base-url", "", "identity server base address")
	flags.Duration("timeout", defaultTimeout, "per-request timeout")
	flags.String("log-format", logging.FormatText, "log format: text or json")
	flags.BoolP("verbose", "v", false, "log failures the session swallows")

	cmd.AddCommand(newWhoamiCmd(opts))
	cmd.AddCommand(newRegisterCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newShellCmd(opts))

	return cmd
}

// manager resolves configuration for cmd and builds a session manager.
func (o *rootOptions) manager(cmd *cobra.Command) (*session.Manager, error) {
	v, err := newViper(cmd.Flags(), o.configFile)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	return newManager(cfg, cmd.ErrOrStderr())
}

// credentialFlags registers the required --email and --password flags.
func credentialFlags(cmd *cobra.Command, creds *identity.Credentials) {
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

func printSnapshot(w io.Writer, s identity.Snapshot) {
	if !s.IsAuthenticated() {
		fmt.Fprintln(w, "anonymous")
		return
	}
	fmt.Fprintf(w, "authenticated as %s (email confirmed: %t)\n", s.Email(), s.EmailConfirmed())
	for _, c := range s.Claims() {
		fmt.Fprintf(w, "  %s: %s\n", c.Type, c.Value)
	}
}

// printResult reports r and returns ErrOperationFailed when it failed.
func printResult(w io.Writer, operation string, r identity.Result) error {
	if r.Succeeded {
		fmt.Fprintf(w, "%s succeeded\n", operation)
		return nil
	}
	fmt.Fprintf(w, "%s failed\n", operation)
	for _, msg := range r.Errors {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
	return fmt.Errorf("%w: %s", ErrOperationFailed, operation)
}
