package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
	"git.sr.ht/~jakintosh/cookieauth/pkg/session"
)

const shellHelp = `commands:
  login <email> <password>
  register <email> <password>
  logout
  whoami     ask the server
  current    last known identity, no request
  help
  quit`

func newShellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands against one in-memory session",
		Long: `Read commands from standard input, one per line, sharing a single
session and cookie jar until quit or end of input.

` + shellHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth, err := opts.manager(cmd)
			if err != nil {
				return err
			}
			return runShell(cmd.Context(), auth, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runShell(
	ctx context.Context,
	auth session.Provider,
	in io.Reader,
	out io.Writer,
) error {
	unsubscribe := auth.Subscribe(func(s identity.Snapshot) {
		fmt.Fprintf(out, "* identity changed: %s\n", s)
	})
	defer unsubscribe()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd, args := fields[0], fields[1:]; cmd {
		case "login", "register":
			if len(args) != 2 {
				fmt.Fprintf(out, "usage: %s <email> <password>\n", cmd)
				continue
			}
			var result identity.Result
			if cmd == "login" {
				result = auth.Login(ctx, identity.Credentials{Email: args[0], Password: args[1]})
			} else {
				result = auth.Register(ctx, args[0], args[1])
			}
			// failures are reported, the shell keeps going
			_ = printResult(out, cmd, result)
		case "logout":
			auth.Logout(ctx)
		case "whoami":
			printSnapshot(out, auth.CurrentIdentity(ctx))
		case "current":
			printSnapshot(out, auth.Current())
		case "help":
			fmt.Fprintln(out, shellHelp)
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q, try help\n", cmd)
		}
	}
}
