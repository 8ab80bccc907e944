package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var creds identity.Credentials

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Log in, ask who is logged in, then log out",
		Long: `Run a full session round trip in one process: log in with the given
credentials, confirm the server reports that account, log out, and confirm
the session is gone. Every identity change notification is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth, err := opts.manager(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			unsubscribe := auth.Subscribe(func(s identity.Snapshot) {
				fmt.Fprintf(out, "identity changed: %s\n", s)
			})
			defer unsubscribe()

			if err := printResult(out, "login", auth.Login(ctx, creds)); err != nil {
				return err
			}

			me := auth.CurrentIdentity(ctx)
			printSnapshot(out, me)
			if !me.IsAuthenticated() {
				return fmt.Errorf("%w: session not established after login", ErrOperationFailed)
			}

			auth.Logout(ctx)
			fmt.Fprintln(out, "logged out")

			if auth.CurrentIdentity(ctx).IsAuthenticated() {
				return fmt.Errorf("%w: session still active after logout", ErrOperationFailed)
			}
			return nil
		},
	}
	credentialFlags(cmd, &creds)

	return cmd
}
