package main

import (
	"github.com/spf13/cobra"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var creds identity.Credentials

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account on the server. Registration does not log in; the
server's validation messages are printed in the order it reported them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth, err := opts.manager(cmd)
			if err != nil {
				return err
			}
			result := auth.Register(cmd.Context(), creds.Email, creds.Password)
			return printResult(cmd.OutOrStdout(), "register", result)
		},
	}
	credentialFlags(cmd, &creds)

	return cmd
}
