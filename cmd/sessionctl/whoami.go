package main

import (
	"github.com/spf13/cobra"
)

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Ask the server who the current session belongs to",
		Long: `Query the server's user info endpoint and print the resulting identity.
A fresh invocation has no session cookie, so this reports anonymous unless
the server is unreachable or misbehaving, which also reports anonymous.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth, err := opts.manager(cmd)
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), auth.CurrentIdentity(cmd.Context()))
			return nil
		},
	}
}
