package main

import (
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Resolve (or provision) the acting user",
	Long: `Looks up the --as email. Unknown emails are provisioned as agents in
the --agency tenant, mirroring how the product onboards new team members.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		scope, err := actorScope(ctx, newService(st))
		if err != nil {
			return err
		}
		cmd.Printf("logged in: %s (%s) in agency %s\n", flagAsUser, scope.Role, scope.AgencyID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
