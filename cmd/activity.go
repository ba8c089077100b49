package main

import (
	"github.com/spf13/cobra"
)

var activityLimit int

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the agency activity feed, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := newService(st)
		scope, err := actorScope(ctx, svc)
		if err != nil {
			return err
		}
		feed, err := svc.ActivityFeed(ctx, scope, activityLimit)
		if err != nil {
			return err
		}
		for _, a := range feed {
			cmd.Printf("[%s] %-5s %s\n", a.Timestamp.Format("2006-01-02 15:04"), a.Type, a.Action)
		}
		return nil
	},
}

func init() {
	activityCmd.Flags().IntVar(&activityLimit, "limit", 50, "max entries to show")
	rootCmd.AddCommand(activityCmd)
}
