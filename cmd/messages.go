package main

import (
	"github.com/spf13/cobra"

	"github.com/estatepulse/crm-cli/internal/model"
)

var (
	threadTitle   string
	threadType    string
	threadRelated string
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Team messaging threads",
}

var threadsListCmd = &cobra.Command{
	Use:   "threads",
	Short: "List the agency's message threads",
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
		threads, err := st.ListThreads(ctx, scope.AgencyID)
		if err != nil {
			return err
		}
		for _, t := range threads {
			cmd.Printf("%s  %-30s %s\n", t.ID, t.Title, t.Type)
		}
		cmd.Printf("%d threads\n", len(threads))
		return nil
	},
}

var threadsOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a new thread",
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
		t, err := svc.OpenThread(ctx, scope, threadTitle, model.ThreadType(threadType), threadRelated)
		if err != nil {
			return err
		}
		cmd.Printf("opened thread %s (%s)\n", t.ID, t.Title)
		return nil
	},
}

var messagesShowCmd = &cobra.Command{
	Use:   "show <thread-id>",
	Short: "Print a thread's messages in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		names := map[string]string{}
		if users, err := st.ListUsers(ctx, scope.AgencyID); err == nil {
			for _, u := range users {
				names[u.ID] = u.Name
			}
		}
		msgs, err := st.ListMessages(ctx, args[0])
		if err != nil {
			return err
		}
		for _, m := range msgs {
			sender := names[m.SenderID]
			if sender == "" {
				sender = m.SenderID
			}
			cmd.Printf("[%s] %s: %s\n", m.Timestamp.Format("2006-01-02 15:04"), sender, m.Text)
		}
		return nil
	},
}

var messagesPostCmd = &cobra.Command{
	Use:   "post <thread-id> <text>",
	Short: "Post a message to a thread",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		m, err := svc.PostMessage(ctx, scope, args[0], args[1])
		if err != nil {
			return err
		}
		cmd.Printf("posted %s\n", m.ID)
		return nil
	},
}

var messagesDraftCmd = &cobra.Command{
	Use:   "draft <thread-id>",
	Short: "AI-drafted reply for a thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		reply, err := svc.DraftReply(ctx, scope, args[0])
		if err != nil {
			return err
		}
		if reply == "" {
			cmd.Println("draft unavailable (no AI key configured, or the model did not answer)")
			return nil
		}
		cmd.Println(reply)
		return nil
	},
}

func init() {
	threadsOpenCmd.Flags().StringVar(&threadTitle, "title", "", "thread title (required)")
	threadsOpenCmd.Flags().StringVar(&threadType, "type", "", "general, listing, or offer")
	threadsOpenCmd.Flags().StringVar(&threadRelated, "related", "", "related record id")
	_ = threadsOpenCmd.MarkFlagRequired("title")

	messagesCmd.AddCommand(threadsListCmd, threadsOpenCmd, messagesShowCmd, messagesPostCmd, messagesDraftCmd)
	rootCmd.AddCommand(messagesCmd)
}
