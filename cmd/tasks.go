package main

import (
	"github.com/spf13/cobra"

	"github.com/estatepulse/crm-cli/internal/model"
)

var (
	taskTitle    string
	taskDue      string
	taskPriority string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage agency tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks visible to the acting user",
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
		tasks, err := st.ListTasks(ctx, scope)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			mark := " "
			if t.Status == model.TaskDone {
				mark = "x"
			}
			due := t.DueDate
			if due == "" {
				due = "-"
			}
			cmd.Printf("[%s] %s  %-40s %-8s due %s\n", mark, t.ID, t.Title, t.Priority, due)
		}
		cmd.Printf("%d tasks\n", len(tasks))
		return nil
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a task",
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
		t, err := svc.CreateTask(ctx, scope, model.Task{
			Title:    taskTitle,
			DueDate:  taskDue,
			Priority: model.TaskPriority(taskPriority),
		})
		if err != nil {
			return err
		}
		cmd.Printf("created task %s (%s priority)\n", t.ID, t.Priority)
		return nil
	},
}

var tasksToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip a task between Pending and Done",
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
		t, err := svc.ToggleTask(ctx, scope, args[0])
		if err != nil {
			return err
		}
		cmd.Printf("%s is now %s\n", t.Title, t.Status)
		return nil
	},
}

func init() {
	tasksAddCmd.Flags().StringVar(&taskTitle, "title", "", "task title (required)")
	tasksAddCmd.Flags().StringVar(&taskDue, "due", "", "due date")
	tasksAddCmd.Flags().StringVar(&taskPriority, "priority", "", "Low, Medium, or High")
	_ = tasksAddCmd.MarkFlagRequired("title")

	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd, tasksToggleCmd)
	rootCmd.AddCommand(tasksCmd)
}
