package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"planboard/internal/model"
)

var (
	taskTitle       string
	taskDescription string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Work with the tasks of a board",
}

var tasksListCmd = &cobra.Command{
	Use:   "list <board-id>",
	Short: "List a board's tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient()
		if err != nil {
			return err
		}
		tasks, err := c.ListTasks(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		t := newTable("ID", "STATUS", "TITLE", "DESCRIPTION")
		for _, task := range tasks {
			t.Row(task.ID, task.Status.Label(), task.Title, task.Description)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <board-id>",
	Short: "Add a task to the To Do column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := apiClient()
		if err != nil {
			return err
		}
		task := model.NewTask(args[0], cfg.Username)
		if cmd.Flags().Changed("title") {
			task.Title = taskTitle
		}
		if cmd.Flags().Changed("description") {
			task.Description = taskDescription
		}
		if err := task.Validate(); err != nil {
			return err
		}
		created, err := c.CreateTask(cmd.Context(), task)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", created.ID)
		return nil
	},
}

var tasksMoveCmd = &cobra.Command{
	Use:   "move <task-id> <todo|in-progress|done>",
	Short: "Move a task to another column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := model.Status(args[1])
		if !status.Valid() {
			return fmt.Errorf("%w: %q", model.ErrInvalidStatus, args[1])
		}
		c, _, err := apiClient()
		if err != nil {
			return err
		}
		if err := c.UpdateTask(cmd.Context(), args[0], model.StatusPatch(status)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", args[0], status.Label())
		return nil
	},
}

var tasksEditCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Change a task's title or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch model.TaskPatch
		if cmd.Flags().Changed("title") {
			patch.Title = &taskTitle
		}
		if cmd.Flags().Changed("description") {
			patch.Description = &taskDescription
		}
		if err := patch.Validate(); err != nil {
			return err
		}
		c, _, err := apiClient()
		if err != nil {
			return err
		}
		if err := c.UpdateTask(cmd.Context(), args[0], patch); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
		return nil
	},
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient()
		if err != nil {
			return err
		}
		if err := c.DeleteTask(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{tasksAddCmd, tasksEditCmd} {
		c.Flags().StringVar(&taskTitle, "title", "", "Task title")
		c.Flags().StringVar(&taskDescription, "description", "", "Task description")
	}

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksMoveCmd)
	tasksCmd.AddCommand(tasksEditCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)
}
