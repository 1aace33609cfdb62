package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/cli/formatter"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/spf13/cobra"
)

func newTaskCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the tasks of a sequence",
		Long: `Manage the tasks of a sequence. Tasks are named by position (1, 2, ...),
id, id prefix or title.`,
	}

	cmd.AddCommand(
		newTaskAddCmd(a),
		newTaskDoneCmd(a, true),
		newTaskDoneCmd(a, false),
		newTaskUpdateCmd(a),
		newTaskRemoveCmd(a),
		newTaskReorderCmd(a),
		newTaskSubtaskCmd(a),
	)

	return cmd
}

func newTaskAddCmd(a *App) *cobra.Command {
	var (
		title, description, category, due, assignee, notes string
		after, subtasks, tags                              []string
		minutes                                            int
	)
	priority, reminder := priorityFlag(), reminderFlag()

	cmd := &cobra.Command{
		Use:   "add <sequence>",
		Short: "Append a task to a sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := loadSequence(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			deps, err := resolveTasks(view, after)
			if err != nil {
				return err
			}
			dueDate, err := parseOptionalDate(due)
			if err != nil {
				return err
			}

			spec := app.TaskSpec{
				Title:            title,
				Description:      description,
				Category:         category,
				Priority:         domain.Priority(priority.String()),
				DueDate:          dueDate,
				AssignedTo:       assignee,
				SubTasks:         subtasks,
				DependsOn:        taskIDs(deps),
				ReminderStrategy: domain.ReminderStrategy(reminder.String()),
				Notes:            notes,
				Tags:             tags,
			}
			if cmd.Flags().Changed("minutes") {
				spec.EstimatedMin = &minutes
			}
			if assignee != "" {
				if spec.AssignedTo, err = resolveMemberID(cmd.Context(), a, assignee); err != nil {
					return err
				}
			}

			task, err := a.Tasks.AddTask(cmd.Context(), view.Sequence.ID, a.userID(), spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d. %s to %s\n",
				task.Position+1, formatter.Bold(task.Title), view.Sequence.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title (default Task N)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&category, "category", "", "Category (default: the sequence's)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&assignee, "assign", "", "Household member")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().IntVar(&minutes, "minutes", domain.DefaultEstimatedMin, "Estimated minutes")
	cmd.Flags().StringSliceVar(&after, "after", nil, "Tasks that must finish first")
	cmd.Flags().StringArrayVar(&subtasks, "subtask", nil, "Sub-task title (repeatable)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().Var(priority, "priority", "Priority (default: the sequence's)")
	cmd.Flags().Var(reminder, "reminders", "Reminder strategy (default: the sequence's)")
	return cmd
}

func newTaskDoneCmd(a *App, done bool) *cobra.Command {
	use, short := "done", "Mark a task completed"
	if !done {
		use, short = "undo", "Reopen a completed task"
	}

	return &cobra.Command{
		Use:   use + " <sequence> <task>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := loadSequence(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			task, err := resolveTask(view, args[1])
			if err != nil {
				return err
			}
			if _, err := a.Tasks.SetCompleted(cmd.Context(), task.ID, a.userID(), done); err != nil {
				return err
			}
			return printProgress(cmd, a, view.Sequence.ID, task.Title, done)
		},
	}
}

// printProgress reports the task change together with the sequence's new
// progress and next task.
func printProgress(cmd *cobra.Command, a *App, sequenceID, taskTitle string, done bool) error {
	view, err := a.Sequences.Get(cmd.Context(), sequenceID)
	if err != nil {
		return err
	}
	verb := "Completed"
	if !done {
		verb = "Reopened"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s  %s\n", verb, formatter.Bold(taskTitle), formatter.RenderProgress(view.Sequence.CompletionPct, 20))
	fmt.Fprintln(out, formatter.FormatNext(view.Sequence.Title, &app.NextTask{
		SequenceID: sequenceID, Task: view.Next, State: view.State,
	}))
	return nil
}

func newTaskUpdateCmd(a *App) *cobra.Command {
	var (
		title, description, category, due, assignee, notes string
		after, tags                                        []string
		minutes                                            int
	)
	priority, reminder := priorityFlag(), reminderFlag()

	cmd := &cobra.Command{
		Use:   "update <sequence> <task>",
		Short: "Change a task's attributes or dependencies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := loadSequence(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			task, err := resolveTask(view, args[1])
			if err != nil {
				return err
			}

			var u app.TaskUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				u.Title = &title
			}
			if flags.Changed("description") {
				u.Description = &description
			}
			if flags.Changed("category") {
				u.Category = &category
			}
			if flags.Changed("notes") {
				u.Notes = &notes
			}
			if flags.Changed("minutes") {
				u.EstimatedMin = &minutes
			}
			if flags.Changed("tag") {
				u.Tags = &tags
			}
			if flags.Changed("priority") {
				p := domain.Priority(priority.String())
				u.Priority = &p
			}
			if flags.Changed("reminders") {
				r := domain.ReminderStrategy(reminder.String())
				u.ReminderStrategy = &r
			}
			if flags.Changed("assign") {
				id := ""
				if assignee != "" {
					if id, err = resolveMemberID(cmd.Context(), a, assignee); err != nil {
						return err
					}
				}
				u.AssignedTo = &id
			}
			if flags.Changed("after") {
				deps, err := resolveTasks(view, after)
				if err != nil {
					return err
				}
				ids := taskIDs(deps)
				u.Dependencies = &ids
			}
			if flags.Changed("due") {
				if u.DueDate, err = parseOptionalDate(due); err != nil {
					return err
				}
				u.ClearDueDate = u.DueDate == nil
			}
			if u.IsEmpty() {
				return fmt.Errorf("nothing to update: pass at least one flag")
			}

			updated, err := a.Tasks.UpdateTask(cmd.Context(), task.ID, a.userID(), u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", formatter.Bold(updated.Title))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD, empty to clear)")
	cmd.Flags().StringVar(&assignee, "assign", "", "Household member (empty to unassign)")
	cmd.Flags().StringVar(&notes, "notes", "", "New notes")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "New estimated minutes")
	cmd.Flags().StringSliceVar(&after, "after", nil, "Replace dependencies (empty to clear)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace tags")
	cmd.Flags().Var(priority, "priority", "New priority")
	cmd.Flags().Var(reminder, "reminders", "New reminder strategy")
	return cmd
}

func newTaskRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <sequence> <task>",
		Short: "Remove a task; tasks that waited on it no longer do",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := loadSequence(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			task, err := resolveTask(view, args[1])
			if err != nil {
				return err
			}
			if err := a.Tasks.RemoveTask(cmd.Context(), view.Sequence.ID, task.ID, a.userID()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", task.Title)
			return nil
		},
	}
}

func newTaskReorderCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <sequence> <task>...",
		Short: "Set the display order of every task in a sequence",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := loadSequence(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			tasks, err := resolveTasks(view, args[1:])
			if err != nil {
				return err
			}
			if err := a.Tasks.ReorderTasks(cmd.Context(), view.Sequence.ID, a.userID(), taskIDs(tasks)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tasks reordered.")
			return nil
		},
	}
}

func newTaskSubtaskCmd(a *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "subtask <sequence> <task> <n>",
		Short: "Tick off the n-th sub-task of a task",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("sub-task number must be an integer: %q", args[2])
			}
			view, err := loadSequence(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			task, err := resolveTask(view, args[1])
			if err != nil {
				return err
			}
			wasDone := task.Completed
			updated, err := a.Tasks.SetSubTaskCompleted(cmd.Context(), task.ID, n-1, !undo, a.userID())
			if err != nil {
				return err
			}
			if updated.Completed != wasDone {
				return printProgress(cmd, a, view.Sequence.ID, updated.Title, updated.Completed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", updated.Title, updated.SubTasks[n-1].Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "Untick instead")
	return cmd
}
