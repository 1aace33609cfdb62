package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/cli/formatter"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/importer"
	"github.com/spf13/cobra"
)

func newSequenceCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sequence",
		Aliases: []string{"seq"},
		Short:   "Manage task sequences",
	}

	cmd.AddCommand(
		newSequenceCreateCmd(a),
		newSequenceImportCmd(a),
		newSequenceListCmd(a),
		newSequenceShowCmd(a),
		newSequenceUpdateCmd(a),
		newSequenceArchiveCmd(a),
		newSequenceUnarchiveCmd(a),
		newSequenceDeleteCmd(a),
		newSequenceProgressCmd(a),
	)

	return cmd
}

func newSequenceCreateCmd(a *App) *cobra.Command {
	var (
		title, description, category, due string
		tags, tasks                       []string
		sequential, interactive           bool
	)
	priority, reminder, delegation := priorityFlag(), reminderFlag(), delegationFlag()

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sequence, optionally with its tasks",
		Long: `Create a sequence. Each --task adds a task in order; with --sequential
every task waits for the one before it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				if !a.IsInteractive {
					return fmt.Errorf("--interactive needs a terminal")
				}
				d := sequenceDraft{Title: title, Category: category, Priority: priority.String(), DueDate: due, Sequential: sequential}
				if err := runSequenceForm(&d); err != nil {
					return err
				}
				title, category, due, sequential = d.Title, d.Category, d.DueDate, d.Sequential
				if err := priority.Set(d.Priority); err != nil {
					return err
				}
				tasks = append(tasks, splitLines(d.Tasks)...)
			}

			req := app.CreateSequenceRequest{
				Title:              title,
				Description:        description,
				Category:           category,
				Priority:           domain.Priority(priority.String()),
				ReminderStrategy:   domain.ReminderStrategy(reminder.String()),
				DelegationStrategy: domain.DelegationStrategy(delegation.String()),
				Tags:               tags,
				Sequential:         sequential,
			}
			dueDate, err := parseOptionalDate(due)
			if err != nil {
				return err
			}
			req.DueDate = dueDate
			for _, t := range tasks {
				req.Tasks = append(req.Tasks, app.TaskSpec{Title: t})
			}

			id, err := a.Sequences.CreateSequence(cmd.Context(), a.familyID(), a.userID(), req)
			if err != nil {
				return err
			}
			view, err := a.Sequences.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created sequence %s (%d tasks) %s\n",
				formatter.Bold(view.Sequence.Title), len(view.Tasks), formatter.TruncID(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Sequence title")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&category, "category", "", "Category (default Uncategorized)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().Var(priority, "priority", "Priority")
	cmd.Flags().Var(reminder, "reminders", "Reminder strategy")
	cmd.Flags().Var(delegation, "delegation", "Delegation strategy")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringArrayVar(&tasks, "task", nil, "Task title (repeatable, in order)")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "Each task depends on the previous one")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in the sequence with a form")

	return cmd
}

func newSequenceImportCmd(a *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a sequence from a YAML or JSON definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				file, err := importer.LoadFile(args[0])
				if err != nil {
					return err
				}
				if errs := importer.ValidateSequenceFile(file); len(errs) > 0 {
					for _, e := range errs {
						fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleRed.Render("✖ ")+e.Error())
					}
					return fmt.Errorf("%s has %d problems", args[0], len(errs))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d tasks, %d dependencies\n",
					args[0], len(file.Tasks), importer.DependencyCount(file))
				return nil
			}

			res, err := a.Imports.ImportFile(cmd.Context(), args[0], a.familyID(), a.userID())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d tasks, %d dependencies %s\n",
				formatter.Bold(res.Title), res.TaskCount, res.DependencyCount, formatter.TruncID(res.SequenceID))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without creating anything")
	return cmd
}

func newSequenceListCmd(a *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the family's sequences",
		RunE: func(cmd *cobra.Command, args []string) error {
			overviews, err := a.Sequences.ListByFamily(cmd.Context(), a.familyID(), all)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSequenceList(overviews, a.now()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include archived sequences")
	return cmd
}

func newSequenceShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <sequence>",
		Short: "Show a sequence and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := loadSequence(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSequenceView(view, a.now()))
			return nil
		},
	}
}

func newSequenceUpdateCmd(a *App) *cobra.Command {
	var title, description, category, due string
	var tags []string
	priority, reminder, delegation := priorityFlag(), reminderFlag(), delegationFlag()

	cmd := &cobra.Command{
		Use:   "update <sequence>",
		Short: "Change a sequence's attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSequenceID(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}

			var u app.SequenceUpdate
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
			if flags.Changed("priority") {
				p := domain.Priority(priority.String())
				u.Priority = &p
			}
			if flags.Changed("reminders") {
				r := domain.ReminderStrategy(reminder.String())
				u.ReminderStrategy = &r
			}
			if flags.Changed("delegation") {
				d := domain.DelegationStrategy(delegation.String())
				u.DelegationStrategy = &d
			}
			if flags.Changed("tag") {
				u.Tags = &tags
			}
			if flags.Changed("due") {
				if u.DueDate, err = parseOptionalDate(due); err != nil {
					return err
				}
				u.ClearDueDate = u.DueDate == nil
			}

			seq, err := a.Sequences.Update(cmd.Context(), id, a.userID(), u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated sequence %s\n", formatter.Bold(seq.Title))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD, empty to clear)")
	cmd.Flags().Var(priority, "priority", "New priority")
	cmd.Flags().Var(reminder, "reminders", "New reminder strategy")
	cmd.Flags().Var(delegation, "delegation", "New delegation strategy")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace tags")
	return cmd
}

func newSequenceArchiveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <sequence>",
		Short: "Archive a sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSequenceID(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			if err := a.Sequences.Archive(cmd.Context(), id, a.userID()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sequence archived.")
			return nil
		},
	}
}

func newSequenceUnarchiveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive <sequence>",
		Short: "Restore an archived sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSequenceID(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			if err := a.Sequences.Unarchive(cmd.Context(), id, a.userID()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sequence restored.")
			return nil
		},
	}
}

func newSequenceDeleteCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <sequence>",
		Short: "Delete a sequence and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := loadSequence(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			if !yes {
				if !a.IsInteractive {
					return fmt.Errorf("refusing to delete %q without --yes", view.Sequence.Title)
				}
				ok, err := a.confirm(fmt.Sprintf("Delete %q and its %d tasks?", view.Sequence.Title, len(view.Tasks)))
				if err != nil || !ok {
					return err
				}
			}
			if err := a.Sequences.Delete(cmd.Context(), view.Sequence.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", view.Sequence.Title)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newSequenceProgressCmd(a *App) *cobra.Command {
	var recount bool

	cmd := &cobra.Command{
		Use:   "progress <sequence>",
		Short: "Show the completion history of a sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSequenceID(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			if recount {
				sum, err := a.Completion.RecomputeSequence(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSummary(sum))
			}
			samples, err := a.Completion.ProgressHistory(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProgressHistory(samples))
			return nil
		},
	}
	cmd.Flags().BoolVar(&recount, "recount", false, "Recount completed tasks before showing history")
	return cmd
}

func parseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := importer.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return &t, nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
