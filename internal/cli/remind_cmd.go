package cli

import (
	"fmt"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newRemindCmd(a *App) *cobra.Command {
	var ack bool

	cmd := &cobra.Command{
		Use:   "remind [sequence]",
		Short: "List reminders that are due now",
		Long: `List reminders that are due now for one sequence or the whole family.
With --ack the listed reminders are recorded as sent so they are not
repeated before their next interval.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()

			var (
				reminders []app.ReminderToSend
				err       error
			)
			if len(args) == 1 {
				id, rerr := resolveSequenceID(cmd.Context(), a, args[0])
				if rerr != nil {
					return rerr
				}
				reminders, err = a.Reminders.EvaluateReminders(cmd.Context(), id, now)
			} else {
				reminders, err = a.Reminders.EvaluateFamily(cmd.Context(), a.familyID(), now)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatReminders(reminders))

			if ack {
				for _, r := range reminders {
					if err := a.Reminders.Acknowledge(cmd.Context(), r.TaskID, now); err != nil {
						return fmt.Errorf("acknowledging %q: %w", r.TaskTitle, err)
					}
				}
				if len(reminders) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Marked %d reminders as sent.\n", len(reminders))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ack, "ack", false, "Record the listed reminders as sent")
	return cmd
}

func newSnoozeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "snooze <sequence> <task>",
		Short: "Postpone a task's reminders by one interval",
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
			if err := a.Reminders.Snooze(cmd.Context(), task.ID, a.now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snoozed reminders for %s\n", formatter.Bold(task.Title))
			return nil
		},
	}
}
