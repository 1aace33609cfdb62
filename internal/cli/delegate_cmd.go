package cli

import (
	"fmt"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/cli/formatter"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/spf13/cobra"
)

func newDelegateCmd(a *App) *cobra.Command {
	var apply, auto, yes bool

	cmd := &cobra.Command{
		Use:   "delegate <sequence> [task]...",
		Short: "Suggest who should take each open task",
		Long: `Suggest an assignee for the given tasks, or for every open unassigned
task of the sequence. --apply assigns the suggestions after confirmation;
--auto runs the sequence's automatic assignment (delegation strategy auto).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := loadSequence(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if auto {
				recs, err := a.Delegation.AutoAssign(cmd.Context(), view.Sequence.ID, a.userID())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.FormatRecommendations(recs))
				return nil
			}

			var tasks []*domain.Task
			if len(args) > 1 {
				if tasks, err = resolveTasks(view, args[1:]); err != nil {
					return err
				}
			} else {
				for _, tv := range view.Tasks {
					if !tv.Task.Completed && tv.Task.AssignedTo == "" {
						tasks = append(tasks, tv.Task)
					}
				}
			}
			if len(tasks) == 0 {
				fmt.Fprintln(out, formatter.Dim("No open unassigned tasks."))
				return nil
			}

			byTask, err := a.Delegation.Recommend(cmd.Context(), a.familyID(), taskIDs(tasks), nil)
			if err != nil {
				return err
			}
			recs := make([]app.Recommendation, 0, len(byTask))
			for _, t := range tasks {
				if r, ok := byTask[t.ID]; ok {
					recs = append(recs, r)
				}
			}
			fmt.Fprintln(out, formatter.FormatRecommendations(recs))

			if !apply || len(recs) == 0 {
				return nil
			}
			if !yes {
				if !a.IsInteractive {
					return fmt.Errorf("pass --yes to apply without a terminal")
				}
				ok, err := a.confirm(fmt.Sprintf("Assign %d tasks as suggested?", len(recs)))
				if err != nil || !ok {
					return err
				}
			}
			for _, r := range recs {
				if _, err := a.Delegation.Apply(cmd.Context(), r.TaskID, r.AssigneeID, a.userID()); err != nil {
					return fmt.Errorf("assigning %q: %w", r.TaskTitle, err)
				}
			}
			fmt.Fprintf(out, "Assigned %d tasks.\n", len(recs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Assign the suggested members")
	cmd.Flags().BoolVar(&auto, "auto", false, "Run automatic assignment for the sequence")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	cmd.MarkFlagsMutuallyExclusive("apply", "auto")
	return cmd
}
