package cli

import (
	"fmt"

	"github.com/alexanderramin/taskseq/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newNextCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "next [sequence]",
		Short: "What should I work on next?",
		Long: `Show the next actionable task of one sequence, or of every active
sequence in the family when none is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				id, err := resolveSequenceID(cmd.Context(), a, args[0])
				if err != nil {
					return err
				}
				next, err := a.Next.Resolve(cmd.Context(), id)
				if err != nil {
					return err
				}
				view, err := a.Sequences.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.FormatNext(view.Sequence.Title, next))
				return nil
			}

			overviews, err := a.Sequences.ListByFamily(cmd.Context(), a.familyID(), false)
			if err != nil {
				return err
			}
			shown := 0
			for _, o := range overviews {
				if !o.Sequence.IsActive() || o.Next == nil {
					continue
				}
				next, err := a.Next.Resolve(cmd.Context(), o.Sequence.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.FormatNext(o.Sequence.Title, next))
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, formatter.Dim("Nothing actionable. Enjoy the break."))
			}
			return nil
		},
	}
}
