package cli

import (
	"github.com/alexanderramin/taskseq/internal/httpapi"
	"github.com/spf13/cobra"
)

func newServeCmd(a *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := httpapi.New(httpapi.Services{
				Sequences:  a.Sequences,
				Tasks:      a.Tasks,
				Next:       a.Next,
				Completion: a.Completion,
				Reminders:  a.Reminders,
				Delegation: a.Delegation,
				Members:    a.Members,
				Imports:    a.Imports,
			},
				httpapi.WithLogger(a.Logger),
				httpapi.WithDefaultUser(a.userID()),
			)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", a.Config.HTTP.Addr, "Listen address")
	return cmd
}
