package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/taskseq/internal/config"
	"github.com/alexanderramin/taskseq/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Sequences  service.SequenceService
	Tasks      service.TaskService
	Next       service.NextTaskService
	Completion service.CompletionService
	Reminders  service.ReminderService
	Delegation service.DelegationService
	Members    service.MemberService
	Imports    service.ImportService

	Config *config.Config
	Logger *slog.Logger

	// IsInteractive enables huh prompts. It is false when stdin is not a
	// terminal.
	IsInteractive bool
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
	// Confirm asks a yes/no question. Defaults to a huh confirmation.
	Confirm func(title string) (bool, error)
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

func (a *App) familyID() string { return a.Config.Identity.FamilyID }
func (a *App) userID() string   { return a.Config.Identity.UserID }

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	return confirmForm(title)
}

// NewRootCmd creates the top-level "taskseq" command and registers all
// subcommands against the provided App.
func NewRootCmd(a *App) *cobra.Command {
	if a.Config == nil {
		a.Config = config.Default()
	}

	root := &cobra.Command{
		Use:           "taskseq",
		Short:         "Family task sequences with dependencies, reminders and delegation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Read by main before the command tree is built; declared here so
	// cobra accepts it.
	root.PersistentFlags().String("config", "", "Config file (default ~/.taskseq/config.yaml)")
	root.PersistentFlags().StringVar(&a.Config.Identity.FamilyID, "family", a.Config.Identity.FamilyID, "Household to act on")
	root.PersistentFlags().StringVar(&a.Config.Identity.UserID, "user", a.Config.Identity.UserID, "Acting user id")

	root.AddCommand(
		newSequenceCmd(a),
		newTaskCmd(a),
		newNextCmd(a),
		newRemindCmd(a),
		newSnoozeCmd(a),
		newDelegateCmd(a),
		newMemberCmd(a),
		newServeCmd(a),
	)

	return root
}

// Execute runs the command tree and prints any error the way the rest of
// the CLI reports failures.
func Execute(ctx context.Context, app *App, args []string, stderr io.Writer) int {
	root := NewRootCmd(app)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
