package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/taskseq/internal/cli"
	"github.com/alexanderramin/taskseq/internal/config"
	"github.com/alexanderramin/taskseq/internal/db"
	"github.com/alexanderramin/taskseq/internal/delegation"
	"github.com/alexanderramin/taskseq/internal/logging"
	"github.com/alexanderramin/taskseq/internal/repository"
	"github.com/alexanderramin/taskseq/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := wire(configPath(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	return cli.Execute(ctx, app, os.Args[1:], os.Stderr)
}

// configPath pulls --config out of args ahead of cobra, which needs the
// loaded configuration to build its command tree.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("taskseq", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}

func wire(configFile string) (*cli.App, func(), error) {
	v, err := config.New(configFile)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}

	scope, err := service.ParseReminderScope(cfg.Reminders.Scope)
	if err != nil {
		return nil, nil, err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	sequenceRepo := repository.NewSQLiteSequenceRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	memberRepo := repository.NewSQLiteMemberRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.Log.UseCases {
		observer = service.NewLogUseCaseObserver(logger)
	}

	recommender := delegation.New(
		delegation.WithEligibleRoles(cfg.Delegation.Roles()...),
		delegation.WithParallel(cfg.Delegation.Parallel),
	)

	completionSvc := service.NewCompletionService(sequenceRepo, uow, observer)
	sequenceSvc := service.NewSequenceService(sequenceRepo, taskRepo, uow, completionSvc, observer)

	app := &cli.App{
		Sequences:  sequenceSvc,
		Tasks:      service.NewTaskService(sequenceRepo, taskRepo, uow, completionSvc, observer),
		Next:       service.NewNextTaskService(sequenceRepo, taskRepo),
		Completion: completionSvc,
		Reminders:  service.NewReminderService(sequenceRepo, taskRepo, uow, scope, observer),
		Delegation: service.NewDelegationService(sequenceRepo, taskRepo, memberRepo, uow, recommender, observer),
		Members:    service.NewMemberService(memberRepo, uow),
		Imports:    service.NewImportService(sequenceSvc, observer),
		Config:     cfg,
		Logger:     logger,

		IsInteractive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}

	cleanup := func() {
		if err := database.Close(); err != nil {
			logger.Warn("closing database", "error", err)
		}
	}
	return app, cleanup, nil
}
