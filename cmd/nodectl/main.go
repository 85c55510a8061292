package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/nodestore/internal/cli"
	"github.com/alexanderramin/nodestore/internal/config"
	"github.com/alexanderramin/nodestore/internal/db"
	"github.com/alexanderramin/nodestore/internal/idgen"
	"github.com/alexanderramin/nodestore/internal/repository"
	"github.com/alexanderramin/nodestore/internal/service"
	"github.com/mattn/go-isatty"
)

// defaultPageSize is used by page and browse when --size is not given.
const defaultPageSize = 20

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(cli.ExitCode(err))
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.Logger(os.Stderr)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	ids, err := idgen.NewSnowflake(cfg.WorkerID)
	if err != nil {
		return fmt.Errorf("id generator: %w", err)
	}

	nodeRepo := repository.NewSQLiteNodeRepo(database,
		repository.WithIDGenerator(ids),
		repository.WithLogger(logger),
		repository.WithMaxPageSize(cfg.MaxPageSize),
	)

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.LogUseCases {
		observer = service.NewSlogUseCaseObserver(logger)
	}

	app := &cli.App{
		Nodes:           service.NewNodeService(nodeRepo, observer),
		Operator:        cfg.Operator,
		DefaultPageSize: min(defaultPageSize, cfg.MaxPageSize),
	}

	// Interactive commands (add -i, browse) need a real terminal on stdin.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
