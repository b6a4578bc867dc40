package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pulse/internal/auth"
	"github.com/desertthunder/pulse/internal/images"
	"github.com/desertthunder/pulse/internal/repositories"
	"github.com/desertthunder/pulse/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	db     *sql.DB
	store  images.Store
}

// RunnerOpts contains configuration options for creating a Runner.
//
// DB and Store are normally opened from the config; tests inject them.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	DB     *sql.DB
	Store  images.Store
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		db:     opts.DB,
		store:  opts.Store,
	}
}

// Before resolves the configuration once flags are parsed.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config != nil {
		return ctx, nil
	}

	config, err := shared.ResolveConfig(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if err := shared.SetLogLevel(r.logger, config.Server.LogLevel); err != nil {
		return ctx, err
	}

	r.config = config
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, imagesCommand, usersCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openDB returns the injected database or opens the configured one with migrations applied.
// The returned func releases what openDB opened.
func (r *Runner) openDB() (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, func() { db.Close() }, nil
}

// openStore returns the injected store or the configured uploads directory, initialized.
func (r *Runner) openStore(ctx context.Context) (images.Store, error) {
	store := r.store
	if store == nil {
		store = images.NewDirStore(r.config.Storage.UploadsPath())
	}

	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (r *Runner) accounts(db *sql.DB) *auth.Service {
	return auth.NewService(
		repositories.NewUserRepository(db),
		repositories.NewProfileRepository(db),
		shared.WithLogger(r.logger, "component", "accounts"),
	)
}

func (r *Runner) resolver(store images.Store) *images.Resolver {
	storage := r.config.Storage
	return images.NewResolver(store, images.ResolverOptions{
		BaseURL:               storage.UploadsURL(),
		Placeholder:           storage.PlaceholderURL(),
		DisableLatestFallback: !storage.LatestFallback,
		Logger:                shared.WithLogger(r.logger, "component", "resolver"),
	})
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
