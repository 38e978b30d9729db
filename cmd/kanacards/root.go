package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/kanacards/internal/config"
	"github.com/phrazzld/kanacards/internal/platform/logger"
	"github.com/spf13/cobra"
)

// cli carries the streams and global flags shared by every subcommand.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	dbDriver   string
	dbURL      string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "kanacards",
		Short: "Spaced-repetition scheduler for Japanese vocabulary",
		Long: `kanacards schedules Japanese vocabulary cards with the SM-2 algorithm.
Import card IDs from CSV, review the cards that are due, and export your
progress. The same operations are available over HTTP with "kanacards serve".`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default: ./config.yaml or $HOME/.kanacards/config.yaml)")
	flags.StringVar(&c.dbDriver, "db-driver", "", "database driver: sqlite3 or postgres")
	flags.StringVar(&c.dbURL, "db-url", "", "database URL, or file path for sqlite3")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		c.newImportCmd(),
		c.newExportCmd(),
		c.newDueCmd(),
		c.newShowCmd(),
		c.newReviewCmd(),
		c.newKanaCmd(),
		c.newPostponeCmd(),
		c.newMigrateCmd(),
		c.newServeCmd(),
	)

	return root
}

// setup loads configuration, applies flag overrides and configures logging.
// Logs go to stderr so command output on stdout stays clean.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	path := c.configPath
	if path == "" {
		path = os.Getenv(config.ConfigFileEnv)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db-driver") {
		cfg.Database.Driver = c.dbDriver
	}
	if flags.Changed("db-url") {
		cfg.Database.URL = c.dbURL
	}
	if flags.Changed("log-level") {
		cfg.Server.LogLevel = c.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log, err := logger.SetupWithWriter(cfg.Server, c.stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	c.cfg = cfg
	c.logger = log
	return nil
}

// withApp builds the application for one command invocation and tears it
// down afterwards.
func (c *cli) withApp(
	ctx context.Context,
	skipMigrations bool,
	fn func(context.Context, *application) error,
) error {
	app, err := newApplication(ctx, c.cfg, c.logger, skipMigrations)
	if err != nil {
		return err
	}
	defer app.cleanup()

	return fn(ctx, app)
}
