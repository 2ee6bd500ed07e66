package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hylla/tavla/internal/adapters/storage/sqlite"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/platform"
	"github.com/hylla/tavla/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// rootFlags holds persistent flag values shared by every subcommand.
type rootFlags struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// runtimeEnv is the resolved environment a command runs in.
type runtimeEnv struct {
	flags      rootFlags
	paths      platform.Paths
	configPath string
	cfg        config.Config
}

// main handles main.
func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the CLI. The bare invocation runs the dashboard board.
func newRootCmd() *cobra.Command {
	flags := rootFlags{appName: "tavla", devMode: defaultDevMode()}
	if envApp := strings.TrimSpace(os.Getenv("TAVLA_APP_NAME")); envApp != "" {
		flags.appName = envApp
	}

	cmd := &cobra.Command{
		Use:           "tavla",
		Short:         "tavla arranges a three-column trading dashboard in the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd.Context(), flags)
		},
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config TOML")
	cmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "path to sqlite database")
	cmd.PersistentFlags().StringVar(&flags.appName, "app", flags.appName, "application name for config/data path resolution")
	cmd.PersistentFlags().BoolVar(&flags.devMode, "dev", flags.devMode, "use dev mode paths (<app>-dev)")

	cmd.AddCommand(newPathsCmd(&flags))
	cmd.AddCommand(newExportCmd(&flags))
	cmd.AddCommand(newImportCmd(&flags))
	cmd.AddCommand(newResetCmd(&flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// defaultDevMode handles default dev mode.
func defaultDevMode() bool {
	if raw := strings.TrimSpace(os.Getenv("TAVLA_DEV_MODE")); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return version == "dev"
}

// resolveRuntime resolves paths and configuration from flags, env, and the
// TOML config file.
func resolveRuntime(flags rootFlags) (runtimeEnv, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: flags.appName,
		DevMode: flags.devMode,
	})
	if err != nil {
		return runtimeEnv{}, err
	}

	configPath := flags.configPath
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TAVLA_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}

	dbPath := strings.TrimSpace(flags.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("TAVLA_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return runtimeEnv{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Storage.Path = dbPath
	}

	return runtimeEnv{
		flags:      flags,
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
	}, nil
}

// runBoard resolves the runtime, opens storage, loads the arrangement, and
// runs the TUI program loop.
func runBoard(ctx context.Context, flags rootFlags) error {
	env, err := resolveRuntime(flags)
	if err != nil {
		return err
	}

	logger, err := newRuntimeLogger(os.Stderr, flags.appName, flags.devMode, env.cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while
	// the board is active.
	logger.SetConsoleEnabled(false)
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.shouldLogToSink(logger.consoleSink) {
			_, _ = fmt.Fprintf(os.Stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", flags.appName, "dev_mode", flags.devMode)
	logger.Debug("runtime paths resolved", "config_path", env.configPath, "data_dir", env.paths.DataDir, "db_path", env.cfg.Storage.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	store, err := sqlite.Open(env.cfg.Storage.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", env.cfg.Storage.Path, "err", err)
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", env.cfg.Storage.Path, "err", closeErr)
		}
	}()
	logger.Info("sqlite store ready", "db_path", env.cfg.Storage.Path)

	engine := app.NewEngine(store, uuid.NewString, time.Now, logger)
	engine.Load(ctx)
	logger.Debug("layout engine initialized", "cards", len(engine.CurrentLayout().Cards))

	m := tui.NewModel(
		engine,
		tui.WithBoardConfig(tui.BoardConfig{
			ShowHidden:     env.cfg.Board.ShowHidden,
			ActivityWindow: env.cfg.Board.ActivityWindow,
		}),
		tui.WithKeyOverrides(tui.KeyOverrides{
			EditMode: env.cfg.Keys.EditMode,
			Save:     env.cfg.Keys.Save,
			Reset:    env.cfg.Keys.Reset,
			Undo:     env.cfg.Keys.Undo,
			Redo:     env.cfg.Keys.Redo,
		}),
	)

	logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("tui program loop complete")
	return nil
}
