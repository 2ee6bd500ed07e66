package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hylla/tavla/internal/adapters/storage/sqlite"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// newVersionCmd prints the build version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tavla %s\n", version)
		},
	}
}

// newPathsCmd prints the resolved config and data locations.
func newPathsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := resolveRuntime(*flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", flags.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", flags.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", env.configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", env.paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", env.cfg.Storage.Path)
			return nil
		},
	}
}

// newExportCmd writes the effective arrangement as JSON. The export always
// succeeds: a missing or unreadable record exports the default layout, the
// same fallback the board itself applies.
func newExportCmd(flags *rootFlags) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the saved arrangement as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(*flags, func(store *sqlite.Store) error {
				engine := app.NewEngine(store, nil, nil, nil)
				engine.Load(cmd.Context())

				encoded, err := json.MarshalIndent(engine.CurrentLayout(), "", "  ")
				if err != nil {
					return fmt.Errorf("encode layout json: %w", err)
				}
				encoded = append(encoded, '\n')

				if outPath == "-" {
					_, err := cmd.OutOrStdout().Write(encoded)
					return err
				}
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return fmt.Errorf("create export output dir: %w", err)
				}
				if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

// newImportCmd validates a layout JSON file and saves it as the current
// arrangement. Unlike loading, import fails loudly on a bad payload.
func newImportCmd(flags *rootFlags) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an arrangement from a JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inPath == "" {
				return fmt.Errorf("--in is required")
			}
			content, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var layout domain.Layout
			if err := json.Unmarshal(content, &layout); err != nil {
				return fmt.Errorf("decode layout json: %w", err)
			}
			if layout.Version != domain.SchemaVersion {
				return fmt.Errorf("layout version %d does not match schema version %d: %w",
					layout.Version, domain.SchemaVersion, domain.ErrSchemaMismatch)
			}
			if err := layout.Validate(); err != nil {
				return fmt.Errorf("validate layout: %w", err)
			}
			return withStore(*flags, func(store *sqlite.Store) error {
				if err := store.SaveLayout(cmd.Context(), layout); err != nil {
					return fmt.Errorf("save imported layout: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input layout JSON file")
	return cmd
}

// newResetCmd deletes the saved arrangement so the next launch starts from
// the factory defaults.
func newResetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved arrangement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(*flags, func(store *sqlite.Store) error {
				if err := store.DeleteLayout(cmd.Context()); err != nil {
					return fmt.Errorf("delete saved layout: %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "saved arrangement deleted")
				return nil
			})
		},
	}
}

// withStore resolves the runtime, opens the sqlite store, and guarantees
// it is closed after fn runs.
func withStore(flags rootFlags, fn func(*sqlite.Store) error) error {
	env, err := resolveRuntime(flags)
	if err != nil {
		return err
	}
	store, err := sqlite.Open(env.cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}
