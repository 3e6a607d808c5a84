package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/trainer/internal/app"
	"github.com/felixgeelhaar/trainer/internal/config"
	"github.com/felixgeelhaar/trainer/internal/source"
)

func newInitCmd() *cobra.Command {
	var (
		exercises string
		include   []string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create ~/.trainer with a default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ok := color.GreenString("✓")

			fmt.Fprint(out, "Creating ~/.trainer directory structure... ")
			dir, err := config.EnsureTrainerDir()
			if err != nil {
				return fmt.Errorf("create directories: %w", err)
			}
			fmt.Fprintln(out, ok)

			local, err := config.LoadLocalConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if exercises != "" {
				fmt.Fprintf(out, "Copying exercises from %s... ", exercises)
				dst := filepath.Join(dir, "exercises")
				if err := copyDir(exercises, dst, include...); err != nil {
					return fmt.Errorf("copy exercises: %w", err)
				}
				local.Source.Path = dst
				fmt.Fprintln(out, ok)
			}

			configPath := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) || exercises != "" {
				fmt.Fprint(out, "Writing configuration... ")
				if err := config.SaveLocalConfig(local); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
				fmt.Fprintln(out, ok)
			} else {
				fmt.Fprintln(out, "Configuration already exists", ok)
			}

			fmt.Fprintf(out, "\nConfig path: %s\nRun 'trainer doctor' to check the exercise files.\n", configPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&exercises, "exercises", "", "copy this exercise tree (<level>/<folder>/...) into ~/.trainer")
	cmd.Flags().StringSliceVar(&include, "include", []string{"**/*.java", "**/README.md"}, "glob patterns of files to copy")
	return cmd
}

// copyDir copies the regular files under src whose slash-separated
// relative path matches one of patterns into dst
func copyDir(src, dst string, patterns ...string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		ok, err := matchAny(patterns, filepath.ToSlash(rel))
		if err != nil || !ok {
			return err
		}

		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		return copyFile(p, target)
	})
}

func matchAny(patterns []string, name string) (bool, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return false, fmt.Errorf("invalid pattern %q", pattern)
		}
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("match %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dir, err := loadConfig()
			if err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg, dir)
			return nil
		},
	}
}

func printConfig(w io.Writer, cfg *config.Config, dir string) {
	bold := color.New(color.Bold)

	bold.Fprintln(w, "Daemon:")
	fmt.Fprintf(w, "  bind: %s:%d\n", cfg.Bind, cfg.Port)
	fmt.Fprintf(w, "  log_level: %s\n", cfg.LogLevel)

	bold.Fprintln(w, "\nTraining:")
	fmt.Fprintf(w, "  tasks: %d\n", cfg.Training.Tasks)
	fmt.Fprintf(w, "  levels: %v\n", cfg.Training.Levels)
	fmt.Fprintf(w, "  difficulty: %.2f\n", cfg.Training.Difficulty)

	bold.Fprintln(w, "\nSource:")
	if cfg.ExercisesURL != "" {
		fmt.Fprintf(w, "  url: %s\n", cfg.ExercisesURL)
		fmt.Fprintf(w, "  max_concurrent: %d\n", cfg.MaxConcurrent)
		fmt.Fprintf(w, "  rate_per_second: %g\n", cfg.RatePerSecond)
	} else {
		fmt.Fprintf(w, "  path: %s\n", cfg.ExercisesPath)
	}
	if cfg.CatalogFile != "" {
		fmt.Fprintf(w, "  catalog_file: %s\n", cfg.CatalogFile)
	}

	bold.Fprintln(w, "\nStorage:")
	fmt.Fprintf(w, "  driver: %s\n", cfg.StorageDriver)
	switch cfg.StorageDriver {
	case app.DriverSQLite:
		fmt.Fprintf(w, "  path: %s\n", cfg.ResolveSQLitePath(dir))
	case app.DriverPostgres:
		fmt.Fprintf(w, "  database_url: %s\n", redact(cfg.DatabaseURL))
	}

	bold.Fprintln(w, "\nQueue:")
	if cfg.RabbitMQURL == "" {
		fmt.Fprintln(w, "  disabled")
	} else {
		fmt.Fprintf(w, "  url: %s\n", redact(cfg.RabbitMQURL))
		fmt.Fprintf(w, "  workers: %d\n", cfg.QueueWorkers)
	}

	fmt.Fprintf(w, "\nConfig path: %s\n", filepath.Join(dir, "config.yaml"))
}

// redact hides everything between the scheme and the host
func redact(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return "***"
	}
	if _, host, ok := strings.Cut(rest, "@"); ok {
		return scheme + "://***@" + host
	}
	return raw
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that every catalog exercise has a source file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if a.Config.ExercisesURL != "" {
				fmt.Fprintf(out, "Exercises are served from %s; nothing to check locally.\n", a.Config.ExercisesURL)
				return nil
			}

			fetcher := source.NewDirFetcher(a.Config.ExercisesPath)
			loader := source.NewLoader(fetcher, a.Catalog, nil)

			missing := 0
			for _, entry := range a.Catalog.List() {
				sourcePath, _ := loader.Paths(entry)
				if _, err := fetcher.Fetch(cmd.Context(), sourcePath); err != nil {
					missing++
					fmt.Fprintf(out, "  %s %3d %s\n", color.RedString("✗"), entry.ID, sourcePath)
					continue
				}
				if debug {
					fmt.Fprintf(out, "  %s %3d %s\n", color.GreenString("✓"), entry.ID, sourcePath)
				}
			}

			if missing > 0 {
				return fmt.Errorf("%d of %d exercises have no source under %s", missing, a.Catalog.Len(), fetcher.Root())
			}
			fmt.Fprintf(out, "%s all %d exercises found under %s\n", color.GreenString("✓"), a.Catalog.Len(), fetcher.Root())
			return nil
		},
	}
}
