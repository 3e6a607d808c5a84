package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/trainer/internal/app"
	"github.com/felixgeelhaar/trainer/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

const pidFile = "trainerd.pid"

var (
	// Flags
	debug   bool
	envFile string
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trainer",
		Short: "Fill-in-the-blank practice for Java exercises",
		Long: `trainer turns Java exercise solutions into fill-in-the-blank practice.
Keywords, types, literals and calls are replaced by underscores and the
learner types the missing tokens back in order.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "env file loaded before the environment")

	root.AddCommand(
		newInitCmd(),
		newDoctorCmd(),
		newConfigCmd(),
		newStartCmd(),
		newStopCmd(),
		newStatusCmd(),
		newLogsCmd(),
		newListCmd(),
		newGenerateCmd(),
		newEnqueueCmd(),
		newTrainCmd(),
		newMCPCmd(),
	)
	return root
}

// loadConfig reads ~/.trainer/config.yaml, env files and the environment
func loadConfig() (*config.Config, string, error) {
	dir, err := config.EnsureTrainerDir()
	if err != nil {
		return nil, "", fmt.Errorf("ensure trainer dir: %w", err)
	}

	local, err := config.LoadLocalConfig()
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}

	cfg, err := config.Load(local, envFile, filepath.Join(dir, ".env"))
	if err != nil {
		return nil, "", err
	}
	return cfg, dir, nil
}

// openApp wires the services in-process
func openApp(ctx context.Context, opts app.Options) (*app.App, error) {
	cfg, dir, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts.Dir = dir
	return app.New(ctx, cfg, opts)
}

// daemonAddr is the base URL of the local daemon
func daemonAddr(cfg *config.Config) string {
	return fmt.Sprintf("http://%s:%d", cfg.Bind, cfg.Port)
}
