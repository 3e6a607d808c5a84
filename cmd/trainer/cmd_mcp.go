package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/trainer/internal/app"
	mcpserver "github.com/felixgeelhaar/trainer/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the trainer tools over MCP (stdio by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, app.Options{Queue: true})
			if err != nil {
				return err
			}
			defer a.Close()

			srv := mcpserver.NewServer(mcpserver.Config{
				ExerciseService: a.Exercises,
				SessionService:  a.Sessions,
				Defaults:        a.Config.Training,
				Version:         Version,
			})

			if addr != "" {
				return srv.ServeHTTP(ctx, addr)
			}
			return srv.ServeStdio(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "http", "", "serve over HTTP on this address instead of stdio")
	return cmd
}
