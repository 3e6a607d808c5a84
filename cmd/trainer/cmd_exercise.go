package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/trainer/internal/app"
	"github.com/felixgeelhaar/trainer/internal/domain"
	"github.com/felixgeelhaar/trainer/internal/queue"
)

func newListCmd() *cobra.Command {
	var level string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog exercises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			entries := a.Catalog.List()
			if level != "" {
				l, err := domain.ParseLevel(level)
				if err != nil {
					return err
				}
				entries = a.Catalog.ByLevel(l)
			}

			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "", "only list exercises of this level (g1..g4)")
	return cmd
}

func printEntries(w io.Writer, entries []domain.CatalogEntry) {
	var current domain.Level
	for _, e := range entries {
		if e.Level != current {
			current = e.Level
			fmt.Fprintf(w, "\n%s\n", color.New(color.Bold).Sprint(strings.ToUpper(string(current))))
		}
		fmt.Fprintf(w, "  %3d  %-28s %s\n", e.ID, e.Title, color.HiBlackString(e.Description))
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		difficulty float64
		seed       uint64
		answers    bool
		asJSON     bool
		spec       bool
	)

	cmd := &cobra.Command{
		Use:   "generate <id>",
		Short: "Generate a fill-in-the-blank exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid exercise id %q", args[0])
			}

			a, err := openApp(cmd.Context(), app.Options{Seed: seed})
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("difficulty") {
				difficulty = a.Config.Training.Difficulty
			}

			ex, err := a.Exercises.Generate(cmd.Context(), id, difficulty)
			if err != nil {
				return err
			}
			if spec && !asJSON {
				if err := printSpec(cmd.OutOrStdout(), ex.SpecText); err != nil {
					return err
				}
			}
			return printExercise(cmd.OutOrStdout(), ex, difficulty, answers, asJSON)
		},
	}

	cmd.Flags().Float64Var(&difficulty, "difficulty", 0.5, "fraction of candidates to blank (0.25 easy, 0.5 medium, 0.75 hard)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "fix blank selection (0 picks a random seed)")
	cmd.Flags().BoolVar(&answers, "answers", false, "print the answer key")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the exercise as JSON")
	cmd.Flags().BoolVar(&spec, "spec", false, "render the exercise README before the code")
	return cmd
}

func newEnqueueCmd() *cobra.Command {
	var (
		difficulty float64
		timeout    time.Duration
		answers    bool
	)

	cmd := &cobra.Command{
		Use:   "enqueue <id>",
		Short: "Generate an exercise through the RabbitMQ worker pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid exercise id %q", args[0])
			}

			a, err := openApp(cmd.Context(), app.Options{Queue: true})
			if err != nil {
				return err
			}
			defer a.Close()

			conn := a.Queue()
			if conn == nil {
				return errors.New("no queue configured (set RABBITMQ_URL)")
			}
			if !cmd.Flags().Changed("difficulty") {
				difficulty = a.Config.Training.Difficulty
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := requestExercise(ctx, conn, queue.NewGenerateJob(id, difficulty))
			if err != nil {
				return err
			}
			if result.Status != queue.StatusCompleted {
				return fmt.Errorf("job %s %s: %s", result.JobID, result.Status, result.Error)
			}

			fmt.Fprintln(os.Stderr, color.HiBlackString("job %s completed in %s", result.JobID, result.Duration))
			return printExercise(cmd.OutOrStdout(), result.Exercise, difficulty, answers, false)
		},
	}

	cmd.Flags().Float64Var(&difficulty, "difficulty", 0.5, "fraction of candidates to blank")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "how long to wait for the result")
	cmd.Flags().BoolVar(&answers, "answers", false, "print the answer key")
	return cmd
}

// requestExercise publishes job and waits for its result
func requestExercise(ctx context.Context, conn *queue.Connection, job *queue.GenerateJob) (*queue.GenerateResult, error) {
	results := queue.NewResultConsumer(conn)
	if err := results.Start(ctx); err != nil {
		return nil, err
	}
	defer results.Stop()

	wait := results.Expect(job.ID)
	if err := queue.NewProducer(conn).PublishGenerateJob(ctx, job); err != nil {
		return nil, err
	}
	return wait(ctx)
}

func printExercise(w io.Writer, ex *domain.Exercise, difficulty float64, answers, asJSON bool) error {
	if asJSON {
		if !answers {
			redacted := *ex
			redacted.Blanks = nil
			ex = &redacted
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ex)
	}

	fmt.Fprintf(w, "%s  %s\n", color.New(color.Bold).Sprintf("%d. %s", ex.ID, ex.Title), color.HiBlackString(strings.ToUpper(string(ex.Level))))
	if ex.Description != "" {
		fmt.Fprintln(w, ex.Description)
	}
	fmt.Fprintf(w, "%d blanks, %s\n\n", len(ex.Blanks), domain.DifficultyName(difficulty))
	fmt.Fprintln(w, ex.Code)

	if answers {
		fmt.Fprintln(w, color.New(color.Bold).Sprint("\nAnswers"))
		for i, b := range ex.Blanks {
			fmt.Fprintf(w, "  %2d. %s\n", i+1, color.GreenString(b.Answer))
		}
	}
	return nil
}

// printSpec renders the exercise README as terminal markdown
func printSpec(w io.Writer, specText string) error {
	if strings.TrimSpace(specText) == "" {
		return nil
	}

	style := "dark"
	if color.NoColor {
		style = "notty"
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(100))
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}

	out, err := r.Render(specText)
	if err != nil {
		return fmt.Errorf("render spec: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
