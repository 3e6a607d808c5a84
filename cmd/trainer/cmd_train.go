package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/trainer/internal/app"
	"github.com/felixgeelhaar/trainer/internal/domain"
	"github.com/felixgeelhaar/trainer/internal/session"
)

// errQuit ends a training run early; the session is still finished
var errQuit = errors.New("quit")

// trainer is the part of the session service an interactive run needs
type trainer interface {
	Exercise(ctx context.Context, id string, index int) (*domain.Exercise, error)
	Regenerate(ctx context.Context, id string, index int) (*domain.Exercise, error)
	Check(ctx context.Context, id string, index int, answers []string) (domain.CheckResult, error)
}

func newTrainCmd() *cobra.Command {
	var (
		tasks      int
		levels     []string
		difficulty float64
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run an interactive training session in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, app.Options{Queue: true})
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.Config.Training
			if cmd.Flags().Changed("tasks") {
				cfg.Tasks = tasks
			}
			if cmd.Flags().Changed("difficulty") {
				cfg.Difficulty = difficulty
			}
			if len(levels) > 0 {
				cfg.Levels = make([]domain.Level, 0, len(levels))
				for _, raw := range levels {
					l, err := domain.ParseLevel(raw)
					if err != nil {
						return err
					}
					cfg.Levels = append(cfg.Levels, l)
				}
			}

			sess, err := a.Sessions.Create(ctx, cfg)
			if err != nil {
				return err
			}
			id := sess.ID.String()

			in := bufio.NewScanner(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			for i := range sess.Tasks {
				err := trainExercise(ctx, a.Sessions, id, i, len(sess.Tasks), in, out)
				if errors.Is(err, errQuit) {
					break
				}
				if err != nil {
					return err
				}
			}

			sum, err := a.Sessions.Finish(ctx, id)
			if err != nil {
				return err
			}
			printSummary(out, sum)
			return nil
		},
	}

	cmd.Flags().IntVarP(&tasks, "tasks", "n", 5, "number of exercises")
	cmd.Flags().StringSliceVarP(&levels, "levels", "l", nil, "levels to draw from, e.g. g1,g2")
	cmd.Flags().Float64Var(&difficulty, "difficulty", 0.5, "fraction of candidates to blank")
	return cmd
}

// trainExercise runs one exercise until it is solved, skipped or quit.
// Answers are read one line per blank; ":r" regenerates, ":s" skips and
// ":q" quits.
func trainExercise(ctx context.Context, svc trainer, id string, index, total int, in *bufio.Scanner, out io.Writer) error {
	ex, err := svc.Exercise(ctx, id, index)
	if err != nil {
		return err
	}

next:
	for {
		fmt.Fprintf(out, "\n%s %s\n\n%s\n\n",
			color.New(color.Bold).Sprintf("Exercise %d/%d:", index+1, total), ex.Title, ex.Code)
		fmt.Fprintf(out, "%s\n", color.HiBlackString("Fill %d blanks, one per line (:r regenerate, :s skip, :q quit)", len(ex.Blanks)))

		answers := make([]string, 0, len(ex.Blanks))
		for len(answers) < len(ex.Blanks) {
			fmt.Fprintf(out, "%2d> ", len(answers)+1)
			if !in.Scan() {
				return errQuit
			}

			line := in.Text()
			switch strings.TrimSpace(line) {
			case ":q":
				return errQuit
			case ":s":
				return nil
			case ":r":
				if ex, err = svc.Regenerate(ctx, id, index); err != nil {
					return err
				}
				continue next
			}
			answers = append(answers, line)
		}

		result, err := svc.Check(ctx, id, index, answers)
		if err != nil {
			return err
		}
		printResult(out, result)
		if result.AllCorrect {
			return nil
		}
	}
}

func printResult(w io.Writer, result domain.CheckResult) {
	for _, b := range result.Blanks {
		mark := color.GreenString("✓")
		if !b.Correct {
			mark = color.RedString("✗")
		}
		fmt.Fprintf(w, "  %s %2d. %s\n", mark, b.Index+1, b.Given)
	}

	if result.AllCorrect {
		fmt.Fprintln(w, color.GreenString("All correct!"))
		return
	}
	fmt.Fprintf(w, "%d of %d correct, try again\n", result.CorrectCount(), len(result.Blanks))
}

func printSummary(w io.Writer, sum session.Summary) {
	fmt.Fprintf(w, "\n%s\n", color.New(color.Bold).Sprint("Training complete"))
	fmt.Fprintf(w, "Solved:     %d/%d\n", sum.Solved, sum.Total)
	fmt.Fprintf(w, "Score:      %d%%\n", sum.Score)
	fmt.Fprintf(w, "Attempts:   %d\n", sum.Attempts)
	fmt.Fprintf(w, "Difficulty: %s\n", sum.Difficulty)
	fmt.Fprintf(w, "Duration:   %s\n", sum.Duration.Round(time.Second))
	fmt.Fprintln(w, sum.Message)
}
