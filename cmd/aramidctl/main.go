// Command aramidctl is a small operator harness for the aramid
// runtime: it starts a Context, runs one of the bundled demo
// procedures against it, and prints the result. It exists for manual
// smoke-testing, not as a supported embedding API.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/aramidrun/aramid"
)

func main() {
	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintf(os.Stderr, "aramidctl: maxprocs: %v\n", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	if err := newRootCmd(logger).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger zerolog.Logger) *cobra.Command {
	var numExecutors int

	root := &cobra.Command{
		Use:   "aramidctl",
		Short: "Run bundled aramid demo procedures against a live Context",
	}
	root.PersistentFlags().IntVar(&numExecutors, "executors", defaultNumExecutors(), "number of executors (defaults to ARAMID_NUM_EXECUTORS or all CPUs)")

	root.AddCommand(newFibonacciCmd(&numExecutors, logger))
	root.AddCommand(newStormCmd(&numExecutors, logger))

	return root
}

// defaultNumExecutors honors ARAMID_NUM_EXECUTORS when set, matching
// spec.md §6's "optional NUM_EXECUTORS-style variable consulted only
// by test harnesses — not part of the core": the library's own
// DefaultConfig never reads the environment, only this CLI does.
func defaultNumExecutors() int {
	if v := os.Getenv("ARAMID_NUM_EXECUTORS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.GOMAXPROCS(0)
}

func newContext(numExecutors int, logger zerolog.Logger) (*aramid.Context, error) {
	cfg := aramid.DefaultConfig()
	cfg.NumExecutors = numExecutors
	cfg.Logger = logger
	return aramid.NewContext(cfg)
}

func newFibonacciCmd(numExecutors *int, logger zerolog.Logger) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "fibonacci",
		Short: "Compute fib(n) via fork/join",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.New().String()
			runLogger := logger.With().Str("run_id", runID).Str("demo", "fibonacci").Logger()

			ctx, err := newContext(*numExecutors, runLogger)
			if err != nil {
				return fmt.Errorf("aramidctl: %w", err)
			}
			defer ctx.Close()

			result, err := runFibonacci(ctx, n)
			if err != nil {
				return fmt.Errorf("aramidctl: fibonacci(%d): %w", n, err)
			}

			fmt.Printf("fib(%d) = %d\n", n, result)
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "which fibonacci number to compute")
	return cmd
}

// newStormCmd fans a batch of independent fibonacci invocations out
// concurrently and waits on all of them with errgroup, each goroutine
// calling Await on its own handle as a caller juggling many handles
// would.
func newStormCmd(numExecutors *int, logger zerolog.Logger) *cobra.Command {
	var count int
	var n int

	cmd := &cobra.Command{
		Use:   "storm",
		Short: "Invoke many independent fibonacci jobs concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.New().String()
			runLogger := logger.With().Str("run_id", runID).Str("demo", "storm").Logger()

			ctx, err := newContext(*numExecutors, runLogger)
			if err != nil {
				return fmt.Errorf("aramidctl: %w", err)
			}
			defer ctx.Close()

			var g errgroup.Group
			results := make([]int, count)
			for i := 0; i < count; i++ {
				i := i
				g.Go(func() error {
					result, err := runFibonacci(ctx, n)
					if err != nil {
						return err
					}
					results[i] = result
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return fmt.Errorf("aramidctl: storm: %w", err)
			}

			fmt.Printf("ran %d concurrent fib(%d) invocations, all settled\n", count, n)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 50, "number of concurrent invocations")
	cmd.Flags().IntVar(&n, "n", 15, "which fibonacci number each invocation computes")
	return cmd
}
