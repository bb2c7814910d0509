// Command litequeue inspects and manipulates a LiteQueue data directory.
//
// Each invocation is its own process and therefore its own lock domain;
// the CLI is meant for operating on a queue while the owning application
// is stopped (inspection, draining, orphan recovery), not for concurrent
// use against a live process.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	litequeue "github.com/NomadeonSoftwareLLC/LiteQueue"
	cfgpkg "github.com/NomadeonSoftwareLLC/LiteQueue/internal/config"
	"github.com/NomadeonSoftwareLLC/LiteQueue/internal/runtime"
	logpkg "github.com/NomadeonSoftwareLLC/LiteQueue/pkg/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "litequeue",
		Short:         "LiteQueue CLI",
		Long:          "Inspect and manipulate a durable LiteQueue data directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (default: OS application data directory)")
	rootCmd.PersistentFlags().String("queue", "", "Queue (collection) name")
	rootCmd.PersistentFlags().String("fsync", "", "Fsync mode: always|interval|never")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().Bool("no-txn", false, "Open the queue in non-transactional mode")

	rootCmd.AddCommand(
		newEnqueueCmd(),
		newDequeueCmd(),
		newCommitCmd(),
		newAbortCmd(),
		newCheckoutsCmd(),
		newResetOrphansCmd(),
		newCountCmd(),
		newClearCmd(),
		newStatsCmd(),
	)
	return rootCmd
}

// loadConfig merges persistent flags over the config file and environment.
func loadConfig(cmd *cobra.Command) (cfgpkg.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("queue"); v != "" {
		cfg.Queue = v
	}
	if v, _ := cmd.Flags().GetString("fsync"); v != "" {
		cfg.Fsync = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetBool("no-txn"); v {
		cfg.Transactional = false
	}
	return cfg, nil
}

// openQueue builds the runtime and opens the configured queue. The caller
// must Close the returned runtime.
func openQueue(cmd *cobra.Command) (*runtime.Runtime, *litequeue.Queue[string], error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	mode, err := cfg.FsyncMode()
	if err != nil {
		return nil, nil, err
	}
	level, err := logpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logOpts := []logpkg.Option{logpkg.WithLevel(level)}
	if cfg.LogJSON {
		logOpts = append(logOpts, logpkg.WithJSON())
	}
	rt, err := runtime.Open(runtime.Options{
		DataDir: cfg.DataDir,
		Fsync:   mode,
		Config:  cfg,
		Logger:  logpkg.NewLogger(logOpts...),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open data dir: %w", err)
	}
	q, err := rt.OpenQueue(cfg.Queue)
	if err != nil {
		_ = rt.Close()
		return nil, nil, fmt.Errorf("open queue %q: %w", cfg.Queue, err)
	}
	return rt, q, nil
}

func newEnqueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue PAYLOAD [PAYLOAD...]",
		Short: "Append one or more payloads to the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, q, err := openQueue(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			entries, err := q.EnqueueAll(cmd.Context(), args)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", e.ID, e.Payload)
			}
			return nil
		},
	}
}

func newDequeueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dequeue",
		Short: "Claim the next entries (checked out unless --no-txn)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, _ := cmd.Flags().GetInt("batch")
			rt, q, err := openQueue(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			entries, err := q.Dequeue(cmd.Context(), batch)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "queue is empty")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", e.ID, e.Payload)
			}
			return nil
		},
	}
	cmd.Flags().Int("batch", 1, "Number of entries to claim")
	return cmd
}

func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Permanently remove a checked-out entry",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return resolveCheckout(cmd, true) },
	}
	cmd.Flags().Uint64("id", 0, "Entry identifier (from dequeue or checkouts)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newAbortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abort",
		Short: "Return a checked-out entry to availability",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return resolveCheckout(cmd, false) },
	}
	cmd.Flags().Uint64("id", 0, "Entry identifier (from dequeue or checkouts)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// resolveCheckout commits or aborts the checked-out entry with the given id.
func resolveCheckout(cmd *cobra.Command, commit bool) error {
	id, _ := cmd.Flags().GetUint64("id")
	rt, q, err := openQueue(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	entry, err := findCheckout(ctx, q, id)
	if err != nil {
		return err
	}
	if commit {
		err = q.Commit(ctx, entry)
	} else {
		err = q.Abort(ctx, entry)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d\tok\n", id)
	return nil
}

func findCheckout(ctx context.Context, q *litequeue.Queue[string], id uint64) (*litequeue.Entry[string], error) {
	checkouts, err := q.CurrentCheckouts(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range checkouts {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("entry %d is not checked out", id)
}

func newCheckoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkouts",
		Short: "List entries currently checked out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, q, err := openQueue(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			entries, err := q.CurrentCheckouts(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", e.ID, e.Payload)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d checked out\n", len(entries))
			return nil
		},
	}
}

func newResetOrphansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-orphans",
		Short: "Return all checked-out entries to availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, q, err := openQueue(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := q.ResetOrphans(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the total number of entries, checked out or not",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, q, err := openQueue(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			n, err := q.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.Itoa(n))
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry, including checked-out ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, q, err := openQueue(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := q.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print queue health, depth, and checkout count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, q, err := openQueue(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			if err := rt.CheckHealth(ctx); err != nil {
				return fmt.Errorf("health: %w", err)
			}
			total, err := q.Count(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "queue:\t%s\n", q.Name())
			fmt.Fprintf(out, "mode:\t%s\n", modeName(q.Transactional()))
			fmt.Fprintf(out, "entries:\t%d\n", total)
			if q.Transactional() {
				checkouts, err := q.CurrentCheckouts(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "checked out:\t%d\n", len(checkouts))
			}
			return nil
		},
	}
}

func modeName(transactional bool) string {
	if transactional {
		return "transactional"
	}
	return "non-transactional"
}
