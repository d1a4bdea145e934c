package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"expertstats/internal/config"
	"expertstats/internal/preflight"
	"expertstats/internal/runlock"
	"expertstats/internal/store"
	"expertstats/internal/syncer"
	"expertstats/internal/viewcache"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull account data into the local database",
		Long: "Run the sync queue: profile, transactions, lost-task sweep, then each task\n" +
			"list page by page. Use --resume to continue an interrupted run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if failed := preflight.Failed(preflight.DirectoryChecks(cfg)); len(failed) > 0 {
				return fmt.Errorf("%s: %s", failed[0].Name, failed[0].Detail)
			}

			lock, err := runlock.Acquire(cfg.LockPath())
			if err != nil {
				if errors.Is(err, runlock.ErrLocked) {
					return fmt.Errorf("another sync is running (lock %s)", cfg.LockPath())
				}
				return err
			}
			defer lock.Release()

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				return runSync(cmd, ctx, cfg, st, resume)
			})
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue from the step an interrupted sync stopped at")

	cmd.AddCommand(newSyncPlanCommand(ctx))
	return cmd
}

func runSync(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, st *store.Store, resume bool) error {
	interactive := shouldColorize(cmd.ErrOrStderr())

	logger, err := ctx.newLogger(interactive)
	if err != nil {
		return err
	}

	token, err := resolveToken(cmd.Context(), cfg, st)
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg, token)
	if err != nil {
		return err
	}

	cache := viewcache.NewCache(cfg.ViewCachePath(), logger)
	processor, err := syncer.NewProcessor(syncer.Dependencies{
		Remote:   client,
		Guard:    client,
		Settings: st,
		Records:  st,
		Cache:    cache,
	},
		syncer.WithLogger(logger),
		syncer.WithCancelAfterDays(cfg.Sync.CancelAfterDays),
	)
	if err != nil {
		return err
	}

	queue := syncer.BuildQueue()
	var progress func(syncer.Progress)
	var bar *progressbar.ProgressBar
	if interactive {
		bar = progressbar.NewOptions(len(queue),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Starting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		progress = func(p syncer.Progress) {
			bar.Describe(p.Step.String())
			done := p.Index
			if p.Done() {
				done++
			}
			_ = bar.Set(done)
		}
	} else {
		out := cmd.OutOrStdout()
		progress = func(p syncer.Progress) {
			fmt.Fprintf(out, "[%d/%d] %s\n", p.Index+1, p.Total, p.Step.String())
		}
	}

	runner := syncer.NewRunner(processor, st,
		syncer.WithRunnerLogger(logger),
		syncer.WithProgress(progress),
	)
	result, err := runner.Run(cmd.Context(), resume)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		if result != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Sync stopped after %d pages; run `expertstats sync --resume` to continue\n", result.Pages)
		}
		return err
	}

	verb := "Synced"
	if result.Resumed {
		verb = "Resumed and synced"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d steps (%d pages) in %s\n",
		verb, result.Steps, result.Pages, result.Duration.Round(time.Millisecond))
	return nil
}

func newSyncPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the sync queue and any pending resume point",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				cursor, err := syncer.PendingCursor(cmd.Context(), st)
				if err != nil {
					return err
				}

				queue := syncer.BuildQueue()
				rows := make([][]string, 0, len(queue))
				for i, step := range queue {
					marker := ""
					if cursor != nil && cursor.Index == i && cursor.Step.Task == step.Task {
						marker = "resume at page " + strconv.Itoa(cursor.Step.Page)
					}
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						step.Task,
						step.Label,
						yesNo(step.Paged),
						marker,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"#", "Task", "Label", "Paged", "Pending"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				if cursor != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Interrupted run %s; continue with `expertstats sync --resume`\n", strings.TrimSpace(cursor.RunID))
				}
				return nil
			})
		},
	}
}
