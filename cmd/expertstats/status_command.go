package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"expertstats/internal/config"
	"expertstats/internal/preflight"
	"expertstats/internal/store"
	"expertstats/internal/syncer"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, session, and API reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				token, err := resolveToken(cmd.Context(), cfg, st)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				results := preflight.RunAll(cmd.Context(), cfg, token)
				rows := make([][]string, 0, len(results))
				for _, result := range results {
					rows = append(rows, []string{result.Name, passFail(result.Passed, colorize), result.Detail})
				}
				fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft}))

				tasks, err := st.CountTasksByFlag(cmd.Context())
				if err != nil {
					return err
				}
				total := 0
				for _, count := range tasks {
					total += count
				}
				var lastSync string
				if _, err := st.GetSetting(cmd.Context(), store.SettingLastSyncCompleted, &lastSync); err != nil {
					return err
				}
				if lastSync == "" {
					lastSync = "never"
				}
				cursor, err := syncer.PendingCursor(cmd.Context(), st)
				if err != nil {
					return err
				}
				pending := "none"
				if cursor != nil {
					pending = cursor.Step.String() + " (run `expertstats sync --resume`)"
				}

				fmt.Fprintf(out, "Database: %s\n", st.Path())
				fmt.Fprintf(out, "Tasks stored: %s\n", strconv.Itoa(total))
				fmt.Fprintf(out, "Last sync: %s\n", lastSync)
				fmt.Fprintf(out, "Interrupted sync: %s\n", pending)

				if failed := preflight.Failed(results); len(failed) > 0 {
					return fmt.Errorf("%d check(s) failed", len(failed))
				}
				return nil
			})
		},
	}
}
