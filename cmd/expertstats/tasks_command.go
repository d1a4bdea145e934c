package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"expertstats/internal/config"
	"expertstats/internal/store"
)

type taskView struct {
	TaskID         int64   `json:"task_id"`
	ClientID       int64   `json:"client_id"`
	Title          string  `json:"title"`
	State          string  `json:"state"`
	Kind           string  `json:"kind"`
	Flag           string  `json:"flag,omitempty"`
	Value          string  `json:"value"`
	ValueClient    string  `json:"value_client"`
	ClientFee      string  `json:"client_fee"`
	LastActivity   *int64  `json:"last_activity,omitempty"`
	LastActivityBy *string `json:"last_activity_by,omitempty"`
	LastSync       int64   `json:"last_sync"`
}

func newTaskView(task *store.Task) taskView {
	return taskView{
		TaskID:         task.TaskID,
		ClientID:       task.ClientID,
		Title:          task.Title,
		State:          task.State,
		Kind:           task.Kind,
		Flag:           string(task.Flag),
		Value:          task.Value.StringFixed(2),
		ValueClient:    task.ValueClient.StringFixed(2),
		ClientFee:      task.ClientFee.String(),
		LastActivity:   task.LastActivity,
		LastActivityBy: task.LastActivityBy,
		LastSync:       task.LastSync,
	}
}

func newTasksCommand(ctx *commandContext) *cobra.Command {
	var (
		flag   string
		state  string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List stored tasks, most recently active first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := store.TaskFilter{
				Flag:  store.Flag(strings.ToLower(strings.TrimSpace(flag))),
				State: strings.TrimSpace(state),
				Limit: limit,
			}
			if filter.Flag != store.FlagUnset && !knownFlag(filter.Flag) {
				return fmt.Errorf("unknown flag %q (want one of %s)", flag, flagNames())
			}

			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				tasks, err := st.ListTasks(cmd.Context(), filter)
				if err != nil {
					return err
				}

				if asJSON {
					views := make([]taskView, 0, len(tasks))
					for _, task := range tasks {
						views = append(views, newTaskView(task))
					}
					return writeJSON(cmd, views)
				}

				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks stored")
					return nil
				}
				rows := make([][]string, 0, len(tasks))
				for _, task := range tasks {
					by := "-"
					if task.LastActivityBy != nil && *task.LastActivityBy != "" {
						by = *task.LastActivityBy
					}
					rows = append(rows, []string{
						strconv.FormatInt(task.TaskID, 10),
						truncate(task.Title, 48),
						label(task.State),
						label(string(task.Flag)),
						task.Value.StringFixed(2),
						task.ClientFee.String(),
						formatUnix(task.LastActivity),
						by,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "State", "Flag", "Value", "Fee %", "Last activity", "By"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flag, "flag", "", "Only tasks with this flag ("+flagNames()+")")
	cmd.Flags().StringVar(&state, "state", "", "Only tasks in this API state")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of tasks (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func knownFlag(flag store.Flag) bool {
	for _, f := range store.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

func flagNames() string {
	names := make([]string, 0, len(store.Flags))
	for _, f := range store.Flags {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-1]) + "…"
}
