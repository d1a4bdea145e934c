package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"expertstats/internal/config"
	"expertstats/internal/store"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change stored settings",
	}
	cmd.AddCommand(newSettingsListCommand(ctx))
	cmd.AddCommand(newSettingsGetCommand(ctx))
	cmd.AddCommand(newSettingsSetCommand(ctx))
	cmd.AddCommand(newSettingsDeleteCommand(ctx))
	return cmd
}

func newSettingsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				keys, err := st.ListSettingKeys(cmd.Context())
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No settings stored")
					return nil
				}
				rows := make([][]string, 0, len(keys))
				for _, key := range keys {
					raw, _, err := st.GetSettingRaw(cmd.Context(), key)
					if err != nil {
						return err
					}
					rows = append(rows, []string{key, truncate(displaySetting(key, raw), 60)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func newSettingsGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print a stored setting as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				raw, found, err := st.GetSettingRaw(cmd.Context(), key)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("setting %q not found", key)
				}
				fmt.Fprintln(cmd.OutOrStdout(), displaySetting(key, raw))
				return nil
			})
		},
	}
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a setting",
		Long: "Store a setting. VALUE is parsed as JSON when possible and stored as a\n" +
			"plain string otherwise, so `settings set cancel_after_days 90` stores a number.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if key == "" {
				return fmt.Errorf("setting key is required")
			}
			var value any = args[1]
			if json.Valid([]byte(args[1])) {
				value = json.RawMessage(args[1])
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				if err := st.SetSetting(cmd.Context(), key, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", key)
				return nil
			})
		},
	}
}

func newSettingsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Remove a stored setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				if err := st.DeleteSetting(cmd.Context(), key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", key)
				return nil
			})
		},
	}
}

func displaySetting(key string, raw json.RawMessage) string {
	if key == store.SettingAuthToken {
		return `"********"`
	}
	return string(raw)
}
