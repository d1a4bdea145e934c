package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"expertstats/internal/config"
	"expertstats/internal/store"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Long: "Sign in with email and password. The password can also come from\n" +
			"EXPERTSTATS_PASSWORD. The returned token is stored in the database and\n" +
			"used when the config file carries no token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass := password
			if pass == "" {
				pass = os.Getenv("EXPERTSTATS_PASSWORD")
			}
			if strings.TrimSpace(email) == "" || pass == "" {
				return fmt.Errorf("email and password are required")
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				client, err := newAPIClient(cfg, "")
				if err != nil {
					return err
				}
				token, err := client.Login(cmd.Context(), strings.TrimSpace(email), pass)
				if err != nil {
					return err
				}
				if err := st.SetSetting(cmd.Context(), store.SettingAuthToken, token); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", strings.TrimSpace(email))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}
