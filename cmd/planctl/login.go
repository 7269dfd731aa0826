package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"planboard/internal/client"
	"planboard/internal/clientconfig"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a session token",
	Long: `Verify a session token against the server and store it in
` + clientconfig.Path() + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if loginToken == "" {
			return fmt.Errorf("--token is required")
		}

		session, err := client.New(cfg.Server, loginToken, "").Session(cmd.Context())
		if err != nil {
			return fmt.Errorf("verify token: %w", err)
		}
		cfg.Token = session.Token
		cfg.Username = session.User.Username
		if err := clientconfig.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", cfg.Server, cfg.Username)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the stored token from the current account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := apiClient()
		if err != nil {
			return err
		}
		session, err := c.Refresh(cmd.Context())
		if err != nil {
			return fmt.Errorf("refresh session: %w", err)
		}
		cfg.Token = session.Token
		cfg.Username = session.User.Username
		if err := clientconfig.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session refreshed for %s (%s)\n", session.User.Username, session.User.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Session token from /auth/session")
}
