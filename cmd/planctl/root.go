package main

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"planboard/internal/client"
	"planboard/internal/clientconfig"
)

var (
	serverFlag string
	verbose    bool
)

var errNotLoggedIn = errors.New("not logged in, run `planctl login --token <token>` first")

var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "Command line client for planboard",
	Long: `planctl manages planboard boards and tasks from the terminal.

Sign in through the web UI, copy the token shown at /auth/session and store it
with "planctl login --token <token>". "planctl board <id>" opens an interactive
board where moves and edits show up at once and are rolled back if the server
rejects them.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.WarnLevel)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Server URL (overrides config and PLANCTL_SERVER)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(boardsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*clientconfig.Config, error) {
	cfg, err := clientconfig.Load()
	if err != nil {
		return nil, err
	}
	if serverFlag != "" {
		cfg.Server = serverFlag
	}
	return cfg, nil
}

// apiClient builds a client from the stored session.
func apiClient() (*client.Client, *clientconfig.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.LoggedIn() {
		return nil, nil, errNotLoggedIn
	}
	return client.New(cfg.Server, cfg.Token, cfg.Username), cfg, nil
}

func printErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
