package main

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"planboard/internal/boardsync"
	"planboard/internal/model"
	"planboard/internal/tui"
)

var logFile string

var boardCmd = &cobra.Command{
	Use:   "board <board-id>",
	Short: "Open a board in the interactive view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := apiClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		board, err := c.GetBoard(ctx, args[0])
		if err != nil {
			return err
		}

		// the terminal belongs to the board view while it runs
		log.SetOutput(io.Discard)
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				printErr("cannot open log file: %v", err)
			} else {
				defer f.Close()
				log.SetOutput(f)
			}
		}

		engine := boardsync.New(c, board.ID, cfg.Username, board.Tasks,
			boardsync.WithLogger(log.WithField("user", cfg.Username)))
		view := tui.NewBoard(ctx, board.Title, engine, func(ctx context.Context) ([]model.Task, error) {
			return c.ListTasks(ctx, board.ID)
		})

		_, err = tea.NewProgram(view, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		engine.Settle()
		return err
	},
}

func init() {
	boardCmd.Flags().StringVar(&logFile, "log-file", "", "Append logs to this file while the board is open")
}
