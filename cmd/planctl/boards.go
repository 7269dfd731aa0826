package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List, create and delete boards",
}

var boardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your boards, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient()
		if err != nil {
			return err
		}
		boards, err := c.ListBoards(cmd.Context())
		if err != nil {
			return err
		}
		if len(boards) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No boards yet. Create one with `planctl boards create`.")
			return nil
		}
		t := newTable("ID", "TITLE", "CREATED")
		for _, b := range boards {
			t.Row(b.ID, b.Title, b.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

var boardsCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a board with three sample tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient()
		if err != nil {
			return err
		}
		board, err := c.CreateBoard(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created board %s (%s) with %d tasks\n", board.Title, board.ID, len(board.Tasks))
		return nil
	},
}

var boardsDeleteCmd = &cobra.Command{
	Use:   "delete <board-id>",
	Short: "Delete a board with all its tasks and cards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient()
		if err != nil {
			return err
		}
		if err := c.DeleteBoard(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted board %s\n", args[0])
		return nil
	},
}

func init() {
	boardsCmd.AddCommand(boardsListCmd)
	boardsCmd.AddCommand(boardsCreateCmd)
	boardsCmd.AddCommand(boardsDeleteCmd)
}
