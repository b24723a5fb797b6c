//go:build tui

package main

import (
	"github.com/oneirolab/dreamweave/pkg/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"browse"},
	Short:   "Show terminal UI",
	Long:    `Display an interactive terminal UI for browsing the dream journal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		return tui.ShowTUI(dbConn)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
