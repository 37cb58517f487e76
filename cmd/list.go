package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gswitch/gs/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all configured profiles",
	Long:    `Display all configured identity profiles and highlight the active one.`,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	// Auto-initialize if needed
	if err := autoInit(); err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	ui.PrintProfilesList(store.List(), store.Active())

	return nil
}
