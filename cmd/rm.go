package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gswitch/gs/internal/platform"
	"github.com/gswitch/gs/internal/profile"
	"github.com/gswitch/gs/internal/ui"
)

var rmFlagDeleteKey bool

var rmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Remove a profile",
	Long: `Remove a profile from the store and optionally delete its SSH key files.

Removing a profile never touches the live Git or SSH config; it only
stops the profile from being offered for switching.`,
	Args: cobra.MaximumNArgs(1),
	Example: `  gs rm work
  gs rm personal --delete-key`,
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)

	rmCmd.Flags().BoolVar(&rmFlagDeleteKey, "delete-key", false, "Also delete the profile's SSH key files")
}

func runRm(cmd *cobra.Command, args []string) error {
	// Auto-initialize if needed
	if err := autoInit(); err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	var id string
	if len(args) == 1 {
		id = args[0]
	} else {
		profiles := store.List()
		if len(profiles) == 0 {
			return fmt.Errorf("no profiles configured yet\nRun: gs setup")
		}
		id, err = ui.SelectProfile(profiles, store.Active(), "Remove profile:")
		if err != nil {
			return err
		}
	}

	p := store.Find(id)
	if p == nil {
		return fmt.Errorf("%w: '%s'\nRun: gs list", profile.ErrNotFound, id)
	}
	wasActive := store.Active() == p.ID

	confirmed, err := ui.PromptConfirmation(fmt.Sprintf("Remove profile '%s' (%s)?", p.ID, p.GitEmail))
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Cancelled")
		return nil
	}

	deleteKey := rmFlagDeleteKey
	if !deleteKey && p.SSHKeyPath != "" {
		deleteKey, err = ui.PromptConfirmation(fmt.Sprintf("Also delete SSH key files (%s)?", p.SSHKeyPath))
		if err != nil {
			return err
		}
	}

	if err := store.Remove(id); err != nil {
		return fmt.Errorf("failed to remove profile: %w", err)
	}

	if wasActive {
		ui.Info("Active profile marker cleared; the live Git/SSH config is unchanged")
	}

	if deleteKey && p.SSHKeyPath != "" {
		removeKeyFiles(p.SSHKeyPath)
	}

	ui.Success(fmt.Sprintf("Profile '%s' removed", id))

	if len(store.List()) == 0 {
		fmt.Println("\nNo profiles remaining. Add one with: gs setup")
	}

	return nil
}

// removeKeyFiles deletes the private and public key files, reporting each
// one individually
func removeKeyFiles(keyPath string) {
	expanded, err := platform.ExpandTilde(keyPath)
	if err != nil {
		expanded = keyPath
	}

	if err := os.Remove(expanded); err != nil {
		ui.Warning(fmt.Sprintf("Could not delete private key: %v", err))
	} else {
		ui.Success(fmt.Sprintf("Deleted: %s", expanded))
	}

	pubKeyPath := expanded + ".pub"
	if err := os.Remove(pubKeyPath); err != nil {
		ui.Warning(fmt.Sprintf("Could not delete public key: %v", err))
	} else {
		ui.Success(fmt.Sprintf("Deleted: %s", pubKeyPath))
	}
}
