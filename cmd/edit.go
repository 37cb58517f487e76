package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gswitch/gs/internal/profile"
	"github.com/gswitch/gs/internal/sshkey"
	"github.com/gswitch/gs/internal/ui"
)

var (
	editFlagDisplay string
	editFlagName    string
	editFlagEmail   string
	editFlagKey     string
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit an existing profile",
	Long: `Edit the fields of an existing profile. The id itself cannot change.

Without flags the current values are offered as editable defaults.
Editing does not touch the live Git or SSH config; switch to the profile
again to apply the new values.`,
	Args: cobra.MaximumNArgs(1),
	Example: `  gs edit work
  gs edit work --email alice@new-employer.com
  gs edit personal --key ~/.ssh/id_ed25519`,
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVar(&editFlagDisplay, "display", "", "New display name")
	editCmd.Flags().StringVar(&editFlagName, "name", "", "New commit name")
	editCmd.Flags().StringVar(&editFlagEmail, "email", "", "New commit email")
	editCmd.Flags().StringVar(&editFlagKey, "key", "", "New SSH private key path")
}

func runEdit(cmd *cobra.Command, args []string) error {
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
		id, err = ui.SelectProfile(profiles, store.Active(), "Edit profile:")
		if err != nil {
			return err
		}
	}

	current := store.Find(id)
	if current == nil {
		return fmt.Errorf("%w: '%s'\nRun: gs list", profile.ErrNotFound, id)
	}

	updated := *current
	flagged := false

	if editFlagDisplay != "" {
		updated.DisplayName = editFlagDisplay
		flagged = true
	}
	if editFlagName != "" {
		updated.GitName = editFlagName
		flagged = true
	}
	if editFlagEmail != "" {
		updated.GitEmail = editFlagEmail
		flagged = true
	}
	if editFlagKey != "" {
		if err := sshkey.Validate(editFlagKey); err != nil {
			ui.Warning(fmt.Sprintf("Key not usable yet: %v", err))
		}
		updated.SSHKeyPath = editFlagKey
		flagged = true
	}

	if !flagged {
		updated, err = ui.PromptProfileInfo(*current, false)
		if err != nil {
			return fmt.Errorf("failed to read profile info: %w", err)
		}

		keyPath, err := ui.PromptExistingKeyPath(current.SSHKeyPath)
		if err != nil {
			return fmt.Errorf("failed to read key path: %w", err)
		}
		if err := sshkey.Validate(keyPath); err != nil {
			ui.Warning(fmt.Sprintf("Key not usable yet: %v", err))
		}
		updated.SSHKeyPath = keyPath
	}

	if err := store.Update(id, updated); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	ui.Success(fmt.Sprintf("Profile '%s' updated", id))

	if store.Active() == id {
		fmt.Printf("\nThe live config still has the old values. Apply the new ones with: gs %s\n", id)
	}

	return nil
}
