package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gswitch/gs/internal/platform"
	"github.com/gswitch/gs/internal/profile"
	"github.com/gswitch/gs/internal/sshkey"
	"github.com/gswitch/gs/internal/ui"
)

var (
	setupFlagID      string
	setupFlagDisplay string
	setupFlagName    string
	setupFlagEmail   string
	setupFlagKey     string
	setupFlagGenKey  bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Add a new identity profile",
	Long:  `Add a new identity profile with commit name, email, and SSH key.`,
	Example: `  # Interactive mode
  gs setup

  # Using flags
  gs setup --id work --display Work --name "Alice Smith" \
    --email alice@work.com --key ~/.ssh/work_key

  # Generate a fresh key for the profile
  gs setup --id work --display Work --name "Alice Smith" \
    --email alice@work.com --generate-key`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().StringVar(&setupFlagID, "id", "", "Profile id (e.g., work, personal)")
	setupCmd.Flags().StringVar(&setupFlagDisplay, "display", "", "Display name shown in listings")
	setupCmd.Flags().StringVar(&setupFlagName, "name", "", "Name recorded on Git commits")
	setupCmd.Flags().StringVar(&setupFlagEmail, "email", "", "Email recorded on Git commits")
	setupCmd.Flags().StringVar(&setupFlagKey, "key", "", "Path to existing SSH private key")
	setupCmd.Flags().BoolVar(&setupFlagGenKey, "generate-key", false, "Generate a new SSH key pair for this profile")
}

func runSetup(cmd *cobra.Command, args []string) error {
	// Auto-initialize if needed
	if err := autoInit(); err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	p := profile.Profile{
		ID:          setupFlagID,
		DisplayName: setupFlagDisplay,
		GitName:     setupFlagName,
		GitEmail:    setupFlagEmail,
	}

	// Identity fields, interactive when not fully specified by flags
	if p.ID == "" || p.DisplayName == "" || p.GitName == "" || p.GitEmail == "" {
		fmt.Println("Adding a new identity profile")
		fmt.Println()

		p, err = ui.PromptProfileInfo(p, true)
		if err != nil {
			return fmt.Errorf("failed to read profile info: %w", err)
		}
	}

	// SSH key: explicit path, generated, or chosen interactively. A path
	// that does not exist yet is allowed; switching validates it again.
	switch {
	case setupFlagKey != "":
		if err := sshkey.Validate(setupFlagKey); err != nil {
			ui.Warning(fmt.Sprintf("Key not usable yet: %v", err))
		}
		p.SSHKeyPath = setupFlagKey

	case setupFlagGenKey:
		keyPath, err := generateProfileKey(p)
		if err != nil {
			return err
		}
		p.SSHKeyPath = keyPath

	default:
		choice, err := ui.PromptSSHKeyOption()
		if err != nil {
			return fmt.Errorf("failed to read SSH key option: %w", err)
		}

		if strings.Contains(choice, "Generate new") {
			keyPath, err := generateProfileKey(p)
			if err != nil {
				return err
			}
			p.SSHKeyPath = keyPath
		} else {
			keyPath, err := ui.PromptExistingKeyPath(platform.GetExampleSSHKeyPath(p.ID))
			if err != nil {
				return fmt.Errorf("failed to read key path: %w", err)
			}
			if err := sshkey.Validate(keyPath); err != nil {
				ui.Warning(fmt.Sprintf("Key not usable yet: %v", err))
			} else {
				ui.Success(fmt.Sprintf("Using existing key: %s", keyPath))
			}
			p.SSHKeyPath = keyPath
		}
	}

	if err := store.Add(p); err != nil {
		return fmt.Errorf("failed to add profile: %w", err)
	}

	fmt.Println()
	ui.Success(fmt.Sprintf("Profile '%s' added", p.ID))
	fmt.Println()
	fmt.Printf("Next: gs %s\n", p.ID)

	return nil
}

// generateProfileKey creates a fresh key pair for the profile and prints
// the public half for upload to the Git host
func generateProfileKey(p profile.Profile) (string, error) {
	privateKey, _, err := sshkey.GenerateWithTool(platform.GetExampleSSHKeyPath(p.ID), p.GitEmail)
	if err != nil {
		return "", fmt.Errorf("failed to generate SSH key: %w", err)
	}
	ui.Success(fmt.Sprintf("SSH key generated: %s", privateKey))

	pubKeyContent, err := sshkey.PublicKey(privateKey)
	if err == nil {
		fmt.Println("\n" + strings.Repeat("-", 70))
		fmt.Println("Add this public key to your GitHub account:")
		fmt.Println("https://github.com/settings/keys")
		fmt.Println(strings.Repeat("-", 70))
		fmt.Print(pubKeyContent)
		fmt.Println(strings.Repeat("-", 70))
	}

	return privateKey, nil
}
