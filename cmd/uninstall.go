package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gswitch/gs/internal/config"
	"github.com/gswitch/gs/internal/platform"
	"github.com/gswitch/gs/internal/sshcfg"
	"github.com/gswitch/gs/internal/ui"
)

var uninstallForce bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the managed SSH block and gs configuration",
	Long: `Prepare for removing gs by:
1. Deleting the managed block from your SSH config
2. Removing the gs configuration directory

Your global Git identity and your SSH key files are left as they are,
so commits and pushes keep working.`,
	Example: `  # Uninstall gs
  gs uninstall

  # After running this command, manually delete the binary:
  # Linux/macOS: sudo rm /usr/local/bin/gs
  # Windows: remove the install folder`,
	RunE: runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)

	uninstallCmd.Flags().BoolVar(&uninstallForce, "force", false, "Skip confirmation prompt")
}

func runUninstall(cmd *cobra.Command, args []string) error {
	fmt.Println("gs Uninstall")
	fmt.Println("============")
	fmt.Println()

	if !uninstallForce {
		fmt.Println("This will:")
		fmt.Println("  1. Remove the managed block from your SSH config")
		fmt.Println("  2. Remove the gs configuration directory")
		fmt.Println()
		fmt.Println("Your Git identity and SSH key files are not touched.")
		fmt.Println()

		confirmed, err := ui.PromptConfirmation("Continue?")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled")
			return nil
		}
		fmt.Println()
	}

	// A broken settings file must not block an uninstall
	settings, err := config.LoadDefault()
	if err != nil {
		ui.Warning(fmt.Sprintf("Could not read settings, using defaults: %v", err))
		settings = &config.Settings{}
	}

	fmt.Println("Step 1: Removing the managed SSH block...")
	sshPath, err := settings.ResolveSSHConfigPath()
	if err != nil {
		ui.Error(fmt.Sprintf("Cannot determine SSH config path: %v", err))
	} else if err := sshcfg.NewWriter(sshPath, settings.SSHHost).Remove(); err != nil {
		ui.Error(fmt.Sprintf("Failed to update SSH config: %v", err))
	} else {
		ui.Success("Managed block removed")
	}
	fmt.Println()

	fmt.Println("Step 2: Removing gs configuration...")
	configDir, err := platform.GetConfigDir()
	if err != nil {
		ui.Error(fmt.Sprintf("Cannot determine config directory: %v", err))
	} else if err := os.RemoveAll(configDir); err != nil {
		ui.Error(fmt.Sprintf("Failed to remove config: %v", err))
	} else {
		ui.Success(fmt.Sprintf("Removed %s", configDir))
	}
	fmt.Println()

	ui.Success("gs uninstall complete!")
	fmt.Println()
	fmt.Println("Your global Git identity was left unchanged.")
	fmt.Println()
	fmt.Println("Final step - manually remove the gs binary:")
	if runtime.GOOS == "windows" {
		fmt.Println("  Remove-Item \"$env:LOCALAPPDATA\\gs\" -Recurse -Force")
	} else {
		fmt.Println("  sudo rm /usr/local/bin/gs")
	}
	fmt.Println()

	return nil
}
