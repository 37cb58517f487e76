package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gswitch/gs/internal/platform"
	"github.com/gswitch/gs/internal/profile"
	"github.com/gswitch/gs/internal/ui"
)

var agentAll bool

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Load profile keys into the SSH agent",
	Long: `Add the active profile's SSH key to the running ssh-agent.

On Windows the ssh-agent service is started first if needed. Use --all to
load the keys of every configured profile.`,
	Example: `  gs agent
  gs agent --all`,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)

	agentCmd.Flags().BoolVar(&agentAll, "all", false, "Load the keys of all profiles")
}

func runAgent(cmd *cobra.Command, args []string) error {
	// Auto-initialize if needed
	if err := autoInit(); err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	var targets []profile.Profile
	if agentAll {
		targets = store.List()
		if len(targets) == 0 {
			return fmt.Errorf("no profiles configured yet\nRun: gs setup")
		}
	} else {
		active := store.Active()
		if active == "" {
			return fmt.Errorf("no active profile\nRun: gs <id>")
		}
		p := store.Find(active)
		if p == nil {
			return fmt.Errorf("%w: '%s'\nRun: gs list", profile.ErrNotFound, active)
		}
		targets = append(targets, *p)
	}

	if err := ensureAgentRunning(); err != nil {
		return err
	}

	added := 0
	for _, p := range targets {
		keyPath, err := platform.ExpandTilde(p.SSHKeyPath)
		if err != nil {
			keyPath = p.SSHKeyPath
		}

		out, err := exec.Command("ssh-add", keyPath).CombinedOutput()
		if err != nil {
			ui.Error(fmt.Sprintf("Failed to add key for '%s': %s", p.ID, strings.TrimSpace(string(out))))
			continue
		}
		ui.Success(fmt.Sprintf("Added key for '%s'", p.ID))
		added++
	}

	if added == 0 {
		return fmt.Errorf("no keys were added")
	}

	fmt.Println()
	fmt.Println("Loaded keys:")
	if out, err := exec.Command("ssh-add", "-l").Output(); err == nil {
		for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
			if line != "" {
				fmt.Println(" ", line)
			}
		}
	}

	return nil
}

// ensureAgentRunning verifies an agent is reachable, starting the service
// on Windows where that is possible
func ensureAgentRunning() error {
	if runtime.GOOS == "windows" {
		// May already be running or need admin rights; ignore errors
		exec.Command("powershell", "-Command", "Start-Service ssh-agent").Run()
		exec.Command("powershell", "-Command", "Set-Service -Name ssh-agent -StartupType Automatic").Run()
		return nil
	}

	if os.Getenv("SSH_AUTH_SOCK") == "" {
		return fmt.Errorf("ssh-agent is not running\nRun: eval $(ssh-agent)")
	}
	return nil
}
