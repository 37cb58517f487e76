package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gswitch/gs/internal/platform"
	"github.com/gswitch/gs/internal/profile"
	"github.com/gswitch/gs/internal/switcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the live identity and the matching profile",
	Long: `Display the current identity status including:
- The profiles on record and the active marker
- The live global Git identity
- The SSH key mapped by the managed config block
- Which profile the live configuration matches

The live config files are authoritative; the stored marker is only a
memo of the last completed switch.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	// Auto-initialize if needed
	if err := autoInit(); err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	sw, err := buildSwitcher(store)
	if err != nil {
		return err
	}

	printStoreStatus(store)
	printGitStatus(sw)
	printSSHStatus(sw)
	printMatchStatus(store, sw)
	fmt.Println()

	return nil
}

func printStoreStatus(store *profile.Store) {
	fmt.Println()
	fmt.Println("Profiles")
	fmt.Println("────────")

	profiles := store.List()
	if len(profiles) == 0 {
		fmt.Println("  No profiles configured")
		fmt.Println("  Run 'gs setup' to add one")
		return
	}

	fmt.Printf("  Configured:    %d\n", len(profiles))
	if store.Active() == "" {
		fmt.Println("  Active marker: (none)")
	} else {
		fmt.Printf("  Active marker: %s\n", store.Active())
	}
}

func printGitStatus(sw *switcher.Switcher) {
	fmt.Println()
	fmt.Println("Git Identity")
	fmt.Println("────────────")

	name, email := sw.Git().Identity()
	if name == "" && email == "" {
		fmt.Println("  No global user.name / user.email set")
		return
	}

	fmt.Printf("  Name:  %s\n", name)
	fmt.Printf("  Email: %s\n", email)
}

func printSSHStatus(sw *switcher.Switcher) {
	fmt.Println()
	fmt.Println("SSH Config")
	fmt.Println("──────────")

	w := sw.SSH()
	has, err := w.HasBlock()
	if err != nil {
		fmt.Printf("  Could not read %s: %v\n", w.Path(), err)
		return
	}
	if !has {
		fmt.Printf("  No managed block in %s\n", w.Path())
		return
	}

	fmt.Printf("  Managed host: %s\n", w.Host())

	keyPath, _ := w.CurrentKeyPath()
	if keyPath == "" {
		fmt.Println("  Managed block present, no IdentityFile entry")
		return
	}

	keyStatus := "✓"
	if expanded, err := platform.ExpandTilde(keyPath); err == nil {
		if _, err := os.Stat(expanded); os.IsNotExist(err) {
			keyStatus = "✗ (missing)"
		}
	}
	fmt.Printf("  Key: %s %s\n", keyPath, keyStatus)
}

func printMatchStatus(store *profile.Store, sw *switcher.Switcher) {
	fmt.Println()
	fmt.Println("Match")
	fmt.Println("─────")

	id, exact := sw.DetectActive()
	if id == "" {
		fmt.Println("  Live config does not match any profile")
		return
	}

	p := store.Find(id)
	if p == nil {
		fmt.Printf("  Active marker points at '%s', which no longer exists\n", id)
		return
	}

	if exact {
		fmt.Printf("  ✓ Live config matches '%s' (%s)\n", p.ID, p.DisplayName)
		return
	}

	fmt.Printf("  ⚠ Closest profile: '%s'\n", p.ID)

	name, email := sw.Git().Identity()
	keyPath, _ := sw.SSH().CurrentKeyPath()
	if name != p.GitName || email != p.GitEmail {
		fmt.Printf("    Git identity is %s <%s>, profile has %s <%s>\n", name, email, p.GitName, p.GitEmail)
	} else if keyPath != "" {
		fmt.Printf("    SSH key is %s, profile has %s\n", keyPath, p.SSHKeyPath)
	}
	fmt.Printf("\n  Re-apply with: gs %s\n", p.ID)
}
