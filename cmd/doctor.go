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
	"github.com/gswitch/gs/internal/switcher"
	"github.com/gswitch/gs/internal/ui"
)

var (
	doctorNetwork bool
	doctorFix     bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Check gs configuration health and diagnose common issues.

Runs checks on:
- Profile store validity and permissions
- SSH key existence and permissions
- The managed SSH config block
- SSH agent status
- Live Git config alignment with the active profile

Examples:
  gs doctor            # Run basic diagnostics
  gs doctor --network  # Include Git host connectivity test
  gs doctor --fix      # Fix permissions and re-apply the active profile`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVarP(&doctorNetwork, "network", "n", false, "Test Git host SSH connectivity")
	doctorCmd.Flags().BoolVarP(&doctorFix, "fix", "f", false, "Fix permissions and re-apply the active profile")
}

type checkResult struct {
	passed  bool
	message string
	fix     string // Suggested fix command
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Println()
	fmt.Printf("Checking gs configuration (%s)...\n", platform.GetPlatformName())
	fmt.Println()

	errors := 0
	warnings := 0
	fixed := 0

	tally := func(results []checkResult) {
		for _, r := range results {
			printCheckResult(r)
			if !r.passed && r.fix == "" {
				errors++
			} else if !r.passed {
				warnings++
			}
		}
	}

	fmt.Println("Profile Store")
	fmt.Println("─────────────")

	store, storeResults, storeFixed := checkStore(doctorFix)
	tally(storeResults)
	fixed += storeFixed

	if store == nil {
		fmt.Println()
		ui.Error("Cannot continue without a readable profile store")
		return nil
	}

	sw, err := buildSwitcher(store)
	if err != nil {
		fmt.Println()
		ui.Error(fmt.Sprintf("Cannot load settings: %v", err))
		return nil
	}

	fmt.Println()
	fmt.Println("SSH Setup")
	fmt.Println("─────────")

	sshResults, sshFixed := checkSSHSetup(store, sw, doctorFix)
	tally(sshResults)
	fixed += sshFixed

	fmt.Println()
	fmt.Println("SSH Agent")
	fmt.Println("─────────")

	tally(checkAgent())

	fmt.Println()
	fmt.Println("Git Config")
	fmt.Println("──────────")

	gitResults, gitFixed := checkGitAlignment(store, sw, doctorFix)
	tally(gitResults)
	fixed += gitFixed

	if doctorNetwork {
		fmt.Println()
		fmt.Println("Git Host Connectivity")
		fmt.Println("─────────────────────")

		tally(checkConnectivity(sw))
	}

	fmt.Println()
	fmt.Println("─────────")

	if fixed > 0 {
		ui.Success(fmt.Sprintf("Auto-fixed %d issue(s)", fixed))
	}

	if errors == 0 && warnings == 0 {
		ui.Success("All checks passed!")
	} else if errors == 0 {
		ui.Warning(fmt.Sprintf("%d warning(s)", warnings))
	} else {
		ui.Error(fmt.Sprintf("%d error(s), %d warning(s)", errors, warnings))
	}

	return nil
}

func printCheckResult(r checkResult) {
	if r.passed {
		fmt.Printf("  ✓ %s\n", r.message)
	} else if r.fix != "" {
		fmt.Printf("  ⚠ %s\n", r.message)
		fmt.Printf("    → %s\n", r.fix)
	} else {
		fmt.Printf("  ✗ %s\n", r.message)
	}
}

func checkStore(autoFix bool) (*profile.Store, []checkResult, int) {
	var results []checkResult
	fixed := 0

	path, err := platform.GetProfilesPath()
	if err != nil {
		results = append(results, checkResult{
			passed:  false,
			message: fmt.Sprintf("Cannot determine store path: %v", err),
		})
		return nil, results, fixed
	}

	store := profile.NewStore(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		results = append(results, checkResult{
			passed:  false,
			message: "Profile store not found",
			fix:     "Run: gs setup",
		})
		return store, results, fixed
	}

	if _, err := store.Load(); err != nil {
		results = append(results, checkResult{
			passed:  false,
			message: fmt.Sprintf("Profile store invalid: %v", err),
		})
		return nil, results, fixed
	}

	results = append(results, checkResult{
		passed:  true,
		message: "Profile store valid",
	})

	ok, err := platform.CheckFilePermissions(path)
	if err == nil && !ok {
		if autoFix && platform.FixFilePermissions(path) == nil {
			results = append(results, checkResult{
				passed:  true,
				message: "Store permissions fixed (600)",
			})
			fixed++
		} else {
			results = append(results, checkResult{
				passed:  false,
				message: "Store readable by other users",
				fix:     platform.GetPermissionFixCommand(path),
			})
		}
	}

	profiles := store.List()
	if len(profiles) == 0 {
		results = append(results, checkResult{
			passed:  false,
			message: "No profiles configured",
			fix:     "Run: gs setup",
		})
	} else {
		results = append(results, checkResult{
			passed:  true,
			message: fmt.Sprintf("%d profile(s) configured", len(profiles)),
		})
	}

	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			results = append(results, checkResult{
				passed:  false,
				message: fmt.Sprintf("Profile '%s' invalid: %v", p.ID, err),
				fix:     fmt.Sprintf("Run: gs edit %s", p.ID),
			})
		}
	}

	if active := store.Active(); active != "" && store.Find(active) == nil {
		results = append(results, checkResult{
			passed:  false,
			message: fmt.Sprintf("Active marker '%s' has no matching profile", active),
		})
	}

	return store, results, fixed
}

func checkSSHSetup(store *profile.Store, sw *switcher.Switcher, autoFix bool) ([]checkResult, int) {
	var results []checkResult
	fixed := 0

	sshDir, err := platform.GetSSHDir()
	if err != nil {
		results = append(results, checkResult{
			passed:  false,
			message: fmt.Sprintf("Cannot determine SSH directory: %v", err),
		})
		return results, fixed
	}

	info, err := os.Stat(sshDir)
	if os.IsNotExist(err) {
		results = append(results, checkResult{
			passed:  false,
			message: "SSH directory does not exist",
			fix:     fmt.Sprintf("Run: mkdir -p %s && chmod 700 %s", sshDir, sshDir),
		})
		return results, fixed
	}

	if runtime.GOOS != "windows" && err == nil {
		mode := info.Mode().Perm()
		if mode != 0700 {
			if autoFix && os.Chmod(sshDir, 0700) == nil {
				results = append(results, checkResult{
					passed:  true,
					message: "SSH directory permissions fixed (700)",
				})
				fixed++
			} else {
				results = append(results, checkResult{
					passed:  false,
					message: fmt.Sprintf("SSH directory has wrong permissions (%o, should be 700)", mode),
					fix:     fmt.Sprintf("chmod 700 %s", sshDir),
				})
			}
		} else {
			results = append(results, checkResult{
				passed:  true,
				message: "SSH directory permissions OK (700)",
			})
		}
	}

	for _, p := range store.List() {
		keyPath, err := platform.ExpandTilde(p.SSHKeyPath)
		if err != nil {
			keyPath = p.SSHKeyPath
		}

		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			results = append(results, checkResult{
				passed:  false,
				message: fmt.Sprintf("SSH key missing for '%s': %s", p.ID, keyPath),
				fix:     fmt.Sprintf("Run: gs edit %s", p.ID),
			})
			continue
		}

		ok, err := platform.CheckFilePermissions(keyPath)
		if err != nil || ok {
			results = append(results, checkResult{
				passed:  true,
				message: fmt.Sprintf("SSH key '%s' exists with correct permissions", p.ID),
			})
			continue
		}

		if autoFix && platform.FixFilePermissions(keyPath) == nil {
			results = append(results, checkResult{
				passed:  true,
				message: fmt.Sprintf("SSH key '%s' permissions fixed (600)", p.ID),
			})
			fixed++
		} else {
			results = append(results, checkResult{
				passed:  false,
				message: fmt.Sprintf("SSH key '%s' readable by other users", p.ID),
				fix:     platform.GetPermissionFixCommand(keyPath),
			})
		}
	}

	has, err := sw.SSH().HasBlock()
	switch {
	case err != nil:
		results = append(results, checkResult{
			passed:  false,
			message: fmt.Sprintf("Cannot read SSH config: %v", err),
		})
	case has:
		results = append(results, checkResult{
			passed:  true,
			message: "SSH config has a managed block",
		})
	default:
		results = append(results, checkResult{
			passed:  false,
			message: "SSH config has no managed block",
			fix:     "Run: gs <id>",
		})
	}

	return results, fixed
}

func checkAgent() []checkResult {
	var results []checkResult

	authSock := os.Getenv("SSH_AUTH_SOCK")
	if authSock == "" {
		results = append(results, checkResult{
			passed:  false,
			message: "SSH agent not running (SSH_AUTH_SOCK not set)",
			fix:     "Run: eval $(ssh-agent)",
		})
		return results
	}

	if _, err := os.Stat(authSock); os.IsNotExist(err) {
		results = append(results, checkResult{
			passed:  false,
			message: "SSH agent socket missing",
			fix:     "Run: eval $(ssh-agent)",
		})
		return results
	}

	results = append(results, checkResult{
		passed:  true,
		message: "SSH agent running",
	})

	out, err := exec.Command("ssh-add", "-l").CombinedOutput()
	if err != nil {
		if strings.Contains(string(out), "no identities") {
			results = append(results, checkResult{
				passed:  false,
				message: "No keys loaded in SSH agent",
				fix:     "Run: gs agent",
			})
		} else {
			results = append(results, checkResult{
				passed:  false,
				message: "Could not list SSH agent keys",
			})
		}
	} else {
		lines := strings.Split(strings.TrimSpace(string(out)), "\n")
		results = append(results, checkResult{
			passed:  true,
			message: fmt.Sprintf("%d key(s) loaded in agent", len(lines)),
		})
	}

	return results
}

func checkGitAlignment(store *profile.Store, sw *switcher.Switcher, autoFix bool) ([]checkResult, int) {
	var results []checkResult
	fixed := 0

	id, exact := sw.DetectActive()
	if id == "" {
		results = append(results, checkResult{
			passed:  false,
			message: "Live config matches no profile",
			fix:     "Run: gs <id>",
		})
		return results, fixed
	}

	p := store.Find(id)
	if p == nil {
		results = append(results, checkResult{
			passed:  false,
			message: fmt.Sprintf("Active marker '%s' has no matching profile", id),
		})
		return results, fixed
	}

	if exact {
		results = append(results, checkResult{
			passed:  true,
			message: fmt.Sprintf("Live config matches '%s'", p.ID),
		})
		return results, fixed
	}

	if autoFix {
		res, err := sw.SwitchTo(p.ID)
		if err == nil && res.Outcome == switcher.OutcomeApplied {
			results = append(results, checkResult{
				passed:  true,
				message: fmt.Sprintf("Re-applied '%s'", p.ID),
			})
			fixed++
		} else {
			if err == nil {
				err = firstErr(res)
			}
			results = append(results, checkResult{
				passed:  false,
				message: fmt.Sprintf("Could not re-apply '%s': %v", p.ID, err),
			})
		}
		return results, fixed
	}

	results = append(results, checkResult{
		passed:  false,
		message: fmt.Sprintf("Live config drifted from '%s'", p.ID),
		fix:     fmt.Sprintf("Run: gs %s", p.ID),
	})
	return results, fixed
}

func checkConnectivity(sw *switcher.Switcher) []checkResult {
	var results []checkResult

	host := sw.SSH().Host()
	out, _ := exec.Command("ssh", "-T",
		"-o", "StrictHostKeyChecking=accept-new",
		"-o", "ConnectTimeout=10",
		fmt.Sprintf("git@%s", host)).CombinedOutput()

	// Git hosts close the session with a nonzero exit even on success,
	// so classify by output instead
	outputStr := string(out)
	switch {
	case strings.Contains(outputStr, "successfully authenticated"), strings.Contains(outputStr, "Hi "), strings.Contains(outputStr, "Welcome"):
		results = append(results, checkResult{
			passed:  true,
			message: fmt.Sprintf("%s: authenticated", host),
		})
	case strings.Contains(outputStr, "Permission denied"):
		results = append(results, checkResult{
			passed:  false,
			message: fmt.Sprintf("%s: permission denied", host),
			fix:     "Check the public key is added to your account",
		})
	default:
		results = append(results, checkResult{
			passed:  false,
			message: fmt.Sprintf("%s: connection failed", host),
		})
	}

	return results
}

// firstErr returns the error that stopped an apply
func firstErr(res switcher.Result) error {
	if res.GitErr != nil {
		return res.GitErr
	}
	return res.SSHErr
}
