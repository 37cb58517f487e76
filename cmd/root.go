package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gswitch/gs/internal/profile"
	"github.com/gswitch/gs/internal/ui"
)

var rootVerbose bool

// version is stamped at build time via -ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "gs [profile]",
	Short: "Switch between Git identity profiles",
	Long: `gs switches your global Git identity between named profiles.

A profile bundles the commit name, email and SSH key of one account.
Switching rewrites user.name and user.email in the global Git config plus
a single managed block in ~/.ssh/config; everything outside that block is
left exactly as it was.`,
	Example: `  gs           # pick a profile interactively
  gs work      # switch to the 'work' profile
  gs setup     # add a profile`,
	Args:    cobra.MaximumNArgs(1),
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if rootVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
	RunE:         runSwitch,
	SilenceUsage: true,
}

// Execute runs the root command. Called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable verbose logging")
}

func runSwitch(cmd *cobra.Command, args []string) error {
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
		id, err = ui.SelectProfile(profiles, store.Active(), "Switch to profile:")
		if err != nil {
			return err
		}
	}

	p := store.Find(id)
	if p == nil {
		return fmt.Errorf("%w: '%s'\nRun: gs list", profile.ErrNotFound, id)
	}

	sw, err := buildSwitcher(store)
	if err != nil {
		return err
	}

	fmt.Printf("Switching to: %s (%s)\n", p.ID, p.GitEmail)

	res, err := sw.SwitchTo(id)
	if err != nil {
		return err
	}
	return reportSwitch(res)
}
