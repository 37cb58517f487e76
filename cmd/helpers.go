package cmd

import (
	"fmt"
	"log/slog"

	"github.com/gswitch/gs/internal/config"
	"github.com/gswitch/gs/internal/gitcfg"
	"github.com/gswitch/gs/internal/platform"
	"github.com/gswitch/gs/internal/profile"
	"github.com/gswitch/gs/internal/sshcfg"
	"github.com/gswitch/gs/internal/switcher"
	"github.com/gswitch/gs/internal/ui"
)

// autoInit creates the config directory if missing so every command works
// without a separate init step
func autoInit() error {
	dir, err := platform.GetConfigDir()
	if err != nil {
		return err
	}
	return platform.MkdirSecure(dir)
}

// openStore loads the profile store from its standard location
func openStore() (*profile.Store, error) {
	path, err := platform.GetProfilesPath()
	if err != nil {
		return nil, err
	}

	store := profile.NewStore(path)
	col, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	slog.Debug("profile store loaded", "path", path, "profiles", col.IDs())
	return store, nil
}

// buildSwitcher wires a switcher over the store, honoring path overrides
// from the settings file
func buildSwitcher(store *profile.Store) (*switcher.Switcher, error) {
	settings, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}

	gitPath, err := settings.ResolveGitConfigPath()
	if err != nil {
		return nil, err
	}
	git := gitcfg.New()
	if gitPath != "" {
		git = gitcfg.NewAt(gitPath)
	}

	sshPath, err := settings.ResolveSSHConfigPath()
	if err != nil {
		return nil, err
	}
	ssh := sshcfg.NewWriter(sshPath, settings.SSHHost)

	slog.Debug("switcher wired", "ssh_config", sshPath, "ssh_host", ssh.Host())
	return switcher.New(store, git, ssh), nil
}

// reportSwitch prints the outcome of an apply and turns anything short of
// a full switch into an error
func reportSwitch(res switcher.Result) error {
	p := res.Profile
	slog.Debug("apply finished", "profile", p.ID, "outcome", res.Outcome.String())

	switch res.Outcome {
	case switcher.OutcomeApplied:
		ui.Success(fmt.Sprintf("Switched to '%s' (%s <%s>)", p.ID, p.GitName, p.GitEmail))
		if res.MarkerErr != nil {
			ui.Warning(fmt.Sprintf("Could not record active profile: %v", res.MarkerErr))
		}
		return nil
	case switcher.OutcomeGitOnly:
		ui.Success(fmt.Sprintf("Git identity set to %s <%s>", p.GitName, p.GitEmail))
		ui.Warning("SSH config was not updated; the previous key mapping still applies")
		return fmt.Errorf("%w\nRun: gs %s", res.SSHErr, p.ID)
	default:
		return res.GitErr
	}
}
