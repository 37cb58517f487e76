package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/gswitch/gs/internal/platform"
)

// Settings holds the optional tool settings from config.toml. Every field
// has a zero-value default, so a missing file is fully usable.
type Settings struct {
	SSHHost       string `toml:"ssh_host"`        // host of the managed SSH block, default github.com
	SSHConfigPath string `toml:"ssh_config_path"` // override of ~/.ssh/config
	GitConfigPath string `toml:"git_config_path"` // override of the global git config location
}

// Validate checks the settings fields that have a constrained format
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.SSHHost, is.Host),
	)
}

// Load reads the settings file at path. A missing file is not an error
// and yields the defaults.
func Load(path string) (*Settings, error) {
	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &s, nil
		}
		return nil, fmt.Errorf("failed to decode settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return &s, nil
}

// LoadDefault reads the settings from the standard location
func LoadDefault() (*Settings, error) {
	path, err := platform.GetSettingsPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// ResolveSSHConfigPath returns the SSH config path to operate on,
// honoring the override from the settings file.
func (s *Settings) ResolveSSHConfigPath() (string, error) {
	if s.SSHConfigPath != "" {
		return platform.ExpandTilde(s.SSHConfigPath)
	}
	return platform.GetSSHConfigPath()
}

// ResolveGitConfigPath returns the global Git config override, or "" to
// use the standard resolution.
func (s *Settings) ResolveGitConfigPath() (string, error) {
	if s.GitConfigPath == "" {
		return "", nil
	}
	return platform.ExpandTilde(s.GitConfigPath)
}
