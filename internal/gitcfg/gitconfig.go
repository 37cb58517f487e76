package gitcfg

import (
	"errors"
	"fmt"

	"github.com/gopasspw/gitconfig"
)

// ErrWriteFailed is returned when the global Git configuration cannot be
// updated, matched with errors.Is.
var ErrWriteFailed = errors.New("git config write failed")

// Config reads and writes the global Git identity through a parsed
// representation of the config file. Unrelated keys and sections survive
// every rewrite, and applying the same identity twice leaves the file
// unchanged.
type Config struct {
	path string // override of the global config location, "" for default
}

// New returns a Config using the standard global config resolution
// (~/.gitconfig or $XDG_CONFIG_HOME/git/config).
func New() *Config {
	return &Config{}
}

// NewAt returns a Config bound to a specific global config file
func NewAt(path string) *Config {
	return &Config{path: path}
}

func (c *Config) open() *gitconfig.Configs {
	cfgs := gitconfig.New()
	if c.path != "" {
		cfgs.GlobalConfig = c.path
	}
	cfgs.LoadAll("")
	return cfgs
}

// Identity returns the global user.name and user.email, empty when unset
func (c *Config) Identity() (name, email string) {
	cfgs := c.open()
	return cfgs.GetGlobal("user.name"), cfgs.GetGlobal("user.email")
}

// SetIdentity writes the global user.name and user.email
func (c *Config) SetIdentity(name, email string) error {
	cfgs := c.open()
	if err := cfgs.SetGlobal("user.name", name); err != nil {
		return fmt.Errorf("%w: user.name: %v", ErrWriteFailed, err)
	}
	if err := cfgs.SetGlobal("user.email", email); err != nil {
		return fmt.Errorf("%w: user.email: %v", ErrWriteFailed, err)
	}
	return nil
}
