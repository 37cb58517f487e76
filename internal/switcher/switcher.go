package switcher

import (
	"fmt"
	"path/filepath"

	"github.com/gswitch/gs/internal/gitcfg"
	"github.com/gswitch/gs/internal/platform"
	"github.com/gswitch/gs/internal/profile"
	"github.com/gswitch/gs/internal/sshcfg"
)

// Outcome classifies what an apply achieved
type Outcome int

const (
	// OutcomeFailed means the Git identity was not changed
	OutcomeFailed Outcome = iota
	// OutcomeGitOnly means the Git identity changed but the SSH config did not
	OutcomeGitOnly
	// OutcomeApplied means both artifacts reflect the profile
	OutcomeApplied
)

// String returns a short human-readable outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeGitOnly:
		return "git-only"
	default:
		return "failed"
	}
}

// Result reports per-artifact success of an apply, so the caller can tell
// the user exactly which half failed and that re-running is safe.
type Result struct {
	Profile   profile.Profile
	Outcome   Outcome
	GitErr    error
	SSHErr    error
	MarkerErr error // active marker persistence; never affects the outcome
}

// Switcher resolves which profile to apply and drives the two config
// writers.
type Switcher struct {
	store *profile.Store
	git   *gitcfg.Config
	ssh   *sshcfg.Writer
}

// New creates a switcher over the given store and writers
func New(store *profile.Store, git *gitcfg.Config, ssh *sshcfg.Writer) *Switcher {
	return &Switcher{store: store, git: git, ssh: ssh}
}

// Git returns the Git config accessor the switcher operates on
func (s *Switcher) Git() *gitcfg.Config {
	return s.git
}

// SSH returns the SSH config writer the switcher operates on
func (s *Switcher) SSH() *sshcfg.Writer {
	return s.ssh
}

// Apply writes the profile into the global Git config and the SSH config.
// The Git half runs first; when it fails the SSH half is not attempted.
// A Git success followed by an SSH failure is not rolled back: switching
// the commit identity alone is still useful, and re-running after fixing
// the cause converges because both writes are idempotent.
func (s *Switcher) Apply(p profile.Profile) Result {
	res := Result{Profile: p, Outcome: OutcomeFailed}

	if err := s.git.SetIdentity(p.GitName, p.GitEmail); err != nil {
		res.GitErr = err
		return res
	}
	res.Outcome = OutcomeGitOnly

	if err := s.ssh.Apply(p); err != nil {
		res.SSHErr = err
		return res
	}
	res.Outcome = OutcomeApplied
	return res
}

// SwitchTo looks up the profile and applies it. The active marker is
// recorded only on a fully applied outcome; a marker persistence failure
// lands in Result.MarkerErr since the switch itself already happened.
func (s *Switcher) SwitchTo(id string) (Result, error) {
	p := s.store.Find(id)
	if p == nil {
		return Result{}, fmt.Errorf("%w: '%s'", profile.ErrNotFound, id)
	}

	res := s.Apply(*p)
	if res.Outcome == OutcomeApplied {
		res.MarkerErr = s.store.SetActive(id)
	}
	return res, nil
}

// DetectActive reports which stored profile the live configuration
// currently encodes. The config files are authoritative: a profile whose
// name and email match the global Git identity wins over the stored
// marker, which is only consulted when nothing matches. exact is false
// when the answer comes from the marker or when the SSH key has drifted
// away from the matched profile.
func (s *Switcher) DetectActive() (id string, exact bool) {
	name, email := s.git.Identity()
	keyPath, _ := s.ssh.CurrentKeyPath()

	gitMatch := ""
	if name != "" || email != "" {
		for _, p := range s.store.List() {
			if p.GitName != name || p.GitEmail != email {
				continue
			}
			if keyPath == "" || samePath(keyPath, p.SSHKeyPath) {
				return p.ID, true
			}
			if gitMatch == "" {
				gitMatch = p.ID
			}
		}
	}
	if gitMatch != "" {
		return gitMatch, false
	}
	return s.store.Active(), false
}

// samePath compares two key paths after tilde expansion
func samePath(a, b string) bool {
	ea, err := platform.ExpandTilde(a)
	if err != nil {
		return a == b
	}
	eb, err := platform.ExpandTilde(b)
	if err != nil {
		return a == b
	}
	return filepath.Clean(ea) == filepath.Clean(eb)
}
