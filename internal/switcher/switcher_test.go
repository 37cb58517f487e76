package switcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gswitch/gs/internal/gitcfg"
	"github.com/gswitch/gs/internal/profile"
	"github.com/gswitch/gs/internal/sshcfg"
)

type fixture struct {
	store   *profile.Store
	git     *gitcfg.Config
	ssh     *sshcfg.Writer
	sw      *Switcher
	gitPath string
	sshPath string
}

// setup builds a switcher over real files in a temp directory, seeded
// with a work and a personal profile whose key files exist.
func setup(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	store := profile.NewStore(filepath.Join(dir, "profiles.json"))
	_, err := store.Load()
	require.NoError(t, err)

	for _, p := range []profile.Profile{workProfile(t, dir), personalProfile(t, dir)} {
		require.NoError(t, store.Add(p))
	}

	gitPath := filepath.Join(dir, "gitconfig")
	sshPath := filepath.Join(dir, "ssh_config")
	git := gitcfg.NewAt(gitPath)
	ssh := sshcfg.NewWriter(sshPath, "")

	return &fixture{
		store:   store,
		git:     git,
		ssh:     ssh,
		sw:      New(store, git, ssh),
		gitPath: gitPath,
		sshPath: sshPath,
	}
}

func workProfile(t *testing.T, dir string) profile.Profile {
	t.Helper()
	key := filepath.Join(dir, "key_work")
	require.NoError(t, os.WriteFile(key, []byte("work key"), 0600))
	return profile.Profile{
		ID:          "work",
		DisplayName: "Work",
		GitName:     "Alice W",
		GitEmail:    "alice@work.com",
		SSHKeyPath:  key,
	}
}

func personalProfile(t *testing.T, dir string) profile.Profile {
	t.Helper()
	key := filepath.Join(dir, "key_personal")
	require.NoError(t, os.WriteFile(key, []byte("personal key"), 0600))
	return profile.Profile{
		ID:          "personal",
		DisplayName: "Personal",
		GitName:     "Alice P",
		GitEmail:    "alice@home.com",
		SSHKeyPath:  key,
	}
}

func TestSwitchToAppliesProfile(t *testing.T) {
	f := setup(t)

	res, err := f.sw.SwitchTo("personal")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.NoError(t, res.GitErr)
	assert.NoError(t, res.SSHErr)
	assert.NoError(t, res.MarkerErr)

	name, email := f.git.Identity()
	assert.Equal(t, "Alice P", name)
	assert.Equal(t, "alice@home.com", email)

	keyPath, err := f.ssh.CurrentKeyPath()
	require.NoError(t, err)
	assert.Equal(t, f.store.Find("personal").SSHKeyPath, keyPath)

	assert.Equal(t, "personal", f.store.Active())
}

func TestSwitchToNotFound(t *testing.T) {
	f := setup(t)

	_, err := f.sw.SwitchTo("ghost")
	require.ErrorIs(t, err, profile.ErrNotFound)
}

func TestSwitchToRemovedProfile(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.store.Remove("work"))

	_, err := f.sw.SwitchTo("work")
	require.ErrorIs(t, err, profile.ErrNotFound)
	assert.Len(t, f.store.List(), 1)
}

func TestPartialFailureStillUpdatesGit(t *testing.T) {
	f := setup(t)

	broken := f.store.Find("personal")
	broken.SSHKeyPath = filepath.Join(t.TempDir(), "missing-key")
	require.NoError(t, f.store.Update("personal", *broken))

	res, err := f.sw.SwitchTo("personal")
	require.NoError(t, err)
	assert.Equal(t, OutcomeGitOnly, res.Outcome)
	assert.NoError(t, res.GitErr)
	assert.ErrorIs(t, res.SSHErr, sshcfg.ErrKeyPathInvalid)

	// The Git half went through and is not rolled back.
	name, email := f.git.Identity()
	assert.Equal(t, "Alice P", name)
	assert.Equal(t, "alice@home.com", email)

	// The marker only records full applies.
	assert.Empty(t, f.store.Active())
}

func TestApplyIdempotent(t *testing.T) {
	f := setup(t)

	_, err := f.sw.SwitchTo("work")
	require.NoError(t, err)
	gitFirst, err := os.ReadFile(f.gitPath)
	require.NoError(t, err)
	sshFirst, err := os.ReadFile(f.sshPath)
	require.NoError(t, err)

	_, err = f.sw.SwitchTo("work")
	require.NoError(t, err)
	gitSecond, err := os.ReadFile(f.gitPath)
	require.NoError(t, err)
	sshSecond, err := os.ReadFile(f.sshPath)
	require.NoError(t, err)

	assert.Equal(t, string(gitFirst), string(gitSecond))
	assert.Equal(t, string(sshFirst), string(sshSecond))
}

func TestSwitchBackAndForth(t *testing.T) {
	f := setup(t)

	_, err := f.sw.SwitchTo("work")
	require.NoError(t, err)
	_, err = f.sw.SwitchTo("personal")
	require.NoError(t, err)

	name, email := f.git.Identity()
	assert.Equal(t, "Alice P", name)
	assert.Equal(t, "alice@home.com", email)
	assert.Equal(t, "personal", f.store.Active())

	res, err := f.sw.SwitchTo("work")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, "work", f.store.Active())
}

func TestDetectActiveFromLiveConfig(t *testing.T) {
	f := setup(t)

	_, err := f.sw.SwitchTo("personal")
	require.NoError(t, err)

	id, exact := f.sw.DetectActive()
	assert.Equal(t, "personal", id)
	assert.True(t, exact)
}

func TestDetectActivePrefersLiveConfigOverMarker(t *testing.T) {
	f := setup(t)

	_, err := f.sw.SwitchTo("personal")
	require.NoError(t, err)

	// Someone edits the Git config behind our back; the files win over
	// the stale marker.
	require.NoError(t, f.git.SetIdentity("Alice W", "alice@work.com"))
	work := f.store.Find("work")
	require.NoError(t, f.ssh.Apply(*work))

	id, exact := f.sw.DetectActive()
	assert.Equal(t, "work", id)
	assert.True(t, exact)
	assert.Equal(t, "personal", f.store.Active(), "marker stays stale until the next switch")
}

func TestDetectActiveFallsBackToMarker(t *testing.T) {
	f := setup(t)

	_, err := f.sw.SwitchTo("personal")
	require.NoError(t, err)
	require.NoError(t, f.git.SetIdentity("Mallory", "mallory@elsewhere.com"))

	id, exact := f.sw.DetectActive()
	assert.Equal(t, "personal", id)
	assert.False(t, exact)
}

func TestDetectActiveReportsKeyDrift(t *testing.T) {
	f := setup(t)

	_, err := f.sw.SwitchTo("personal")
	require.NoError(t, err)

	// Keep the Git identity but point the managed block at another key.
	drifted := *f.store.Find("personal")
	drifted.SSHKeyPath = f.store.Find("work").SSHKeyPath
	require.NoError(t, f.ssh.Apply(drifted))

	id, exact := f.sw.DetectActive()
	assert.Equal(t, "personal", id)
	assert.False(t, exact)
}

func TestDetectActiveEmptyEverything(t *testing.T) {
	f := setup(t)

	id, exact := f.sw.DetectActive()
	assert.Empty(t, id)
	assert.False(t, exact)
}
