package sshcfg

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gswitch/gs/internal/profile"
)

func writeKey(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("key material"), 0600))
	return path
}

func keyProfile(t *testing.T, id string) profile.Profile {
	t.Helper()
	return profile.Profile{
		ID:          id,
		DisplayName: id,
		GitName:     "Test " + id,
		GitEmail:    id + "@example.com",
		SSHKeyPath:  writeKey(t, "id_"+id),
	}
}

func TestApplyCreatesFile(t *testing.T) {
	sshDir := filepath.Join(t.TempDir(), ".ssh")
	w := NewWriter(filepath.Join(sshDir, "config"), "")
	p := keyProfile(t, "work")

	require.NoError(t, w.Apply(p))

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, w.renderBlock(p), content)
	assert.Contains(t, content, "Host github.com")
	assert.Contains(t, content, "IdentityFile "+p.SSHKeyPath)
	assert.Contains(t, content, "IdentitiesOnly yes")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(w.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestApplyAppendsAfterExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	seed := "Host example.com\n    User bob\n"
	require.NoError(t, os.WriteFile(path, []byte(seed), 0600))

	w := NewWriter(path, "")
	p := keyProfile(t, "work")
	require.NoError(t, w.Apply(p))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, seed+"\n"+w.renderBlock(p), string(data))
}

func TestApplyAppendsAfterUnterminatedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	seed := "Host example.com\n    User bob"
	require.NoError(t, os.WriteFile(path, []byte(seed), 0600))

	w := NewWriter(path, "")
	p := keyProfile(t, "work")
	require.NoError(t, w.Apply(p))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, seed+"\n\n"+w.renderBlock(p), string(data))
}

func TestApplyReplacesOnlyManagedBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	w := NewWriter(path, "")
	old := keyProfile(t, "old")
	next := keyProfile(t, "next")

	// Odd spacing and a CRLF line must survive the rewrite untouched.
	prefix := "# personal hosts\r\nHost example.com\n    User bob\n\n\n"
	suffix := "\nHost  spaced.example.com   \n\tUser weird\n"
	require.NoError(t, os.WriteFile(path, []byte(prefix+w.renderBlock(old)+suffix), 0600))

	require.NoError(t, w.Apply(next))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, prefix+w.renderBlock(next)+suffix, string(data))
}

func TestApplyIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	seed := "Host example.com\n    User bob\n"
	require.NoError(t, os.WriteFile(path, []byte(seed), 0600))

	w := NewWriter(path, "")
	p := keyProfile(t, "work")

	require.NoError(t, w.Apply(p))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, w.Apply(p))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestApplySwitchesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	w := NewWriter(path, "")
	work := keyProfile(t, "work")
	personal := keyProfile(t, "personal")

	require.NoError(t, w.Apply(work))
	require.NoError(t, w.Apply(personal))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), managedStart))

	got, err := w.CurrentKeyPath()
	require.NoError(t, err)
	assert.Equal(t, personal.SSHKeyPath, got)
}

func TestApplyMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	w := NewWriter(path, "")
	p := keyProfile(t, "work")
	p.SSHKeyPath = filepath.Join(t.TempDir(), "does-not-exist")

	err := w.Apply(p)
	require.ErrorIs(t, err, ErrKeyPathInvalid)

	// The config file must not be touched on a failed apply.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestApplyKeyPathIsDirectory(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "config"), "")
	p := keyProfile(t, "work")
	p.SSHKeyPath = t.TempDir()

	err := w.Apply(p)
	require.ErrorIs(t, err, ErrKeyPathInvalid)
}

func TestApplyCustomHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	w := NewWriter(path, "gitlab.com")
	p := keyProfile(t, "work")

	require.NoError(t, w.Apply(p))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Host gitlab.com")
	assert.Contains(t, string(data), "HostName gitlab.com")
	assert.NotContains(t, string(data), "github.com")
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	w := NewWriter(path, "")
	p := keyProfile(t, "work")

	prefix := "Host example.com\n    User bob\n\n"
	suffix := "\nHost other.example.com\n    User carol\n"
	require.NoError(t, os.WriteFile(path, []byte(prefix+w.renderBlock(p)+suffix), 0600))

	require.NoError(t, w.Remove())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, prefix+suffix, string(data))

	// Removing again is a no-op.
	require.NoError(t, w.Remove())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, prefix+suffix, string(data))
}

func TestRemoveMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	w := NewWriter(path, "")

	require.NoError(t, w.Remove())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "Remove must not create the file")
}

func TestCurrentKeyPathNoBlock(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "config"), "")

	got, err := w.CurrentKeyPath()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDamagedBlockReclaimed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	w := NewWriter(path, "")
	p := keyProfile(t, "work")

	// A begin sentinel whose end marker was lost claims the rest of the
	// file, so re-applying repairs it instead of stacking a second block.
	prefix := "Host example.com\n    User bob\n\n"
	damaged := prefix + managedStart + "\nHost github.com\n  IdentityFile /old\n"
	require.NoError(t, os.WriteFile(path, []byte(damaged), 0600))

	require.NoError(t, w.Apply(p))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, prefix+w.renderBlock(p), string(data))
}

func TestHasBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	w := NewWriter(path, "")

	ok, err := w.HasBlock()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, w.Apply(keyProfile(t, "work")))

	ok, err = w.HasBlock()
	require.NoError(t, err)
	assert.True(t, ok)
}
