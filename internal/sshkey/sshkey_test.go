package sshkey

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestGenerate(t *testing.T) {
	priv, pub, err := Generate(filepath.Join(t.TempDir(), "gs_work"), "work@gs")
	require.NoError(t, err)

	privData, err := os.ReadFile(priv)
	require.NoError(t, err)
	_, err = ssh.ParsePrivateKey(privData)
	assert.NoError(t, err, "generated private key must parse as an OpenSSH key")

	pubData, err := os.ReadFile(pub)
	require.NoError(t, err)
	line := strings.TrimSpace(string(pubData))
	assert.True(t, strings.HasPrefix(line, "ssh-ed25519 "), "public key line: %q", line)
	assert.True(t, strings.HasSuffix(line, " work@gs"), "public key comment missing: %q", line)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(priv)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestGenerateCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "keys", "gs_work")

	priv, _, err := Generate(path, "work@gs")
	require.NoError(t, err)

	_, err = os.Stat(priv)
	assert.NoError(t, err)
}

func TestGenerateRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gs_work")

	_, _, err := Generate(path, "work@gs")
	require.NoError(t, err)

	_, _, err = Generate(path, "work@gs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	key := filepath.Join(dir, "key")
	require.NoError(t, os.WriteFile(key, []byte("material"), 0600))

	assert.NoError(t, Validate(key))

	err := Validate(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	err = Validate(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestPublicKey(t *testing.T) {
	priv, _, err := Generate(filepath.Join(t.TempDir(), "gs_work"), "work@gs")
	require.NoError(t, err)

	content, err := PublicKey(priv)
	require.NoError(t, err)
	assert.Contains(t, content, "ssh-ed25519")

	_, err = PublicKey(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
