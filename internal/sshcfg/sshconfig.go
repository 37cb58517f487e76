package sshcfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gswitch/gs/internal/platform"
	"github.com/gswitch/gs/internal/profile"
)

const (
	managedStart = "# ---- BEGIN GS MANAGED ----"
	managedEnd   = "# ---- END GS MANAGED ----"

	// DefaultHost is the Git hosting service the managed block targets
	DefaultHost = "github.com"
)

// Sentinel errors for SSH config failures, matched with errors.Is.
var (
	ErrWriteFailed    = errors.New("ssh config update failed")
	ErrKeyPathInvalid = errors.New("ssh key path invalid")
)

// Writer owns exactly one sentinel-delimited block in the SSH client
// config. Every byte outside that block is preserved as-is on rewrite.
type Writer struct {
	path string
	host string
}

// NewWriter creates a writer for the given SSH config path. An empty host
// selects DefaultHost.
func NewWriter(path, host string) *Writer {
	if host == "" {
		host = DefaultHost
	}
	return &Writer{path: path, host: host}
}

// Path returns the SSH config file path
func (w *Writer) Path() string {
	return w.path
}

// Host returns the host the managed block targets
func (w *Writer) Host() string {
	return w.host
}

// Apply rewrites the managed block so its IdentityFile points at the
// profile's SSH key. The key must resolve to an existing readable file:
// keys may be provisioned after profile creation, so this is checked here
// rather than at setup time. A missing block is appended at the end of
// the file, preceded by a blank line when the file is non-empty.
func (w *Writer) Apply(p profile.Profile) error {
	if err := validateKeyPath(p.SSHKeyPath); err != nil {
		return err
	}

	content, err := w.read()
	if err != nil {
		return err
	}

	return w.write(spliceBlock(content, w.renderBlock(p)))
}

// Remove deletes the managed block if present, leaving all other bytes
// untouched. Removing from a file without a block is a no-op.
func (w *Writer) Remove() error {
	content, err := w.read()
	if err != nil {
		return err
	}

	start, end, ok := blockBounds(content)
	if !ok {
		return nil
	}
	return w.write(content[:start] + content[end:])
}

// CurrentKeyPath returns the IdentityFile recorded in the managed block,
// or "" when no block exists.
func (w *Writer) CurrentKeyPath() (string, error) {
	content, err := w.read()
	if err != nil {
		return "", err
	}

	start, end, ok := blockBounds(content)
	if !ok {
		return "", nil
	}
	for _, line := range strings.Split(content[start:end], "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "IdentityFile ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "IdentityFile ")), nil
		}
	}
	return "", nil
}

// HasBlock reports whether the config currently contains a managed block
func (w *Writer) HasBlock() (bool, error) {
	content, err := w.read()
	if err != nil {
		return false, err
	}
	_, _, ok := blockBounds(content)
	return ok, nil
}

func (w *Writer) read() (string, error) {
	data, err := os.ReadFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: failed to read %s: %v", ErrWriteFailed, w.path, err)
	}
	return string(data), nil
}

func (w *Writer) write(content string) error {
	if err := platform.MkdirSecure(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := platform.WriteFileSecureAtomic(w.path, []byte(content)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// renderBlock generates the managed section for one profile
func (w *Writer) renderBlock(p profile.Profile) string {
	var b strings.Builder
	b.WriteString(managedStart + "\n")
	b.WriteString("# Managed by gs. Do not edit this section by hand.\n")
	b.WriteString(fmt.Sprintf("Host %s\n", w.host))
	b.WriteString(fmt.Sprintf("  HostName %s\n", w.host))
	b.WriteString("  User git\n")
	b.WriteString(fmt.Sprintf("  IdentityFile %s\n", platform.NormalizePathForSSHConfig(p.SSHKeyPath)))
	b.WriteString("  IdentitiesOnly yes\n")
	b.WriteString(managedEnd + "\n")
	return b.String()
}

// spliceBlock replaces the existing managed block with block, or appends
// block when none exists. All bytes outside the old block carry over
// verbatim.
func spliceBlock(content, block string) string {
	if start, end, ok := blockBounds(content); ok {
		return content[:start] + block + content[end:]
	}
	if content == "" {
		return block
	}
	if strings.HasSuffix(content, "\n") {
		return content + "\n" + block
	}
	return content + "\n\n" + block
}

// blockBounds returns the byte range [start, end) of the managed block,
// spanning whole lines from the begin sentinel through the end sentinel's
// trailing newline. A begin sentinel without a matching end claims the
// rest of the file, so a damaged block is reclaimed instead of duplicated.
func blockBounds(content string) (int, int, bool) {
	offset := 0
	start := -1
	for offset < len(content) {
		next := len(content)
		line := content[offset:]
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = offset + i + 1
		}

		trimmed := strings.TrimSpace(line)
		if start < 0 {
			if trimmed == managedStart {
				start = offset
			}
		} else if trimmed == managedEnd {
			return start, next, true
		}
		offset = next
	}
	if start >= 0 {
		return start, len(content), true
	}
	return 0, 0, false
}

// validateKeyPath checks that the key path names an existing readable file
func validateKeyPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path is empty", ErrKeyPathInvalid)
	}
	expanded, err := platform.ExpandTilde(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrKeyPathInvalid, path, err)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrKeyPathInvalid, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrKeyPathInvalid, path)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return fmt.Errorf("%w: %s is not readable: %v", ErrKeyPathInvalid, path, err)
	}
	f.Close()
	return nil
}
