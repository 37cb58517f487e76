package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestGetConfigDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir: %v", err)
	}
	if filepath.Base(dir) != "gs" {
		t.Errorf("dir = %q, want gs leaf", dir)
	}
	if filepath.Base(filepath.Dir(dir)) != "xdg" {
		t.Errorf("dir = %q, want under XDG_CONFIG_HOME", dir)
	}
}

func TestGetProfilesPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := GetProfilesPath()
	if err != nil {
		t.Fatalf("GetProfilesPath: %v", err)
	}
	if filepath.Base(path) != "profiles.json" {
		t.Errorf("path = %q, want profiles.json leaf", path)
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir: %v", err)
	}

	cases := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.ssh/id_ed25519", filepath.Join(home, ".ssh", "id_ed25519")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
		{"~user/path", "~user/path"},
	}
	for _, c := range cases {
		got, err := ExpandTilde(c.in)
		if err != nil {
			t.Fatalf("ExpandTilde(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWriteFileSecureAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	if err := WriteFileSecureAtomic(target, []byte("first")); err != nil {
		t.Fatalf("WriteFileSecureAtomic: %v", err)
	}
	if err := WriteFileSecureAtomic(target, []byte("second")); err != nil {
		t.Fatalf("WriteFileSecureAtomic overwrite: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(dir, ".gs-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(target)
		if err != nil {
			t.Fatalf("Stat: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("mode = %o, want 0600", info.Mode().Perm())
		}
	}
}

func TestCheckFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not applicable on windows")
	}

	dir := t.TempDir()
	loose := filepath.Join(dir, "loose")
	if err := os.WriteFile(loose, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ok, err := CheckFilePermissions(loose)
	if err != nil {
		t.Fatalf("CheckFilePermissions: %v", err)
	}
	if ok {
		t.Error("0644 file reported as secure")
	}

	if err := FixFilePermissions(loose); err != nil {
		t.Fatalf("FixFilePermissions: %v", err)
	}
	ok, err = CheckFilePermissions(loose)
	if err != nil {
		t.Fatalf("CheckFilePermissions after fix: %v", err)
	}
	if !ok {
		t.Error("fixed file still reported insecure")
	}
}
