package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// GetConfigDir returns the gs configuration directory. XDG_CONFIG_HOME is
// honored when set; otherwise ~/.config/gs is used on every platform.
func GetConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gs"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gs"), nil
}

// GetProfilesPath returns the profile store file path
func GetProfilesPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles.json"), nil
}

// GetSettingsPath returns the optional settings file path
func GetSettingsPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// GetSSHDir returns the SSH directory path for the current platform
func GetSSHDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ssh"), nil
}

// GetSSHConfigPath returns the SSH config file path for the current platform
func GetSSHConfigPath() (string, error) {
	sshDir, err := GetSSHDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(sshDir, "config"), nil
}

// MkdirSecure creates a directory with appropriate permissions for the platform
func MkdirSecure(path string) error {
	if runtime.GOOS == "windows" {
		// Windows doesn't use Unix permissions
		return os.MkdirAll(path, 0755)
	}
	// Unix/Linux: use restrictive permissions
	return os.MkdirAll(path, 0700)
}

// CreateFileSecure creates a file with appropriate permissions for the platform
func CreateFileSecure(path string, data []byte) error {
	if runtime.GOOS == "windows" {
		// Windows doesn't use Unix permissions
		return os.WriteFile(path, data, 0644)
	}
	// Unix/Linux: use restrictive permissions
	return os.WriteFile(path, data, 0600)
}

// WriteFileSecureAtomic writes a file with secure permissions through a
// sibling temp file and a rename, so a crash mid-write never leaves a
// truncated or partially-written target.
func WriteFileSecureAtomic(path string, data []byte) error {
	perm := os.FileMode(0600)
	if runtime.GOOS == "windows" {
		perm = 0644
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".gs-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	success = true
	return nil
}

// CheckFilePermissions checks if a file has secure permissions (Unix only)
// Returns true if permissions are OK, false if they need fixing
func CheckFilePermissions(path string) (bool, error) {
	if runtime.GOOS == "windows" {
		// Windows doesn't use Unix permissions, always return true
		return true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	mode := info.Mode()
	// Check if other users can read/write (0077)
	if mode&0077 != 0 {
		return false, nil
	}
	return true, nil
}

// FixFilePermissions sets secure permissions on a file (Unix only)
func FixFilePermissions(path string) error {
	if runtime.GOOS == "windows" {
		// Windows doesn't use Unix permissions, no-op
		return nil
	}
	return os.Chmod(path, 0600)
}

// GetPermissionFixCommand returns the appropriate command to fix file permissions
func GetPermissionFixCommand(path string) string {
	if runtime.GOOS == "windows" {
		return "File permissions are not applicable on Windows"
	}
	return fmt.Sprintf("chmod 600 %s", path)
}

// HasCommand checks if a command is available in PATH
func HasCommand(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// ExpandTilde expands ~ to home directory in path
func ExpandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if len(path) == 1 {
		return home, nil
	}

	// Handle ~/rest/of/path
	if path[1] == os.PathSeparator || path[1] == '/' {
		return filepath.Join(home, path[2:]), nil
	}

	return path, nil
}

// GetSSHKeygenPath returns the path or command name for ssh-keygen
func GetSSHKeygenPath() string {
	return "ssh-keygen"
}

// NormalizePathForSSHConfig converts a path to forward slashes for SSH config
// SSH config files expect forward slashes even on Windows
func NormalizePathForSSHConfig(path string) string {
	if runtime.GOOS == "windows" {
		return filepath.ToSlash(path)
	}
	return path
}

// GetPlatformName returns a user-friendly platform name
func GetPlatformName() string {
	switch runtime.GOOS {
	case "windows":
		return "Windows"
	case "darwin":
		return "macOS"
	case "linux":
		return "Linux"
	default:
		return runtime.GOOS
	}
}

// GetExampleSSHKeyPath returns an example SSH key path for a profile id
func GetExampleSSHKeyPath(id string) string {
	sshDir, err := GetSSHDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return fmt.Sprintf("%%USERPROFILE%%\\.ssh\\gs_%s", id)
		}
		return fmt.Sprintf("~/.ssh/gs_%s", id)
	}
	return filepath.Join(sshDir, fmt.Sprintf("gs_%s", id))
}
