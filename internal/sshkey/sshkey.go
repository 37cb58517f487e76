package sshkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/gswitch/gs/internal/platform"
)

// Generate creates a new Ed25519 SSH key pair, writing the private key to
// path (OpenSSH format, 0600) and the public key next to it with a .pub
// suffix. It refuses to overwrite an existing key.
func Generate(path, comment string) (privateKeyPath, publicKeyPath string, err error) {
	privateKeyPath, err = platform.ExpandTilde(path)
	if err != nil {
		return "", "", err
	}
	publicKeyPath = privateKeyPath + ".pub"

	if err := platform.MkdirSecure(filepath.Dir(privateKeyPath)); err != nil {
		return "", "", fmt.Errorf("failed to create key directory: %w", err)
	}

	// Check if key already exists
	if _, err := os.Stat(privateKeyPath); err == nil {
		return "", "", fmt.Errorf("key already exists at %s", privateKeyPath)
	}

	// Generate Ed25519 key pair
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate key: %w", err)
	}

	sshPubKey, err := ssh.NewPublicKey(pubKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to convert public key: %w", err)
	}

	pemBlock, err := ssh.MarshalPrivateKey(privKey, comment)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal private key: %w", err)
	}
	if err := platform.CreateFileSecure(privateKeyPath, pem.EncodeToMemory(pemBlock)); err != nil {
		return "", "", fmt.Errorf("failed to write private key: %w", err)
	}

	// Public key line in the same shape ssh-keygen produces
	pub := strings.TrimRight(string(ssh.MarshalAuthorizedKey(sshPubKey)), "\n")
	if comment != "" {
		pub += " " + comment
	}
	pub += "\n"
	if err := os.WriteFile(publicKeyPath, []byte(pub), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write public key: %w", err)
	}

	return privateKeyPath, publicKeyPath, nil
}

// GenerateWithTool generates the key pair with the system ssh-keygen,
// which keeps the result compatible with agents and hardware tokens.
// Falls back to the built-in generator when ssh-keygen is not installed.
func GenerateWithTool(path, comment string) (privateKeyPath, publicKeyPath string, err error) {
	if !platform.HasCommand(platform.GetSSHKeygenPath()) {
		return Generate(path, comment)
	}

	privateKeyPath, err = platform.ExpandTilde(path)
	if err != nil {
		return "", "", err
	}
	publicKeyPath = privateKeyPath + ".pub"

	if err := platform.MkdirSecure(filepath.Dir(privateKeyPath)); err != nil {
		return "", "", fmt.Errorf("failed to create key directory: %w", err)
	}

	if _, err := os.Stat(privateKeyPath); err == nil {
		return "", "", fmt.Errorf("key already exists at %s", privateKeyPath)
	}

	cmd := exec.Command(platform.GetSSHKeygenPath(), "-t", "ed25519", "-f", privateKeyPath, "-N", "", "-C", comment)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", "", fmt.Errorf("ssh-keygen failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return privateKeyPath, publicKeyPath, nil
}

// Validate checks that the key path names an existing regular file
func Validate(path string) error {
	expanded, err := platform.ExpandTilde(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("key file does not exist: %s", expanded)
		}
		return fmt.Errorf("failed to access key file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", expanded)
	}
	return nil
}

// PublicKey returns the contents of the public key next to the private key
func PublicKey(privateKeyPath string) (string, error) {
	expanded, err := platform.ExpandTilde(privateKeyPath)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(expanded + ".pub")
	if err != nil {
		return "", fmt.Errorf("failed to read public key: %w", err)
	}
	return string(content), nil
}
