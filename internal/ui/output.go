package ui

import (
	"fmt"
	"os"

	"github.com/gswitch/gs/internal/profile"
)

// PrintProfilesList prints the configured profiles in a formatted way.
// The active id gets an arrow indicator; the marker is informational only.
func PrintProfilesList(profiles []profile.Profile, activeID string) {
	if len(profiles) == 0 {
		fmt.Println("No profiles configured yet.")
		fmt.Println("\nAdd your first profile with: gs setup")
		return
	}

	fmt.Println("\nConfigured profiles:")
	fmt.Println()

	for _, p := range profiles {
		indicator := " "
		if p.ID == activeID {
			indicator = "→"
		}

		fmt.Printf("%s %-16s %-30s %s\n",
			indicator,
			p.ID,
			p.GitEmail,
			p.DisplayName,
		)
	}

	fmt.Println()
	if activeID == "" {
		fmt.Println("No active profile set. Use 'gs <id>' to switch to one.")
	}
}

// Success prints a success message with checkmark
func Success(message string) {
	fmt.Printf("✓ %s\n", message)
}

// Error prints an error message to stderr
func Error(message string) {
	fmt.Fprintf(os.Stderr, "✗ %s\n", message)
}

// Info prints an info message
func Info(message string) {
	fmt.Printf("ℹ %s\n", message)
}

// Warning prints a warning message to stderr
func Warning(message string) {
	fmt.Fprintf(os.Stderr, "⚠ %s\n", message)
}
