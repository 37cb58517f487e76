package ui

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"github.com/gswitch/gs/internal/profile"
)

// PromptProfileInfo prompts for the identity fields of a profile.
// Defaults prefill each answer; pass a zero Profile for a fresh setup.
// The id is only asked for when askID is true, since ids are fixed after
// setup. The SSH key path is prompted separately.
func PromptProfileInfo(defaults profile.Profile, askID bool) (profile.Profile, error) {
	p := defaults

	if askID {
		idPrompt := &survey.Input{
			Message: "Profile id (e.g., work, personal):",
			Help:    "Short name used for switching - lowercase, no spaces",
			Default: defaults.ID,
		}
		idValidator := func(val interface{}) error {
			if str, ok := val.(string); ok {
				return profile.ValidateID(str)
			}
			return nil
		}
		if err := survey.AskOne(idPrompt, &p.ID, survey.WithValidator(survey.Required), survey.WithValidator(idValidator)); err != nil {
			return profile.Profile{}, err
		}
	}

	displayPrompt := &survey.Input{
		Message: "Display name:",
		Help:    "Label shown in listings (e.g., Work, Personal)",
		Default: defaults.DisplayName,
	}
	if err := survey.AskOne(displayPrompt, &p.DisplayName, survey.WithValidator(survey.Required)); err != nil {
		return profile.Profile{}, err
	}

	namePrompt := &survey.Input{
		Message: "Git user name:",
		Help:    "Name recorded on commits (e.g., Alice Smith)",
		Default: defaults.GitName,
	}
	if err := survey.AskOne(namePrompt, &p.GitName, survey.WithValidator(survey.Required)); err != nil {
		return profile.Profile{}, err
	}

	emailPrompt := &survey.Input{
		Message: "Git email:",
		Help:    "Email recorded on commits (e.g., alice@example.com)",
		Default: defaults.GitEmail,
	}
	emailValidator := func(val interface{}) error {
		if str, ok := val.(string); ok {
			return profile.ValidateEmail(str)
		}
		return nil
	}
	if err := survey.AskOne(emailPrompt, &p.GitEmail, survey.WithValidator(survey.Required), survey.WithValidator(emailValidator)); err != nil {
		return profile.Profile{}, err
	}

	return p, nil
}

// PromptSSHKeyOption prompts for how the profile's SSH key should be set up
func PromptSSHKeyOption() (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: "How do you want to set up the SSH key?",
		Options: []string{
			"Generate new key pair (Recommended)",
			"Use an existing key",
		},
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

// PromptExistingKeyPath prompts for the path to an SSH private key
func PromptExistingKeyPath(defaultPath string) (string, error) {
	var path string
	prompt := &survey.Input{
		Message: "Path to SSH private key:",
		Help:    "Private key used for this profile (e.g., ~/.ssh/id_ed25519)",
		Default: defaultPath,
	}
	if err := survey.AskOne(prompt, &path, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return path, nil
}

// SelectProfile asks the user to pick one of the configured profiles and
// returns its id. The active profile is labelled in the option list.
func SelectProfile(profiles []profile.Profile, activeID, message string) (string, error) {
	options := make([]string, 0, len(profiles))
	for _, p := range profiles {
		label := fmt.Sprintf("%s (%s)", p.ID, p.GitEmail)
		if p.ID == activeID {
			label += " [active]"
		}
		options = append(options, label)
	}

	var choice string
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}

	for i, opt := range options {
		if opt == choice {
			return profiles[i].ID, nil
		}
	}
	return "", fmt.Errorf("no profile selected")
}

// PromptConfirmation prompts for yes/no confirmation
func PromptConfirmation(message string) (bool, error) {
	var confirmed bool
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}
