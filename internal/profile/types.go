package profile

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// idPattern keeps ids usable as bare command arguments and SSH key suffixes.
var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

var (
	idRules    = []validation.Rule{validation.Required, validation.Match(idPattern).Error("must be lowercase letters, digits, '.', '_' or '-'")}
	emailRules = []validation.Rule{validation.Required, is.Email}
)

// ValidateID checks a single id value against the profile id rules.
func ValidateID(id string) error {
	return validation.Validate(id, idRules...)
}

// ValidateEmail checks a single email value against the profile email rules.
func ValidateEmail(email string) error {
	return validation.Validate(email, emailRules...)
}

// Profile represents a Git identity
type Profile struct {
	ID          string `json:"id"` // Short name for switching (e.g., work, personal)
	DisplayName string `json:"display_name"`
	GitName     string `json:"git_user_name"`
	GitEmail    string `json:"git_user_email"`
	SSHKeyPath  string `json:"ssh_key_path"`
}

// Validate checks structural validity of the profile fields. The SSH key
// path only has to be non-empty here; whether the file exists is checked
// when the profile is applied.
func (p Profile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, idRules...),
		validation.Field(&p.DisplayName, validation.Required),
		validation.Field(&p.GitName, validation.Required),
		validation.Field(&p.GitEmail, emailRules...),
		validation.Field(&p.SSHKeyPath, validation.Required),
	)
}

// Collection is the persisted profile document. Profiles keep their
// insertion order; Active holds the id of the last fully applied profile
// and is display state only.
type Collection struct {
	Version  int       `json:"version"`
	Active   string    `json:"active"`
	Profiles []Profile `json:"profiles"`
}

// NewCollection creates a new empty collection
func NewCollection() *Collection {
	return &Collection{
		Version:  StoreVersion,
		Active:   "",
		Profiles: []Profile{},
	}
}

// Find returns the profile with the given id, or nil
func (c *Collection) Find(id string) *Profile {
	for i := range c.Profiles {
		if c.Profiles[i].ID == id {
			return &c.Profiles[i]
		}
	}
	return nil
}

// IDs returns the profile ids in stored order
func (c *Collection) IDs() []string {
	ids := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		ids = append(ids, p.ID)
	}
	return ids
}
