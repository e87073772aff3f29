package catalog

import (
	"sort"
	"strings"
)

const (
	PostingIDField      = "ID"
	PostingCompanyField = "Company"
	PostingSectorField  = "Sector"
)

// skillSeparator splits the raw skills cell of a posting.
const skillSeparator = ";"

// EducationLevels lists the levels offered by the form layer.
// The scorer does not validate a profile against it.
var EducationLevels = []string{"10th", "12th", "Diploma", "UG", "PG", "PhD"}

// Posting is a single internship catalog entry. All values are kept as read
// from the tabular source.
type Posting struct {
	ID           string `mapstructure:"id" json:"id" yaml:"id"`
	Title        string `mapstructure:"title" json:"title,omitempty" yaml:"title,omitempty"`
	Company      string `mapstructure:"company" json:"company,omitempty" yaml:"company,omitempty"`
	Location     string `mapstructure:"location" json:"location,omitempty" yaml:"location,omitempty"`
	MinEducation string `mapstructure:"min_education" json:"min_education" yaml:"min_education"`
	Sector       string `mapstructure:"sector" json:"sector" yaml:"sector"`
	State        string `mapstructure:"state" json:"state" yaml:"state"`
	Remote       string `mapstructure:"remote" json:"remote" yaml:"remote"`
	Skills       string `mapstructure:"skills" json:"skills" yaml:"skills"`

	// Extra keeps every column the catalog carries beyond the known ones.
	Extra map[string]string `mapstructure:",remain" json:"extra,omitempty" yaml:"extra,omitempty"`
}

// SkillList splits the raw skills cell on ";" dropping blank entries.
func (p Posting) SkillList() []string {
	return ParseSkills(p.Skills)
}

// IsRemote reports whether the posting's remote flag is "yes".
func (p Posting) IsRemote() bool {
	return IsRemoteFlag(p.Remote)
}

// IsRemoteFlag reports whether a raw remote cell means "remote", which is
// only "yes" compared case-insensitively after trimming.
func IsRemoteFlag(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "yes")
}

// Place returns the state of the posting, falling back to its free-text location.
func (p Posting) Place() string {
	if p.State != "" {
		return p.State
	}
	return p.Location
}

// Clone returns a deep copy of the posting.
func (p Posting) Clone() Posting {
	if p.Extra != nil {
		extra := make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			extra[k] = v
		}
		p.Extra = extra
	}
	return p
}

func (p Posting) GetStringField(name string) string {
	switch name {
	case PostingIDField:
		return p.ID
	case PostingCompanyField:
		return p.Company
	case PostingSectorField:
		return p.Sector
	default:
		return ""
	}
}

// ParseSkills splits a ";" delimited skills string into trimmed, non-empty items.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, skillSeparator)
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		skills = append(skills, part)
	}
	return skills
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
