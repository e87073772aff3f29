package cmd

import (
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/spigell/internmatch/internal/catalog"
	"github.com/spigell/internmatch/internal/matching"
)

const promptAny = "(any)"

// selectValue asks the user to pick one of items. Choosing promptAny yields "".
func selectValue(label string, items []string) (string, error) {
	p := promptui.Select{
		Label: label,
		Items: append([]string{promptAny}, items...),
		Size:  10,
	}

	_, value, err := p.Run()
	if err != nil {
		return "", err
	}
	if value == promptAny {
		return "", nil
	}
	return value, nil
}

// completeProfile prompts for every profile field the flags left empty.
func completeProfile(profile *matching.Profile, c *catalog.Catalog, remoteSet bool) error {
	var err error

	if profile.Education == "" {
		if profile.Education, err = selectValue("Education", catalog.EducationLevels); err != nil {
			return err
		}
	}

	if profile.Sector == "" {
		if profile.Sector, err = selectValue("Preferred sector", c.Sectors()); err != nil {
			return err
		}
	}

	if profile.State == "" {
		if profile.State, err = selectValue("State", c.States()); err != nil {
			return err
		}
	}

	if !remoteSet {
		p := promptui.Select{
			Label: "Open to remote work?",
			Items: []string{PromptYes, PromptNo},
		}
		_, answer, err := p.Run()
		if err != nil {
			return err
		}
		profile.RemoteOK = answer == PromptYes
	}

	if len(profile.Skills) == 0 {
		p := promptui.Prompt{
			Label: "Skills (comma separated, e.g. " + strings.Join(firstN(c.Skills(), 3), ", ") + ")",
		}
		raw, err := p.Run()
		if err != nil {
			return err
		}
		profile.Skills = splitList(raw)
	}

	return nil
}

// splitList splits a comma or semicolon separated list into trimmed, non-empty items.
func splitList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
