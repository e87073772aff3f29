package matching

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spigell/internmatch/internal/catalog"
)

// ReportBySector groups ranked matches by posting sector for a quick overview.
func ReportBySector(matches []Match) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, m := range matches {
		key := m.Sector
		if strings.TrimSpace(key) == "" {
			key = "(no sector)"
		}
		report[key] = append(report[key], map[string]string{
			"id":      m.ID,
			"title":   m.Title,
			"company": m.Company,
			"place":   m.Place(),
			"score":   fmt.Sprintf("%.1f", m.Score),
			"reasons": strings.Join(m.Reasons, "; "),
		})
	}
	return report
}

// Postings returns the posting part of every match.
func Postings(matches []Match) []catalog.Posting {
	out := make([]catalog.Posting, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Posting)
	}
	return out
}

// DumpToTmpFile writes matches as indented JSON to a new temporary file and
// returns its name.
func DumpToTmpFile(matches []Match) (string, error) {
	file, err := os.CreateTemp("", "internships_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(matches); err != nil {
		return "", err
	}
	return file.Name(), nil
}
