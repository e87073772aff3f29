package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/spigell/internmatch/internal/matching"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var outputFormats = []string{outputTable, outputJSON, outputYAML}

type rankOutput struct {
	Profile matching.Profile  `json:"profile" yaml:"profile"`
	Results []matching.Match  `json:"results" yaml:"results"`
	Notes   map[string]string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func writeOutput(w io.Writer, format string, out rankOutput) error {
	switch format {
	case outputTable:
		return writeTable(w, out)
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q, expected one of %s", format, strings.Join(outputFormats, ", "))
	}
}

func writeTable(w io.Writer, out rankOutput) error {
	if len(out.Results) == 0 {
		_, err := fmt.Fprintln(w, "No matching internships.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tID\tTITLE\tCOMPANY\tSECTOR\tPLACE\tREMOTE\tREASONS")
	for i, m := range out.Results {
		remote := "no"
		if m.IsRemote() {
			remote = "yes"
		}
		fmt.Fprintf(tw, "%d\t%.1f\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, m.Score, m.ID, m.Title, m.Company, m.Sector, m.Place(), remote,
			strings.Join(m.Reasons, "; "),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, m := range out.Results {
		note, ok := out.Notes[m.ID]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n--- %s (%s)\n%s\n", m.ID, m.Title, note); err != nil {
			return err
		}
	}

	return nil
}
