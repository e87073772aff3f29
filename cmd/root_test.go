package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/internmatch/internal/catalog"
	"github.com/spigell/internmatch/internal/matching"
)

const sampleCSV = `id,title,company,min_education,sector,state,remote,skills
1,Backend intern,Acme,UG,IT Services,Karnataka,no,python;sql;excel
2,Data intern,Globex,PG,Finance,Goa,yes,sql;excel
3,Design intern,Initech,Diploma,Media,Delhi,no,figma
`

func newTestViper(t *testing.T, yamlConfig string) *viper.Viper {
	t.Helper()

	v := viper.New()
	setDefaults(v)
	if yamlConfig != "" {
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(yamlConfig)))
	}
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := loadConfig(newTestViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "internships.csv", config.Catalog.Path)
	assert.Equal(t, matching.DefaultTopN, config.Ranking.TopN)
	assert.Equal(t, matching.DefaultWeights(), config.Ranking.Weights)
	assert.Equal(t, ":5000", config.Server.Listen)
	assert.True(t, config.Server.Metrics)
	assert.False(t, config.Notes.Enabled)
}

func TestLoadConfigFromYAML(t *testing.T) {
	config, err := loadConfig(newTestViper(t, `
catalog:
  url: https://example.com/internships.csv
ranking:
  top-n: 10
  parallelism: 4
  weights:
    education: 0.1
    skills: 0.6
    sector: 0.2
    location: 0.1
exclude:
  companies: [Acme, Globex]
exclude-file: excluded.json
`))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/internships.csv", config.Catalog.URL)
	assert.Equal(t, 10, config.Ranking.TopN)
	assert.Equal(t, 4, config.Ranking.Parallelism)
	assert.Equal(t, 0.6, config.Ranking.Weights.Skills)
	assert.Equal(t, []string{"Acme", "Globex"}, config.Exclude.Companies)
	assert.Equal(t, "excluded.json", config.ExcludeFile)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config string
		expect string
	}{
		{name: "negative top-n", config: "ranking:\n  top-n: -1\n", expect: "TopN"},
		{name: "weights do not sum", config: "ranking:\n  weights:\n    education: 0.9\n", expect: "must sum to 1.0"},
		{name: "weight out of range", config: "ranking:\n  weights:\n    skills: 1.5\n", expect: "Skills"},
		{name: "bad listen", config: "server:\n  listen: nowhere\n", expect: "Listen"},
		{name: "bad url", config: "catalog:\n  url: not a url\n", expect: "URL"},
		{name: "no catalog", config: "catalog:\n  path: \"\"\n", expect: "Path"},
		{name: "notes retries", config: "notes:\n  enabled: true\n  gemini:\n    max-retries: 50\n", expect: "MaxRetries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(newTestViper(t, tt.config))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expect)
		})
	}
}

func TestPrepareService(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "internships.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	config, err := loadConfig(newTestViper(t, "catalog:\n  path: "+path+"\nexclude:\n  companies: [Globex]\n"))
	require.NoError(t, err)

	service, err := prepareService(context.Background(), config, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, service.Catalog().Len())

	matches, err := service.Recommend(context.Background(), "test", matching.Profile{Skills: []string{"sql"}}, nil)
	require.NoError(t, err)
	for _, m := range matches {
		assert.NotEqual(t, "Globex", m.Company)
	}
}

func TestNewAdvisorDisabled(t *testing.T) {
	adv, err := newAdvisor(context.Background(), &NotesConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, adv)
}

func TestNewAdvisorMissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := newAdvisor(context.Background(), &NotesConfig{Enabled: true, Gemini: &GeminiConfig{}}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini api key is not configured")
}

func TestProfileFromFlags(t *testing.T) {
	cmd := &cobra.Command{}
	addProfileFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--education", "UG",
		"--sector", "IT",
		"--remote",
		"--skills", "Python, SQL",
		"--skills", "excel;go",
	}))

	profile, err := profileFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, matching.Profile{
		Education: "UG",
		Sector:    "IT",
		RemoteOK:  true,
		Skills:    []string{"Python", "SQL", "excel", "go"},
	}, profile)
}

func TestAppendToExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")
	matches := []matching.Match{
		{Posting: catalog.Posting{ID: "1", Title: "Backend intern", Company: "Acme"}},
	}

	require.NoError(t, appendToExcludeFile(path, matches))
	require.NoError(t, appendToExcludeFile(path, []matching.Match{{Posting: catalog.Posting{ID: "2"}}}))

	excluded, err := catalog.LoadExcluded(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, excluded.IDs())
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, "internmatch version: unknown (commit none)\n", buf.String())
}

func TestPrepareFiltersSkip(t *testing.T) {
	config, err := loadConfig(newTestViper(t, "exclude:\n  companies: [Globex]\nskip-filters: [companies]\n"))
	require.NoError(t, err)

	filters, err := prepareFilters(config, zap.NewNop())
	require.NoError(t, err)

	for _, status := range filters.Describe() {
		assert.False(t, status.Enabled, status.Name)
	}
	assert.Equal(t, "skipped by configuration", filters.Describe()[0].Reason)

	c, err := catalog.Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	filtered, err := filters.Run(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 3, filtered.Len())
}

func TestSkipFiltersValidated(t *testing.T) {
	_, err := loadConfig(newTestViper(t, "skip-filters: [unknown]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SkipFilters")
}
