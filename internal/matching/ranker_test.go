package matching

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/internmatch/internal/catalog"
)

func testCatalog() []catalog.Posting {
	return []catalog.Posting{
		{ID: "low", MinEducation: "PhD", Sector: "Finance", State: "Goa", Remote: "no", Skills: "excel"},
		{ID: "tie-a", MinEducation: "UG", Sector: "IT", State: "Kerala", Remote: "no", Skills: "python;sql"},
		{ID: "best", MinEducation: "UG", Sector: "IT Services", State: "Karnataka", Remote: "no", Skills: "python;sql;excel"},
		{ID: "tie-b", MinEducation: "UG", Sector: "IT", State: "Kerala", Remote: "no", Skills: "python;sql"},
		{ID: "remote", MinEducation: "PG", Sector: "Media", State: "Delhi", Remote: "yes", Skills: " python ; ; design"},
	}
}

func testProfile() Profile {
	return Profile{Education: "UG", Sector: "IT", State: "Karnataka", Skills: []string{"Python", "SQL"}}
}

func ids(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.ID)
	}
	return out
}

func TestRankOrdersAndTruncates(t *testing.T) {
	ranker := NewRanker(NewScorer(DefaultWeights()))

	matches, err := ranker.Rank(testProfile(), testCatalog(), 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"tie-a", "tie-b", "best"}, ids(matches))
	assert.Equal(t, 90.0, matches[0].Score)
	assert.Equal(t, []string{"python", "sql"}, matches[0].SkillList)
}

func TestRankOrderingIsNonIncreasing(t *testing.T) {
	matches, err := NewRanker(nil).Rank(testProfile(), testCatalog(), DefaultTopN)
	require.NoError(t, err)
	require.Len(t, matches, 5)

	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		if prev.Score == cur.Score {
			assert.GreaterOrEqual(t, prev.MatchedCount, cur.MatchedCount)
			continue
		}
		assert.Greater(t, prev.Score, cur.Score)
	}
}

func TestRankTieBreakOnMatchedCount(t *testing.T) {
	postings := []catalog.Posting{
		{ID: "one-skill", MinEducation: "UG", Skills: "go"},
		{ID: "two-skills", MinEducation: "UG", Skills: "go;rust;c;java"},
	}
	profile := Profile{Education: "UG", Skills: []string{"go", "rust"}}

	// Only education counts, so both score 100 and matched count decides.
	ranker := NewRanker(NewScorer(Weights{Education: 1}))
	matches, err := ranker.Rank(profile, postings, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"two-skills", "one-skill"}, ids(matches))
	assert.Equal(t, matches[0].Score, matches[1].Score)
}

func TestRankLengthIsMinOfTopNAndCatalog(t *testing.T) {
	ranker := NewRanker(nil)
	for _, topN := range []int{0, 1, 5, 10} {
		t.Run(fmt.Sprintf("top-%d", topN), func(t *testing.T) {
			matches, err := ranker.Rank(testProfile(), testCatalog(), topN)
			require.NoError(t, err)
			assert.Len(t, matches, min(topN, len(testCatalog())))
		})
	}

	matches, err := ranker.Rank(testProfile(), nil, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRankNegativeTopN(t *testing.T) {
	_, err := NewRanker(nil).Rank(testProfile(), testCatalog(), -1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTopN))
}

func TestRankDoesNotMutateCatalog(t *testing.T) {
	postings := testCatalog()
	postings[0].Extra = map[string]string{"stipend": "5000"}
	before := testCatalog()
	before[0].Extra = map[string]string{"stipend": "5000"}

	matches, err := NewRanker(nil).Rank(testProfile(), postings, 5)
	require.NoError(t, err)

	for i := range matches {
		matches[i].Sector = "mutated"
		if matches[i].Extra != nil {
			matches[i].Extra["stipend"] = "0"
		}
	}

	assert.Equal(t, before, postings)
}

func TestRankIdempotentAndParallelEquivalent(t *testing.T) {
	var postings []catalog.Posting
	for i := 0; i < 200; i++ {
		base := testCatalog()[i%5]
		base.ID = fmt.Sprintf("%s-%d", base.ID, i)
		postings = append(postings, base)
	}

	sequential := NewRanker(NewScorer(DefaultWeights()))
	parallel := NewRanker(NewScorer(DefaultWeights()), WithParallelism(8))

	first, err := sequential.Rank(testProfile(), postings, 50)
	require.NoError(t, err)
	second, err := sequential.Rank(testProfile(), postings, 50)
	require.NoError(t, err)
	concurrent, err := parallel.Rank(testProfile(), postings, 50)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, concurrent)
}

func TestRankLogs(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	ranker := NewRanker(nil, WithLogger(zap.New(core)))

	_, err := ranker.Rank(testProfile(), testCatalog(), 2)
	require.NoError(t, err)

	entries := observed.FilterMessage("catalog ranked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["returned"])
}

func TestReportBySector(t *testing.T) {
	matches, err := NewRanker(nil).Rank(testProfile(), testCatalog(), 5)
	require.NoError(t, err)

	report := ReportBySector(matches)
	assert.Len(t, report["IT"], 2)
	assert.Len(t, report["Media"], 1)
	assert.Equal(t, "90.0", report["IT"][0]["score"])
	assert.Len(t, Postings(matches), 5)
}

func TestDumpToTmpFile(t *testing.T) {
	matches, err := NewRanker(nil).Rank(testProfile(), testCatalog(), 2)
	require.NoError(t, err)

	name, err := DumpToTmpFile(matches)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(name) })

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var decoded []Match
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ids(matches), ids(decoded))
}
