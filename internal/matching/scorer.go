package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spigell/internmatch/internal/catalog"
)

// Scorer turns a (profile, posting) pair into a 0-100 score with reasons.
// It holds no state besides its weights and is safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer returns a scorer using w. Zero weights fall back to DefaultWeights.
func NewScorer(w Weights) *Scorer {
	if w.IsZero() {
		w = DefaultWeights()
	}
	return &Scorer{weights: w}
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score computes the match between profile and a single posting.
func (s *Scorer) Score(profile Profile, posting catalog.Posting) Result {
	return s.score(profile, posting, posting.SkillList())
}

func (s *Scorer) score(profile Profile, posting catalog.Posting, postingSkills []string) Result {
	skills, matched := SkillScore(profile.Skills, postingSkills)
	sub := SubScores{
		Education: EducationScore(profile.Education, posting.MinEducation),
		Skills:    skills,
		Sector:    SectorScore(profile.Sector, posting.Sector),
		Location:  LocationScore(profile.State, posting.State, profile.RemoteOK, posting.Remote),
	}

	var reasons []string
	if len(matched) > 0 {
		reasons = append(reasons, "Skills matched: "+strings.Join(matched, ", "))
	}
	if sub.Sector > 0 {
		reasons = append(reasons, fmt.Sprintf("Sector matches (%s)", posting.Sector))
	}
	if sub.Location > 0 {
		reasons = append(reasons, fmt.Sprintf("Location OK (%s)", posting.Place()))
	}
	reasons = append(reasons, fmt.Sprintf("Education similarity: %d%%", int(math.RoundToEven(sub.Education*100))))

	if matched == nil {
		matched = []string{}
	}

	return Result{
		Score:         roundTo(s.weights.combine(sub)*100, 1),
		Reasons:       reasons,
		MatchedSkills: matched,
		MatchedCount:  len(matched),
		Breakdown:     sub,
	}
}

// EducationScore compares education strings by length only. It does not know
// that "PhD" outranks "UG"; two levels of equal length score 1.0.
func EducationScore(userEdu, postingEdu string) float64 {
	u := utf8.RuneCountInString(userEdu)
	p := utf8.RuneCountInString(postingEdu)

	longest := max(u, p, 1)
	diff := u - p
	if diff < 0 {
		diff = -diff
	}

	return math.Max(0, 1-float64(diff)/float64(longest))
}

// SkillScore returns the share of posting skills the user has, and the
// matched skills in ascending order. Both sides are trimmed and lowercased.
func SkillScore(userSkills, postingSkills []string) (float64, []string) {
	want := normalizeSet(postingSkills)
	if len(want) == 0 {
		return 0, nil
	}

	have := normalizeSet(userSkills)
	var matched []string
	for skill := range have {
		if _, ok := want[skill]; ok {
			matched = append(matched, skill)
		}
	}
	sort.Strings(matched)

	return float64(len(matched)) / float64(len(want)), matched
}

// SectorScore is 1.0 when the user's sector is contained in the posting's sector.
func SectorScore(userSector, postingSector string) float64 {
	user := normalize(userSector)
	if user == "" {
		return 0
	}
	if strings.Contains(normalize(postingSector), user) {
		return 1
	}
	return 0
}

// LocationScore is 1.0 when either side is remote or both states are equal.
func LocationScore(userState, postingState string, userRemote bool, postingRemote string) float64 {
	if userRemote || catalog.IsRemoteFlag(postingRemote) {
		return 1
	}

	user, posting := normalize(userState), normalize(postingState)
	if user == "" || posting == "" {
		return 0
	}
	if user == posting {
		return 1
	}
	return 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item = normalize(item); item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
