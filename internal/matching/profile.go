// Package matching scores internship postings against a user profile and ranks
// a catalog into a shortlist with human-readable reasons.
package matching

// Profile is what a user tells us about themselves for one ranking request.
type Profile struct {
	Education string   `json:"education" yaml:"education"`
	Sector    string   `json:"sector" yaml:"sector"`
	State     string   `json:"state" yaml:"state"`
	RemoteOK  bool     `json:"remote" yaml:"remote"`
	Skills    []string `json:"skills" yaml:"skills"`
}

// SubScores holds the four normalized contributions, each in [0, 1].
type SubScores struct {
	Education float64 `json:"education" yaml:"education"`
	Skills    float64 `json:"skills" yaml:"skills"`
	Sector    float64 `json:"sector" yaml:"sector"`
	Location  float64 `json:"location" yaml:"location"`
}

// Result is the outcome of scoring one profile against one posting.
type Result struct {
	Score         float64   `json:"score" yaml:"score"`
	Reasons       []string  `json:"reasons" yaml:"reasons"`
	MatchedSkills []string  `json:"matched_skills" yaml:"matched_skills"`
	MatchedCount  int       `json:"matched_count" yaml:"matched_count"`
	Breakdown     SubScores `json:"breakdown" yaml:"breakdown"`
}
