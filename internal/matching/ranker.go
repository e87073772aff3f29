package matching

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/internmatch/internal/catalog"
)

// DefaultTopN is the shortlist size used when the caller does not pick one.
const DefaultTopN = 5

// ErrInvalidTopN is returned when a negative shortlist size is requested.
var ErrInvalidTopN = errors.New("invalid top-n")

// Match is a posting copy merged with its scoring result.
type Match struct {
	catalog.Posting `yaml:",inline"`
	Result          `yaml:",inline"`

	SkillList []string `json:"skill_list" yaml:"skill_list"`
}

// Ranker scores a whole catalog for one profile and keeps the best matches.
type Ranker struct {
	scorer      *Scorer
	parallelism int
	logger      *zap.Logger
}

type Option func(*Ranker)

// WithParallelism scores postings on up to n goroutines. Values below 2 keep
// scoring sequential.
func WithParallelism(n int) Option {
	return func(r *Ranker) {
		r.parallelism = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Ranker) {
		r.logger = logger
	}
}

func NewRanker(scorer *Scorer, opts ...Option) *Ranker {
	if scorer == nil {
		scorer = NewScorer(DefaultWeights())
	}

	r := &Ranker{scorer: scorer, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	return r
}

// Rank scores every posting against profile, orders them by score and then
// by matched skill count (both descending) and returns at most topN matches.
// Postings with equal keys keep their catalog order. postings is not modified.
func (r *Ranker) Rank(profile Profile, postings []catalog.Posting, topN int) ([]Match, error) {
	if topN < 0 {
		return nil, fmt.Errorf("%w: %d, must be >= 0", ErrInvalidTopN, topN)
	}

	matches := make([]Match, len(postings))
	if r.parallelism > 1 && len(postings) > 1 {
		var g errgroup.Group
		g.SetLimit(r.parallelism)
		for i := range postings {
			g.Go(func() error {
				matches[i] = r.match(profile, postings[i])
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range postings {
			matches[i] = r.match(profile, postings[i])
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].MatchedCount > matches[j].MatchedCount
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}

	r.logger.Debug("catalog ranked",
		zap.Int("postings", len(postings)),
		zap.Int("top_n", topN),
		zap.Int("returned", len(matches)),
	)

	return matches, nil
}

func (r *Ranker) match(profile Profile, posting catalog.Posting) Match {
	p := posting.Clone()
	skills := p.SkillList()
	return Match{
		Posting:   p,
		Result:    r.scorer.score(profile, p, skills),
		SkillList: skills,
	}
}
