// Package recommend ties the catalog, filters and ranker together into the
// single operation both the CLI and the HTTP server expose.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/internmatch/internal/catalog"
	"github.com/spigell/internmatch/internal/filtering"
	"github.com/spigell/internmatch/internal/logger"
	"github.com/spigell/internmatch/internal/matching"
	"github.com/spigell/internmatch/internal/metrics"
)

type Service struct {
	catalog     *catalog.Catalog
	filters     *filtering.Filtering
	ranker      *matching.Ranker
	defaultTopN int
	logger      *zap.Logger
}

type Deps struct {
	Catalog *catalog.Catalog
	Filters *filtering.Filtering
	Ranker  *matching.Ranker
	Logger  *zap.Logger
}

// New builds the service. A negative defaultTopN is rejected the same way a
// negative per-request value is.
func New(deps Deps, defaultTopN int) (*Service, error) {
	if deps.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if defaultTopN < 0 {
		return nil, fmt.Errorf("%w: default %d, must be >= 0", matching.ErrInvalidTopN, defaultTopN)
	}
	if deps.Filters == nil {
		deps.Filters = filtering.New(nil, deps.Logger)
	}
	if deps.Ranker == nil {
		deps.Ranker = matching.NewRanker(nil)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	metrics.CatalogPostings.Set(float64(deps.Catalog.Len()))

	return &Service{
		catalog:     deps.Catalog,
		filters:     deps.Filters,
		ranker:      deps.Ranker,
		defaultTopN: defaultTopN,
		logger:      deps.Logger,
	}, nil
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Service) DefaultTopN() int {
	return s.defaultTopN
}

func (s *Service) Filters() []filtering.Status {
	return s.filters.Describe()
}

// Recommend returns the best topN postings for profile. A nil topN uses the
// configured default. source labels the metrics ("cli", "form", "api").
func (s *Service) Recommend(ctx context.Context, source string, profile matching.Profile, topN *int) ([]matching.Match, error) {
	n := s.defaultTopN
	if topN != nil {
		n = *topN
	}

	metrics.RankRequests.WithLabelValues(source).Inc()
	start := time.Now()

	candidates, err := s.filters.Run(ctx, s.catalog)
	if err != nil {
		metrics.RankErrors.WithLabelValues(source, "filter").Inc()
		return nil, fmt.Errorf("filtering catalog: %w", err)
	}

	matches, err := s.ranker.Rank(profile, candidates.Items, n)
	if err != nil {
		reason := "rank"
		if errors.Is(err, matching.ErrInvalidTopN) {
			reason = "invalid_top_n"
		}
		metrics.RankErrors.WithLabelValues(source, reason).Inc()
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RankDuration.WithLabelValues(source).Observe(elapsed.Seconds())

	fields := append(logger.ProfileFields(profile.Education, profile.Sector, profile.State),
		zap.String("source", source),
		zap.Bool("remote", profile.RemoteOK),
		zap.Int("skills", len(profile.Skills)),
		zap.Int("candidates", candidates.Len()),
		zap.Int("results", len(matches)),
		zap.Duration("took", elapsed),
	)
	s.logger.Info("recommendations ready", fields...)

	return matches, nil
}
