package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/internmatch/internal/catalog"
)

type companiesFilter struct {
	companies []string
	disabled  bool
	reason    string
	logger    *zap.Logger
}

// NewExcludedCompanies creates a filter that drops postings by company name.
func NewExcludedCompanies(companies []string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &companiesFilter{companies: companies, logger: logger}
	if len(companies) == 0 {
		f.Disable("no companies configured")
	}
	return f
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *companiesFilter) IsEnabled() bool { return !f.disabled }

func (f *companiesFilter) Validate() error { return nil }

func (f *companiesFilter) Apply(_ context.Context, c *catalog.Catalog) (*catalog.Catalog, Step, error) {
	initial := c.Len()

	excluded := c.Exclude(catalog.PostingCompanyField, f.companies)
	if len(excluded) > 0 {
		f.logger.Debug("excluding postings by company",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
