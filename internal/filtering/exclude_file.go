package filtering

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/internmatch/internal/catalog"
)

type excludeFileFilter struct {
	path     string
	disabled bool
	reason   string
	logger   *zap.Logger
}

// NewExcludeFile creates a filter that removes postings listed in the exclude file.
func NewExcludeFile(path string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &excludeFileFilter{path: strings.TrimSpace(path), logger: logger}
	if f.path == "" {
		f.Disable("exclude file is not set")
	}
	return f
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludeFileFilter) IsEnabled() bool { return !f.disabled }

// Validate accepts a missing file: it is created on the first dismissal.
func (f *excludeFileFilter) Validate() error {
	stat, err := os.Stat(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if stat.IsDir() {
		return fmt.Errorf("exclude file %q is a directory", f.path)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, c *catalog.Catalog) (*catalog.Catalog, Step, error) {
	initial := c.Len()

	excluded, err := catalog.LoadExcluded(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded postings from file: %w", err)
	}

	removed := c.Exclude(catalog.PostingIDField, excluded.IDs())
	if len(removed) > 0 {
		f.logger.Debug("excluding postings based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_postings", removed),
			zap.Int("postings_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
