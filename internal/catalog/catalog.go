// Package catalog holds the static internship catalog: postings loaded once at
// startup and shared read-only with every ranking request.
package catalog

import (
	"strings"
)

type Catalog struct {
	Items []Posting
}

// New wraps the given postings. The slice is owned by the catalog afterwards.
func New(items []Posting) *Catalog {
	return &Catalog{Items: items}
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Postings returns a copy of the catalog entries in their original order.
func (c *Catalog) Postings() []Posting {
	if c == nil {
		return nil
	}
	out := make([]Posting, len(c.Items))
	for i, p := range c.Items {
		out[i] = p.Clone()
	}
	return out
}

// Clone returns an independent catalog that can be narrowed without touching c.
func (c *Catalog) Clone() *Catalog {
	return &Catalog{Items: c.Postings()}
}

func (c *Catalog) FindByID(id string) *Posting {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// Exclude removes every posting whose field matches one of targets
// (case-insensitive) and returns the removed IDs. Order of the rest is kept.
func (c *Catalog) Exclude(field string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	drop := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			drop[t] = struct{}{}
		}
	}

	var excluded []string
	kept := c.Items[:0]
	for _, p := range c.Items {
		if _, ok := drop[strings.ToLower(strings.TrimSpace(p.GetStringField(field)))]; ok {
			excluded = append(excluded, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	c.Items = kept

	return excluded
}

// Sectors returns the sorted set of non-empty sectors in the catalog.
func (c *Catalog) Sectors() []string {
	set := make(map[string]struct{})
	for _, p := range c.Items {
		if s := strings.TrimSpace(p.Sector); s != "" {
			set[s] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Skills returns the sorted vocabulary of skills mentioned by any posting.
func (c *Catalog) Skills() []string {
	set := make(map[string]struct{})
	for _, p := range c.Items {
		for _, s := range p.SkillList() {
			set[s] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// States returns the sorted set of non-empty states in the catalog.
func (c *Catalog) States() []string {
	set := make(map[string]struct{})
	for _, p := range c.Items {
		if s := strings.TrimSpace(p.State); s != "" {
			set[s] = struct{}{}
		}
	}
	return sortedKeys(set)
}
