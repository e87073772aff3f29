package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/internmatch/internal/catalog"
	"github.com/spigell/internmatch/internal/matching"
)

type stubGenerator struct {
	responses  []string
	errs       []error
	calls      int
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	idx := s.calls
	s.calls++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	return "", errors.New("no response queued")
}

func sampleMatch(t *testing.T) (matching.Profile, matching.Match) {
	t.Helper()

	profile := matching.Profile{Education: "UG", Sector: "IT", State: "Goa", Skills: []string{"python"}}
	matches, err := matching.NewRanker(nil).Rank(profile, []catalog.Posting{{
		ID:           "p1",
		Title:        "Data Intern",
		Company:      "Acme",
		MinEducation: "UG",
		Sector:       "IT",
		State:        "Goa",
		Skills:       "python;sql",
	}}, 1)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}

	return profile, matches[0]
}

func TestNote(t *testing.T) {
	stub := &stubGenerator{responses: []string{"```text\nI have used Python daily.\n```"}}
	core, observed := observer.New(zapcore.DebugLevel)
	adv := New(stub, 0, 0, zap.New(core))

	profile, match := sampleMatch(t)
	note, err := adv.Note(context.Background(), profile, match)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if note != "I have used Python daily." {
		t.Fatalf("unexpected note: %q", note)
	}

	if !strings.Contains(stub.lastPrompt, `"company": "Acme"`) {
		t.Fatalf("expected match payload in prompt, got: %s", stub.lastPrompt)
	}

	if !strings.Contains(stub.lastPrompt, `"education": "UG"`) {
		t.Fatalf("expected profile payload in prompt")
	}

	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("expected every placeholder to be replaced")
	}

	if len(observed.FilterMessage("note response").All()) != 1 {
		t.Fatalf("expected response to be logged")
	}
}

func TestNoteRetries(t *testing.T) {
	stub := &stubGenerator{
		errs:      []error{errors.New("quota exceeded"), nil},
		responses: []string{"", "Second try."},
	}
	adv := New(stub, 2, 0, zap.NewNop())
	adv.retryDelay = 0

	profile, match := sampleMatch(t)
	note, err := adv.Note(context.Background(), profile, match)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note != "Second try." || stub.calls != 2 {
		t.Fatalf("unexpected note %q after %d calls", note, stub.calls)
	}
}

func TestNoteGivesUp(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubGenerator{errs: []error{boom, boom}}
	adv := New(stub, 1, 0, nil)
	adv.retryDelay = 0

	profile, match := sampleMatch(t)
	_, err := adv.Note(context.Background(), profile, match)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom error, got %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", stub.calls)
	}
}

func TestNoteEmptyResponse(t *testing.T) {
	adv := New(&stubGenerator{responses: []string{"```\n```"}}, 0, 0, nil)

	profile, match := sampleMatch(t)
	if _, err := adv.Note(context.Background(), profile, match); err == nil {
		t.Fatalf("expected error for empty note")
	}
}

func TestNilAdvisor(t *testing.T) {
	var adv *Advisor
	if _, err := adv.Note(context.Background(), matching.Profile{}, matching.Match{}); err == nil {
		t.Fatalf("expected error for nil advisor")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}

	var g *Generator
	if g.Model() != "" {
		t.Fatalf("expected empty model for nil generator")
	}
}
