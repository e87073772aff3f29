// Package advisor drafts application notes for shortlisted postings with an
// LLM. It only reads ranking results and never changes a score.
package advisor

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/internmatch/internal/matching"
	"github.com/spigell/internmatch/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed note_prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	defaultRetryDelay   = time.Second
	maxRetryDelay       = 30 * time.Second
)

type Advisor struct {
	generator  contentGenerator
	logger     *zap.Logger
	maxLogLen  int
	maxRetries int
	retryDelay time.Duration
}

func New(generator contentGenerator, maxRetries, maxLogLength int, logger *zap.Logger) *Advisor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Advisor{
		generator:  generator,
		logger:     logger,
		maxLogLen:  maxLogLength,
		maxRetries: maxRetries,
		retryDelay: defaultRetryDelay,
	}
}

// Note drafts an application note for match on behalf of profile.
func (a *Advisor) Note(ctx context.Context, profile matching.Profile, match matching.Match) (string, error) {
	if a == nil || a.generator == nil {
		return "", errors.New("advisor is not configured")
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile payload: %w", err)
	}

	matchJSON, err := json.MarshalIndent(notePayload(match), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal match payload: %w", err)
	}

	prompt := buildPrompt(string(profileJSON), string(matchJSON))

	a.logger.Debug("note request",
		zap.String("posting_id", match.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	var raw string
	for attempt := 0; ; attempt++ {
		raw, err = a.generator.GenerateContent(ctx, prompt)
		if err == nil {
			break
		}
		if attempt >= a.maxRetries || ctx.Err() != nil {
			return "", fmt.Errorf("generate note for posting %s: %w", match.ID, err)
		}

		delay := utils.Backoff(attempt, a.retryDelay, maxRetryDelay)
		a.logger.Warn("note generation failed, retrying",
			zap.String("posting_id", match.ID),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := utils.WaitFor(ctx, delay); err != nil {
			return "", err
		}
	}

	a.logger.Debug("note response",
		zap.String("posting_id", match.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	note := cleanNote(raw)
	if note == "" {
		return "", fmt.Errorf("empty note for posting %s", match.ID)
	}

	return note, nil
}

func notePayload(m matching.Match) map[string]any {
	return map[string]any{
		"title":          m.Title,
		"company":        m.Company,
		"sector":         m.Sector,
		"place":          m.Place(),
		"remote":         m.IsRemote(),
		"required":       m.SkillList,
		"matched_skills": m.MatchedSkills,
		"score":          m.Score,
		"reasons":        m.Reasons,
	}
}

func buildPrompt(profileJSON, matchJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Profile:\n{{PROFILE_JSON}}\n\nPosting:\n{{MATCH_JSON}}\n\nNote:"
	}
	prompt := strings.ReplaceAll(template, "{{PROFILE_JSON}}", profileJSON)
	prompt = strings.ReplaceAll(prompt, "{{MATCH_JSON}}", matchJSON)
	return prompt
}

// cleanNote strips markdown fences some models wrap plain text in.
func cleanNote(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```text")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
