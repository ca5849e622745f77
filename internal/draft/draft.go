// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft turns selected candidates into persisted, persona-styled
// drafts. Each candidate goes through an outline step and a rewrite step;
// a failure on one candidate is logged and never stops the batch.
package draft

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pdiddy/content-engine/internal/funnel"
	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/pkg/types"
)

// DefaultInstructions is the ghostwriting brief used when the persona
// supplies no custom instructions.
const DefaultInstructions = `Eres un redactor experto en ghostwriting para LinkedIn.
- Escribe de forma directa y contundente.
- Usa párrafos cortos.
- Sin emojis.
- Tutea al lector.`

// excerptLen is the number of runes of the original kept in run results.
const excerptLen = 200

// Step names reported in StepError.
const (
	StepOutline = "outline"
	StepRewrite = "rewrite"
	StepPersist = "persist"
)

// StepError identifies which step failed for a candidate.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Writer is the generation capability used by the pipeline.
type Writer interface {
	Outline(ctx context.Context, text string) (string, error)
	Rewrite(ctx context.Context, outline, original, instructions string) (string, error)
}

// Inserter persists generated drafts.
type Inserter interface {
	Insert(ctx context.Context, rec *types.PersistedRecord) error
}

// Request carries the per-run inputs of the pipeline.
type Request struct {
	Tenant  string
	Mode    types.SourceMode
	Persona types.PersonaProfile
}

// Summary holds counts from one pipeline run.
type Summary struct {
	Generated int
	Skipped   int
	Failed    int
}

// Total returns the number of candidates processed.
func (s Summary) Total() int {
	return s.Generated + s.Skipped + s.Failed
}

// Pipeline generates and persists drafts sequentially.
type Pipeline struct {
	writer Writer
	store  Inserter
	logger *slog.Logger
	now    func() time.Time
}

// NewPipeline wires the pipeline.
func NewPipeline(writer Writer, store Inserter, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		writer: writer,
		store:  store,
		logger: logging.OrDiscard(logger),
		now:    time.Now,
	}
}

// Process generates a draft for each candidate in order. Candidates with
// empty text are skipped; candidates whose outline, rewrite or insert fails
// are logged and dropped. The returned slice preserves input order.
func (p *Pipeline) Process(ctx context.Context, req Request, candidates []types.CandidateItem) ([]types.ProcessedDraft, Summary) {
	instructions := req.Persona.CustomInstructions
	if instructions == "" {
		instructions = DefaultInstructions
	}

	var summary Summary
	processed := make([]types.ProcessedDraft, 0, len(candidates))
	for _, c := range candidates {
		if ctx.Err() != nil {
			p.logger.Warn("generation cancelled", "remaining", len(candidates)-summary.Total(), "error", ctx.Err())
			break
		}
		if strings.TrimSpace(c.Text) == "" {
			summary.Skipped++
			continue
		}

		out, err := p.processOne(ctx, req, instructions, c)
		if err != nil {
			summary.Failed++
			p.logger.Error("draft generation failed", "locator", c.Locator, "error", err)
			continue
		}
		summary.Generated++
		processed = append(processed, out)
	}
	return processed, summary
}

func (p *Pipeline) processOne(ctx context.Context, req Request, instructions string, c types.CandidateItem) (types.ProcessedDraft, error) {
	outline, err := p.writer.Outline(ctx, c.Text)
	if err != nil {
		return types.ProcessedDraft{}, &StepError{Step: StepOutline, Err: err}
	}

	rewritten, err := p.writer.Rewrite(ctx, outline, c.Text, instructions)
	if err != nil {
		return types.ProcessedDraft{}, &StepError{Step: StepRewrite, Err: err}
	}

	now := p.now().UTC()
	rec := &types.PersistedRecord{
		ID:           uuid.NewString(),
		Tenant:       req.Tenant,
		SourceMode:   req.Mode,
		Kind:         types.KindDraft,
		Status:       types.StatusDrafted,
		Locator:      c.Locator,
		Author:       c.AuthorName,
		OriginalText: c.Text,
		Fingerprint:  funnel.Fingerprint(c.Text),
		Draft:        types.GeneratedDraft{Outline: outline, Rewritten: rewritten},
		Engagement:   c.Engagement,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.store.Insert(ctx, rec); err != nil {
		return types.ProcessedDraft{}, &StepError{Step: StepPersist, Err: err}
	}

	p.logger.Info("draft generated", "id", rec.ID, "locator", c.Locator)
	return types.ProcessedDraft{
		ID:        rec.ID,
		Locator:   c.Locator,
		Original:  Excerpt(c.Text),
		Generated: rewritten,
	}, nil
}

// Excerpt returns the first 200 runes of text, marking truncation with "...".
func Excerpt(text string) string {
	if utf8.RuneCountInString(text) <= excerptLen {
		return text
	}
	return string([]rune(text)[:excerptLen]) + "..."
}
