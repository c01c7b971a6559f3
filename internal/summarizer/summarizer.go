// Package summarizer condenses recent conversation history into a short
// bullet-point digest that is prepended to the next prompt.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"jarvis/internal/genai"
	"jarvis/internal/memory"
	"jarvis/pkg/util"
)

// MaxTranscriptChars bounds the rendered history sent to the model. The
// oldest content is dropped first.
const MaxTranscriptChars = 2000

// Fixed replies.
const (
	NoHistory   = "No previous conversation history."
	Unavailable = "Unable to summarize conversation history."
)

const promptTemplate = `
Summarize the following conversation history into important facts,
preferences, or unresolved questions to help an assistant continue:

%s

Provide a short bullet-point summary:
`

// Result is a summary plus the failure, if any, that forced the fallback
// text.
type Result struct {
	Text string
	Err  error
}

// Summarizer asks a Generator for the digest.
type Summarizer struct {
	gen    genai.Generator
	logger *slog.Logger
}

// New creates a Summarizer. gen may be nil, in which case every non-empty
// history yields the Unavailable text.
func New(gen genai.Generator, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{gen: gen, logger: logger}
}

// Transcript renders records, which arrive newest first as returned by
// memory.Store.Recent, as User/Assistant pairs in chronological order and
// keeps only the last MaxTranscriptChars characters, so the oldest
// exchanges are the ones cut.
func Transcript(records []memory.Record) string {
	var b strings.Builder
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n\n", r.Query, r.Response)
	}
	return util.Tail(b.String(), MaxTranscriptChars)
}

// Prompt wraps a transcript in the summarization instructions.
func Prompt(transcript string) string {
	return fmt.Sprintf(promptTemplate, transcript)
}

// Summarize returns a digest of records. Empty input never reaches the
// model.
func (s *Summarizer) Summarize(ctx context.Context, records []memory.Record) Result {
	if len(records) == 0 {
		return Result{Text: NoHistory}
	}
	if s == nil || s.gen == nil {
		return Result{Text: Unavailable, Err: genai.ErrNoAPIKey}
	}

	text, err := s.gen.Generate(ctx, Prompt(Transcript(records)))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty summary")
	}
	if err != nil {
		s.logger.Warn("Error summarizing history", "err", err)
		return Result{Text: Unavailable, Err: err}
	}

	return Result{Text: strings.TrimSpace(text)}
}
