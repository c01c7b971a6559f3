// Package eval scores the generative backend against a fixed set of
// question/keyword pairs.
package eval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"jarvis/internal/genai"
	"jarvis/pkg/util"
)

// responseLimit bounds the response text kept per result.
const responseLimit = 140

// Case is one evaluation question and the keyword a correct answer must
// contain.
type Case struct {
	Question string
	Keyword  string
}

// DefaultCases is the built-in test set.
var DefaultCases = []Case{
	{Question: "What is Python?", Keyword: "programming"},
	{Question: "What is AI?", Keyword: "intelligence"},
	{Question: "Define machine learning", Keyword: "learning"},
}

// Result is the outcome of one case.
type Result struct {
	Question string `json:"question"`
	Passed   bool   `json:"passed"`
	Response string `json:"response"`
}

// Report is the outcome of a full run. Accuracy is a percentage.
type Report struct {
	Accuracy float64  `json:"accuracy"`
	Results  []Result `json:"results"`
}

// Harness sends each question straight to the generator, bypassing the
// agents and memory.
type Harness struct {
	gen    genai.Generator
	cases  []Case
	logger *slog.Logger
}

// New creates a harness over cases; nil cases means DefaultCases. gen may
// be nil, in which case every case fails.
func New(gen genai.Generator, cases []Case, logger *slog.Logger) *Harness {
	if cases == nil {
		cases = DefaultCases
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{gen: gen, cases: cases, logger: logger}
}

// Run evaluates every case in order. It never fails; errors count as
// failed cases.
func (h *Harness) Run(ctx context.Context) Report {
	results := make([]Result, 0, len(h.cases))
	passed := 0

	for _, c := range h.cases {
		r := h.runCase(ctx, c)
		if r.Passed {
			passed++
		}
		results = append(results, r)
	}

	var accuracy float64
	if len(h.cases) > 0 {
		accuracy = float64(passed) / float64(len(h.cases)) * 100
	}

	h.logger.Info("Evaluation finished", "passed", passed, "total", len(h.cases), "accuracy", accuracy)
	return Report{Accuracy: accuracy, Results: results}
}

func (h *Harness) runCase(ctx context.Context, c Case) Result {
	if h.gen == nil {
		return errResult(c, genai.ErrNoAPIKey)
	}

	text, err := h.gen.Generate(ctx, c.Question)
	if err != nil {
		h.logger.Warn("Evaluation case failed", "question", c.Question, "err", err)
		return errResult(c, err)
	}

	return Result{
		Question: c.Question,
		Passed:   strings.Contains(strings.ToLower(text), strings.ToLower(c.Keyword)),
		Response: util.Head(text, responseLimit),
	}
}

func errResult(c Case, err error) Result {
	return Result{Question: c.Question, Response: fmt.Sprintf("Error: %v", err)}
}
