package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jarvis/internal/genai"
	"jarvis/internal/memory"
	"jarvis/internal/observability"
	"jarvis/internal/summarizer"
	"jarvis/pkg/util"
)

// User-facing replies for the failure categories.
const (
	NoCredentialsReply = "Gemini API client not initialized. Check your GOOGLE_API_KEY."
	ResponseShapeReply = "I received a response but couldn't read it. Please try again."
)

// History is the conversation memory the agent reads and appends to.
type History interface {
	Recent(ctx context.Context, limit int) []memory.Record
	Save(ctx context.Context, query, response string) error
}

// Digester condenses history into a summary.
type Digester interface {
	Summarize(ctx context.Context, records []memory.Record) summarizer.Result
}

// ConversationConfig wires a Conversation agent. Gen nil means no API key
// is configured.
type ConversationConfig struct {
	Gen          genai.Generator
	History      History
	Digester     Digester
	Obs          *observability.Sink
	HistoryLimit int
	Logger       *slog.Logger
}

// Conversation answers free-form questions with summarized history as
// context.
type Conversation struct {
	gen          genai.Generator
	history      History
	digester     Digester
	obs          *observability.Sink
	historyLimit int
	logger       *slog.Logger
}

// NewConversation creates the agent.
func NewConversation(cfg ConversationConfig) *Conversation {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = memory.DefaultLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.History == nil {
		cfg.History = memory.New(nil, cfg.Logger)
	}
	if cfg.Digester == nil {
		cfg.Digester = summarizer.New(cfg.Gen, cfg.Logger)
	}
	return &Conversation{
		gen:          cfg.Gen,
		history:      cfg.History,
		digester:     cfg.Digester,
		obs:          cfg.Obs,
		historyLimit: cfg.HistoryLimit,
		logger:       cfg.Logger,
	}
}

// BuildPrompt combines the history summary and the user's question.
func BuildPrompt(summary, question string) string {
	return fmt.Sprintf("\nConversation Summary:\n%s\n\nUser Question:\n%s\n", summary, question)
}

// Reply is Ask reduced to its user-facing text.
func (c *Conversation) Reply(ctx context.Context, prompt string) string {
	return c.Ask(ctx, prompt).Text
}

// Ask answers prompt. It never returns an error; failures are described
// by the Outcome.
func (c *Conversation) Ask(ctx context.Context, prompt string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = c.failed(ctx, FailureUpstream, recoveredError(r))
		}
	}()

	c.obs.Log(ctx, "Gemini", "ask", util.Head(prompt, 100))
	c.obs.Metric(ctx, "ai_call")

	if c.gen == nil {
		c.logger.Error(NoCredentialsReply)
		return Outcome{Text: NoCredentialsReply, Failure: FailureNoCredentials, Err: genai.ErrNoAPIKey}
	}

	records := c.history.Recent(ctx, c.historyLimit)
	summary := c.digester.Summarize(ctx, records)

	reply, err := c.gen.Generate(ctx, BuildPrompt(summary.Text, prompt))
	if err != nil {
		if errors.Is(err, genai.ErrEmptyResponse) {
			return c.failed(ctx, FailureResponseShape, err)
		}
		return c.failed(ctx, FailureUpstream, err)
	}

	_ = c.history.Save(ctx, prompt, reply)

	return Outcome{Text: reply}
}

func (c *Conversation) failed(ctx context.Context, f Failure, err error) Outcome {
	var text string
	switch f {
	case FailureResponseShape:
		text = ResponseShapeReply
		c.logger.Error("API response error", "err", err)
		c.obs.Log(ctx, "Gemini", "error", "API Response Error: "+err.Error())
	default:
		text = "I apologize, but I encountered an error: " + err.Error()
		c.logger.Error("Error in AI agent", "err", err)
		c.obs.Log(ctx, "Gemini", "error", "Error in AI agent: "+err.Error())
	}
	return Outcome{Text: text, Failure: f, Err: err}
}
