package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/datastore/datastoretest"
	"jarvis/internal/memory"
)

type fakeGen struct {
	calls   int
	prompts []string
	reply   string
	err     error
}

func (f *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestSummarize_EmptyHistoryNoCall(t *testing.T) {
	gen := &fakeGen{reply: "should not be used"}
	s := New(gen, nil)

	got := s.Summarize(context.Background(), nil)
	assert.Equal(t, NoHistory, got.Text)
	assert.NoError(t, got.Err)
	assert.Equal(t, 0, gen.calls)
}

func TestSummarize_Success(t *testing.T) {
	gen := &fakeGen{reply: "  - user likes Go\n"}
	s := New(gen, nil)

	got := s.Summarize(context.Background(), []memory.Record{
		{Query: "what is go", Response: "a language"},
	})
	require.NoError(t, got.Err)
	assert.Equal(t, "- user likes Go", got.Text)

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	assert.Contains(t, p, "User: what is go\nAssistant: a language\n")
	assert.Contains(t, p, "Provide a short bullet-point summary:")
}

func TestSummarize_Failure(t *testing.T) {
	gen := &fakeGen{err: errors.New("quota exceeded")}
	s := New(gen, nil)

	got := s.Summarize(context.Background(), []memory.Record{{Query: "q", Response: "r"}})
	assert.Equal(t, Unavailable, got.Text)
	assert.EqualError(t, got.Err, "quota exceeded")
}

func TestSummarize_NoGenerator(t *testing.T) {
	s := New(nil, nil)
	got := s.Summarize(context.Background(), []memory.Record{{Query: "q", Response: "r"}})
	assert.Equal(t, Unavailable, got.Text)
	assert.Error(t, got.Err)
}

func TestTranscript_TruncatesKeepingNewest(t *testing.T) {
	// Newest first, as memory.Store.Recent returns them.
	records := []memory.Record{{Query: "LATEST-QUESTION", Response: "LATEST-ANSWER"}}
	for i := 0; i < 50; i++ {
		records = append(records, memory.Record{
			Query:    strings.Repeat("a", 40),
			Response: strings.Repeat("b", 40),
		})
	}

	got := Transcript(records)
	assert.Len(t, []rune(got), MaxTranscriptChars)
	assert.True(t, strings.HasSuffix(got, "User: LATEST-QUESTION\nAssistant: LATEST-ANSWER\n\n"))
}

func TestTranscript_ChronologicalOrder(t *testing.T) {
	got := Transcript([]memory.Record{
		{Query: "second", Response: "2"},
		{Query: "first", Response: "1"},
	})
	assert.Equal(t, "User: first\nAssistant: 1\n\nUser: second\nAssistant: 2\n\n", got)
}

func TestSummarize_RecentHistoryKeepsNewestExchange(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(&datastoretest.Fake{}, nil)

	filler := strings.Repeat("f", 300)
	require.NoError(t, mem.Save(ctx, "OLDEST "+filler, filler))
	require.NoError(t, mem.Save(ctx, "filler one "+filler, filler))
	require.NoError(t, mem.Save(ctx, "filler two "+filler, filler))
	require.NoError(t, mem.Save(ctx, "NEWEST "+filler, filler))

	gen := &fakeGen{reply: "summary"}
	got := New(gen, nil).Summarize(ctx, mem.Recent(ctx, 4))
	require.NoError(t, got.Err)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "NEWEST")
	assert.NotContains(t, gen.prompts[0], "OLDEST")
}

func TestTranscript_ShortUnchanged(t *testing.T) {
	got := Transcript([]memory.Record{{Query: "hi", Response: "hello"}})
	assert.Equal(t, "User: hi\nAssistant: hello\n\n", got)
}

func TestSummarize_PromptBounded(t *testing.T) {
	gen := &fakeGen{reply: "ok"}
	s := New(gen, nil)

	long := strings.Repeat("x", 5000)
	s.Summarize(context.Background(), []memory.Record{{Query: long, Response: "end"}})

	require.Len(t, gen.prompts, 1)
	overhead := len(Prompt(""))
	assert.LessOrEqual(t, len(gen.prompts[0]), overhead+MaxTranscriptChars)
	assert.Contains(t, gen.prompts[0], "Assistant: end")
}
