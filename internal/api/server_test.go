package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/agent"
	"jarvis/internal/eval"
	"jarvis/internal/events"
)

type fakeAsker struct {
	got []string
	run func(string) agent.RunResult
}

func (f *fakeAsker) Run(_ context.Context, cmd string) agent.RunResult {
	f.got = append(f.got, cmd)
	return f.run(cmd)
}

type fakeEvaluator struct{ report eval.Report }

func (f fakeEvaluator) Run(context.Context) eval.Report { return f.report }

func newTestServer(t *testing.T, asker Asker, bus *events.Bus) *httptest.Server {
	t.Helper()
	s := NewServer(Options{
		Platform:   "linux",
		Automation: true,
		Asker:      asker,
		Evaluator: fakeEvaluator{report: eval.Report{
			Accuracy: 66.66666666666667,
			Results:  []eval.Result{{Question: "What is AI?", Passed: true, Response: "intelligence"}},
		}},
		Bus:    bus,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string) map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func postAsk(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+"/ask", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRootAndHealth(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	root := getJSON(t, srv.URL+"/")
	assert.Equal(t, RunningStatus, root["status"])
	assert.Equal(t, "linux", root["platform"])

	health := getJSON(t, srv.URL+"/health")
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, true, health["windows_features"])
}

func TestUnknownPath(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAsk_ExecutorRoute(t *testing.T) {
	asker := &fakeAsker{run: func(cmd string) agent.RunResult {
		out := "[SYSTEM] Executed: " + cmd
		return agent.RunResult{Executor: &out, AI: "Right away."}
	}}
	srv := newTestServer(t, asker, nil)

	code, out := postAsk(t, srv.URL, `{"query":"open youtube"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Right away.", out["response"])
	assert.Equal(t, "[SYSTEM] Executed: open youtube", out["executor"])
	assert.Equal(t, []string{"open youtube"}, asker.got)
}

func TestAsk_AIRouteOmitsExecutor(t *testing.T) {
	asker := &fakeAsker{run: func(string) agent.RunResult { return agent.RunResult{AI: "Paris."} }}
	srv := newTestServer(t, asker, nil)

	_, out := postAsk(t, srv.URL, `{"query":"what is the capital of france"}`)
	assert.Equal(t, "Paris.", out["response"])
	_, has := out["executor"]
	assert.False(t, has)
}

func TestAsk_PanicBecomesError(t *testing.T) {
	asker := &fakeAsker{run: func(string) agent.RunResult { panic("boom") }}
	srv := newTestServer(t, asker, nil)

	code, out := postAsk(t, srv.URL, `{"query":"hi"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "boom", out["error"])
	_, has := out["response"]
	assert.False(t, has)
}

func TestAsk_EmptyReplyKeepsResponseKey(t *testing.T) {
	asker := &fakeAsker{run: func(string) agent.RunResult { return agent.RunResult{AI: ""} }}
	srv := newTestServer(t, asker, nil)

	code, out := postAsk(t, srv.URL, `{"query":"hi"}`)
	assert.Equal(t, http.StatusOK, code)
	got, has := out["response"]
	require.True(t, has, "response key must always be present")
	assert.Equal(t, "", got)
}

func TestAsk_BadBody(t *testing.T) {
	srv := newTestServer(t, &fakeAsker{}, nil)

	code, out := postAsk(t, srv.URL, `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["error"], "invalid request body")
}

func TestEvaluate(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	out := getJSON(t, srv.URL+"/evaluate")

	assert.InDelta(t, 66.67, out["accuracy"], 0.01)
	results := out["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "What is AI?", results[0].(map[string]any)["question"])
}

func TestEvents_Unavailable(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	resp, err := http.Get(srv.URL + "/ws/events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestEvents_Stream(t *testing.T) {
	bus := events.New()
	srv := newTestServer(t, nil, bus)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return bus.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	bus.Publish(events.Event{Kind: events.KindMetric, Metric: "tool_call", Timestamp: time.Now()})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got events.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, events.KindMetric, got.Kind)
	assert.Equal(t, "tool_call", got.Metric)

	conn.Close()
	require.Eventually(t, func() bool { return bus.SubscriberCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
