package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSummarizeReturnsOracleNarrative(t *testing.T) {
	stub := &stubOracle{responses: []string{"  Strong on fundamentals, weaker on system design.  "}}
	s := NewSummarizer(newTestCaller(stub), zap.NewNop())

	three := 3
	got := s.Summarize(context.Background(), []string{"q1", "q2"}, []*int{&three, nil})

	if got != "Strong on fundamentals, weaker on system design." {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSummarizePromptReportsUnscoredAsZero(t *testing.T) {
	recorder := &recordingOracle{response: "fine"}
	s := NewSummarizer(newTestCaller(recorder), zap.NewNop())

	eight := 8
	s.Summarize(context.Background(), []string{"first", "second"}, []*int{&eight, nil})

	if !strings.Contains(recorder.prompt, "first - 8; second - 0") {
		t.Fatalf("expected question/score pairs in the prompt, got %q", recorder.prompt)
	}
}

func TestSummarizeFallsBack(t *testing.T) {
	stub := &stubOracle{err: errors.New("unavailable")}
	s := NewSummarizer(newTestCaller(stub), zap.NewNop())

	got := s.Summarize(context.Background(), []string{"q1"}, []*int{nil})
	if got != FallbackSummary {
		t.Fatalf("expected the fallback summary, got %q", got)
	}
}

type recordingOracle struct {
	response string
	prompt   string
}

func (r *recordingOracle) Complete(_ context.Context, prompt string) (string, error) {
	r.prompt = prompt
	return r.response, nil
}
