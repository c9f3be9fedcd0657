package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/crisphire/crisp/internal/oracle"
)

// FallbackSummary is used whenever the oracle cannot produce a closing
// narrative.
const FallbackSummary = "Interview completed. Summary unavailable."

// Summarizer requests the closing performance narrative from the oracle.
type Summarizer struct {
	caller *oracle.Caller
	logger *zap.Logger
}

// NewSummarizer builds a summarizer over the given caller.
func NewSummarizer(caller *oracle.Caller, logger *zap.Logger) *Summarizer {
	return &Summarizer{caller: caller, logger: logger}
}

// Summarize returns the oracle's narrative over the question/score
// pairs, or FallbackSummary on any failure. Unscored rounds report as
// zero in the prompt.
func (s *Summarizer) Summarize(ctx context.Context, questions []string, scores []*int) string {
	pairs := make([]string, 0, len(questions))
	for i, q := range questions {
		score := 0
		if i < len(scores) && scores[i] != nil {
			score = *scores[i]
		}
		pairs = append(pairs, fmt.Sprintf("%s - %d", q, score))
	}

	raw, err := s.caller.Call(ctx, buildSummaryPrompt(strings.Join(pairs, "; ")))
	if err != nil {
		s.logger.Warn("summary generation failed, using fallback", zap.Error(err))
		return FallbackSummary
	}

	return strings.TrimSpace(raw)
}
