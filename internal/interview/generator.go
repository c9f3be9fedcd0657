package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/crisphire/crisp/internal/oracle"
)

// ErrGenerationFailed marks an oracle question set that could not be
// used: a failed or timed-out call, a too-short response, or duplicates
// after dedup. The caller recovers with the fallback builder.
var ErrGenerationFailed = errors.New("question generation failed")

// minQuestionLen is the shortest acceptable oracle question.
const minQuestionLen = 5

// Generator requests one resume-based question per difficulty slot from
// the oracle.
type Generator struct {
	caller *oracle.Caller
	logger *zap.Logger
}

// NewGenerator builds a generator over the given caller.
func NewGenerator(caller *oracle.Caller, logger *zap.Logger) *Generator {
	return &Generator{caller: caller, logger: logger}
}

// Generate returns exactly RoundCount unique questions, one per
// difficulty slot in slot order, or ErrGenerationFailed. A
// same-count-but-duplicate result fails outright rather than backfilling
// the duplicates.
func (g *Generator) Generate(ctx context.Context, resumeText string) ([]string, error) {
	questions := make([]string, 0, RoundCount)

	for i, diff := range difficultySlots {
		raw, err := g.caller.Call(ctx, buildQuestionPrompt(diff, resumeText))
		if err != nil {
			return nil, fmt.Errorf("%w: slot %d (%s): %w", ErrGenerationFailed, i, diff, err)
		}

		q := strings.TrimSpace(raw)
		q = strings.TrimPrefix(q, `"`)
		q = strings.TrimSuffix(q, `"`)
		if utf8.RuneCountInString(q) < minQuestionLen {
			return nil, fmt.Errorf("%w: slot %d (%s): question too short: %q", ErrGenerationFailed, i, diff, q)
		}

		g.logger.Debug("oracle question generated",
			zap.Int("slot", i),
			zap.String("difficulty", string(diff)),
		)

		questions = append(questions, q)
	}

	seen := make(map[string]bool, len(questions))
	unique := make([]string, 0, len(questions))
	for _, q := range questions {
		k := strings.ToLower(strings.TrimSpace(q))
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, q)
	}

	if len(unique) != RoundCount {
		return nil, fmt.Errorf("%w: duplicate questions detected (%d unique of %d)", ErrGenerationFailed, len(unique), RoundCount)
	}

	return unique, nil
}
