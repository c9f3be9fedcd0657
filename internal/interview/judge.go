package interview

import (
	"context"

	"go.uber.org/zap"

	"github.com/crisphire/crisp/internal/oracle"
)

// Judge scores answers 0-10 through the oracle, degrading to zero on any
// failure.
type Judge struct {
	caller *oracle.Caller
	logger *zap.Logger
}

// NewJudge builds a judge over the given caller.
func NewJudge(caller *oracle.Caller, logger *zap.Logger) *Judge {
	return &Judge{caller: caller, logger: logger}
}

// Score asks the oracle for an integer score of the answer. Oracle
// errors, timeouts and unparseable responses all score zero; judging
// never blocks the flow.
func (j *Judge) Score(ctx context.Context, question, answer string) int {
	raw, err := j.caller.Call(ctx, buildJudgePrompt(question, answer))
	if err != nil {
		j.logger.Warn("answer judging failed, scoring 0", zap.Error(err))
		return 0
	}

	return parseScore(raw)
}

// parseScore reads a leading integer from the response and clamps it to
// [0,10]. Anything without a leading integer scores zero.
func parseScore(raw string) int {
	i := 0
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\t' || raw[i] == '\n' || raw[i] == '\r') {
		i++
	}

	negative := false
	if i < len(raw) && (raw[i] == '+' || raw[i] == '-') {
		negative = raw[i] == '-'
		i++
	}

	start := i
	value := 0
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		value = value*10 + int(raw[i]-'0')
		if value > 10 {
			value = 11 // anything above the scale clamps the same way
		}
		i++
	}
	if i == start {
		return 0
	}

	if negative {
		return 0
	}
	if value > 10 {
		return 10
	}
	return value
}
