package interview

import (
	"strings"
	"testing"
)

func TestFallbackQuestionsAreDeterministic(t *testing.T) {
	bank := mustLoadBank(t)
	resume := "Senior engineer: React, Node, Postgres, Docker."
	seed := HashSeed(resume + "session-1")

	first := BuildFallbackQuestions(bank, resume, seed)
	second := BuildFallbackQuestions(bank, resume, seed)

	if len(first) != RoundCount {
		t.Fatalf("expected %d questions, got %d", RoundCount, len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed diverged at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestFallbackQuestionsDifferAcrossSeeds(t *testing.T) {
	bank := mustLoadBank(t)
	resume := "Senior engineer: React, Node, Postgres, Docker."

	a := BuildFallbackQuestions(bank, resume, HashSeed(resume+"session-1"))
	b := BuildFallbackQuestions(bank, resume, HashSeed(resume+"session-2"))

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced an identical question set")
	}
}

func TestFallbackQuestionsAreDistinctAndNonEmpty(t *testing.T) {
	resumes := []string{
		"Python and Django developer with SQL experience.",
		"Frontend specialist: HTML, CSS, JavaScript, TypeScript, React.",
		"",
		"Plain text resume mentioning nothing technical at all.",
	}

	bank := mustLoadBank(t)

	for _, resume := range resumes {
		questions := BuildFallbackQuestions(bank, resume, HashSeed(resume+"id"))

		if len(questions) != RoundCount {
			t.Fatalf("resume %q: expected %d questions, got %d", resume, RoundCount, len(questions))
		}

		seen := make(map[string]bool)
		for i, q := range questions {
			if strings.TrimSpace(q) == "" {
				t.Fatalf("resume %q: question %d is empty", resume, i)
			}
			k := strings.ToLower(q)
			if seen[k] {
				t.Fatalf("resume %q: duplicate question %q", resume, q)
			}
			seen[k] = true
		}
	}
}
