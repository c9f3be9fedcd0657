package interview

import (
	_ "embed"
	"strings"
)

//go:embed prompts/extract_profile.md
var extractProfileTemplate string

//go:embed prompts/question.md
var questionTemplate string

//go:embed prompts/judge.md
var judgeTemplate string

//go:embed prompts/summary.md
var summaryTemplate string

// resumeExcerptLimit caps how much resume text is embedded in a prompt.
const resumeExcerptLimit = 3000

func buildProfilePrompt(resumeText string) string {
	return strings.ReplaceAll(extractProfileTemplate, "{{RESUME}}", excerpt(resumeText))
}

func buildQuestionPrompt(diff Difficulty, resumeText string) string {
	prompt := strings.ReplaceAll(questionTemplate, "{{DIFFICULTY}}", string(diff))
	return strings.ReplaceAll(prompt, "{{RESUME}}", excerpt(resumeText))
}

func buildJudgePrompt(question, answer string) string {
	prompt := strings.ReplaceAll(judgeTemplate, "{{QUESTION}}", question)
	return strings.ReplaceAll(prompt, "{{ANSWER}}", answer)
}

func buildSummaryPrompt(results string) string {
	return strings.ReplaceAll(summaryTemplate, "{{RESULTS}}", results)
}

func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= resumeExcerptLimit {
		return s
	}
	return string(runes[:resumeExcerptLimit])
}
