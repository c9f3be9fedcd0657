package interview

import "strings"

// genericQuestions are the last-resort fallbacks per difficulty tier,
// used only when the catalog has no bucket at all for a tier.
var genericQuestions = map[Difficulty]string{
	Easy:   "Explain a simple bug you recently fixed in your stack.",
	Medium: "How would you structure a small feature end-to-end in your stack?",
	Hard:   "Discuss how you would scale a core part of your application and the trade-offs.",
}

// BuildFallbackQuestions composes the deterministic six-question set for
// the fixed difficulty slots: two easy, two medium, two hard, shuffled.
// The same resume text and seed always yield the same list. Questions
// are pairwise distinct case-insensitively and never empty, given a
// non-empty catalog.
func BuildFallbackQuestions(bank *Bank, resumeText string, seed uint32) []string {
	skills := bank.DetectSkills(resumeText)
	rng := NewRand(seed)

	out := make([]string, 0, RoundCount)
	for _, diff := range difficultySlots {
		var q string

		if withDiff := bank.SkillsWith(diff, skills); len(withDiff) > 0 {
			skill := rng.Pick(withDiff)
			q = rng.Pick(bank.Bucket(skill, diff))
		} else if anySkills := bank.SkillNames(diff); len(anySkills) > 0 {
			skill := rng.Pick(anySkills)
			q = rng.Pick(bank.Bucket(skill, diff))
		} else {
			q = genericQuestions[diff]
		}

		out = append(out, q)
	}

	// Deduplicate case-insensitively, keeping first-seen order.
	seen := make(map[string]bool, len(out))
	unique := make([]string, 0, RoundCount)
	for _, q := range out {
		k := strings.ToLower(strings.TrimSpace(q))
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, q)
	}

	// Backfill duplicates with random medium questions from any skill
	// until six unique entries remain or the bank is exhausted.
	mediumSkills := bank.SkillNames(Medium)
	mediumTotal := 0
	for _, s := range mediumSkills {
		mediumTotal += len(bank.Bucket(s, Medium))
	}
	for len(unique) < RoundCount && len(mediumSkills) > 0 {
		if seenMediumCount(bank, mediumSkills, seen) == mediumTotal {
			break
		}
		s := rng.Pick(mediumSkills)
		q := rng.Pick(bank.Bucket(s, Medium))
		k := strings.ToLower(strings.TrimSpace(q))
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, q)
	}

	rng.Shuffle(unique)
	return unique
}

func seenMediumCount(bank *Bank, mediumSkills []string, seen map[string]bool) int {
	count := 0
	for _, s := range mediumSkills {
		for _, q := range bank.Bucket(s, Medium) {
			if seen[strings.ToLower(strings.TrimSpace(q))] {
				count++
			}
		}
	}
	return count
}
