package interview

import "strings"

// defaultSkills is reported when nothing matches: downstream question
// selection requires at least one skill.
var defaultSkills = []string{"javascript", "react", "node"}

// DetectSkills scans text for each catalog skill's keyword needles and
// returns the matching skill names in catalog order. The result is never
// empty.
func (b *Bank) DetectSkills(text string) []string {
	t := strings.ToLower(text)

	var out []string
	for _, skill := range b.Skills {
		for _, needle := range skill.Keywords {
			if strings.Contains(t, needle) {
				out = append(out, skill.Name)
				break
			}
		}
	}

	if len(out) == 0 {
		out = append(out, defaultSkills...)
	}

	return out
}
