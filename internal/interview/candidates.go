package interview

import "sort"

// UnnamedCandidate labels archive entries whose profile has no name.
const UnnamedCandidate = "Unnamed Candidate"

// DisplayName returns the candidate's name or the unnamed placeholder.
func (c Candidate) DisplayName() string {
	if c.Profile.Name == "" {
		return UnnamedCandidate
	}
	return c.Profile.Name
}

// RankCandidates returns a copy sorted by score descending. The sort is
// stable so equal scores keep their archive order.
func RankCandidates(candidates []Candidate) []Candidate {
	ranked := append([]Candidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// FindCandidate looks a candidate up by id.
func FindCandidate(candidates []Candidate, id string) (Candidate, bool) {
	for _, c := range candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}
