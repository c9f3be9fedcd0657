package interview

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var bankYAML []byte

// BankSkill is one catalog entry: a skill with its detection keywords
// and difficulty-stratified question buckets.
type BankSkill struct {
	Name      string                  `yaml:"name"`
	Keywords  []string                `yaml:"keywords"`
	Questions map[Difficulty][]string `yaml:"questions"`
}

// Bank is the static question catalog. It is read-only at runtime.
type Bank struct {
	Version int         `yaml:"version"`
	Skills  []BankSkill `yaml:"skills"`
}

// LoadBank parses and validates the embedded catalog.
func LoadBank() (*Bank, error) {
	var bank Bank
	if err := yaml.Unmarshal(bankYAML, &bank); err != nil {
		return nil, fmt.Errorf("parsing question bank: %w", err)
	}

	if err := validateBank(&bank); err != nil {
		return nil, fmt.Errorf("validating question bank: %w", err)
	}

	return &bank, nil
}

func validateBank(bank *Bank) error {
	if bank.Version <= 0 {
		return fmt.Errorf("version must be positive, got %d", bank.Version)
	}

	if len(bank.Skills) == 0 {
		return fmt.Errorf("catalog has no skills")
	}

	seen := make(map[string]bool, len(bank.Skills))
	for i, skill := range bank.Skills {
		if skill.Name == "" {
			return fmt.Errorf("skill %d has no name", i)
		}
		if seen[skill.Name] {
			return fmt.Errorf("duplicate skill %q", skill.Name)
		}
		seen[skill.Name] = true

		if len(skill.Keywords) == 0 {
			return fmt.Errorf("skill %q has no keywords", skill.Name)
		}

		if len(skill.Questions) == 0 {
			return fmt.Errorf("skill %q has no questions", skill.Name)
		}

		for diff, bucket := range skill.Questions {
			switch diff {
			case Easy, Medium, Hard:
			default:
				return fmt.Errorf("skill %q has unknown difficulty %q", skill.Name, diff)
			}
			if len(bucket) == 0 {
				return fmt.Errorf("skill %q has an empty %s bucket", skill.Name, diff)
			}
			for _, q := range bucket {
				if q == "" {
					return fmt.Errorf("skill %q has an empty %s question", skill.Name, diff)
				}
			}
		}
	}

	return nil
}

// Bucket returns the question list for (skill, difficulty), or nil when
// the skill has no bucket for that tier.
func (b *Bank) Bucket(skill string, diff Difficulty) []string {
	for _, s := range b.Skills {
		if s.Name == skill {
			return s.Questions[diff]
		}
	}
	return nil
}

// SkillsWith filters detected down to the skills that carry a non-empty
// bucket for diff, preserving the detected order.
func (b *Bank) SkillsWith(diff Difficulty, detected []string) []string {
	var out []string
	for _, name := range detected {
		if len(b.Bucket(name, diff)) > 0 {
			out = append(out, name)
		}
	}
	return out
}

// SkillNames returns every catalog skill carrying a non-empty bucket for
// diff, in catalog order.
func (b *Bank) SkillNames(diff Difficulty) []string {
	var out []string
	for _, s := range b.Skills {
		if len(s.Questions[diff]) > 0 {
			out = append(out, s.Name)
		}
	}
	return out
}
