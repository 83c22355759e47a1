// Package matcher scores normalized jobs against the static user
// preference profile.
package matcher

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Skills groups the profile's technology lists. Primary carries the most
// scoring weight (it alone drives the stack-match category).
type Skills struct {
	Primary   []string `yaml:"primary"`
	Secondary []string `yaml:"secondary"`
	Devops    []string `yaml:"devops"`
}

// DealBreakers are the hard rejection rules: any violation zeroes a score
// regardless of other merits.
type DealBreakers struct {
	EquityOnly   bool     `yaml:"equity_only"`
	ExcludedTech []string `yaml:"excluded_tech"`
}

// Profile is the read-only description of the searching user's
// preferences. The scorer treats it as an immutable snapshot for the
// duration of a scoring pass and never mutates it.
type Profile struct {
	Name         string       `yaml:"name"`
	Title        string       `yaml:"title"`
	TargetTitles []string     `yaml:"target_titles"` // in preference order
	Skills       Skills       `yaml:"skills"`
	DealBreakers DealBreakers `yaml:"deal_breakers"`
}

// DefaultProfile returns the compiled-in profile used when no YAML
// override is configured.
func DefaultProfile() *Profile {
	return &Profile{
		Name:  "Duilio Izzi",
		Title: "Head of Engineering",
		TargetTitles: []string{
			"Head of Engineering",
			"VP of Engineering",
			"Chief Technology Officer",
			"CTO",
			"VP of Product",
			"Chief Product Officer",
			"Director of Engineering",
			"Staff Engineer",
			"Principal Engineer",
		},
		Skills: Skills{
			Primary:   []string{"Go", "Python", "Kubernetes", "AWS", "Docker", "Terraform", "Linux"},
			Secondary: []string{"JavaScript", "Node.js", "TypeScript", "React", "MongoDB", "PostgreSQL", "Redis", "Git"},
			Devops:    []string{"CI/CD", "GitHub Actions", "Jenkins", "Monitoring", "Observability", "Security"},
		},
		DealBreakers: DealBreakers{
			EquityOnly:   true,
			ExcludedTech: []string{"PHP", "WordPress", "jQuery", ".NET Framework"},
		},
	}
}

// LoadProfile reads a YAML profile from path. An empty path returns the
// default profile.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}

// AllSkills returns the combined primary+secondary+devops skill list.
func (p *Profile) AllSkills() []string {
	out := make([]string, 0, len(p.Skills.Primary)+len(p.Skills.Secondary)+len(p.Skills.Devops))
	out = append(out, p.Skills.Primary...)
	out = append(out, p.Skills.Secondary...)
	out = append(out, p.Skills.Devops...)
	return out
}
