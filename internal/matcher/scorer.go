package matcher

import (
	"fmt"
	"strings"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
)

// Category maxima. They sum to 90; the final clamp to [0, 100] is a safety
// invariant in case a maximum is ever raised.
const (
	maxTitlePoints    = 30
	maxSkillsPoints   = 25
	maxLocationPoints = 20
	maxTechPoints     = 15
)

// titleKeywords are the role-indicator words used for partial title
// matching when no target title matches outright.
var titleKeywords = []string{
	"head", "vp", "cto", "engineering", "product", "principal", "staff", "director", "lead",
}

// Fixed location keyword sets, checked in order of points awarded.
var (
	locationRemoteKeywords = []string{"remote", "híbrido", "hybrid", "home office", "teletrabajo"}
	locationSpainKeywords  = []string{"españa", "spain", "valencia"}
	locationEuropeKeywords = []string{
		"alemania", "germany", "francia", "france", "portugal",
		"italia", "italy", "uk", "netherlands",
	}
)

// equityOnlyPhrases indicate a position compensated without salary.
var equityOnlyPhrases = []string{
	"equity only", "solo equity", "sin sueldo", "sin salario",
	"unpaid", "volunteer", "no salary",
}

// Score computes the 0–100 relevance of job against profile, with
// human-readable reasons. It is a pure function of its inputs: no I/O, no
// randomness, no mutation. Missing job fields are treated as empty strings.
func Score(job model.Job, profile *Profile) model.MatchResult {
	score := 0
	var reasons []string

	points, reason := scoreTitle(job.Title, profile)
	score += points
	if reason != "" {
		reasons = append(reasons, reason)
	}

	points, reason = scoreSkills(job, profile)
	score += points
	if reason != "" {
		reasons = append(reasons, reason)
	}

	points, reason = scoreLocation(job)
	score += points
	if reason != "" {
		reasons = append(reasons, reason)
	}

	points, reason = scoreTech(job, profile)
	score += points
	if reason != "" {
		reasons = append(reasons, reason)
	}

	// Deal breakers override everything above.
	if violated, why := checkDealBreakers(job, profile); violated {
		return model.MatchResult{Score: 0, Reasons: []string{"Deal breaker: " + why}}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return model.MatchResult{Score: score, Reasons: reasons}
}

// scoreTitle awards the full 30 points on any target-title substring
// match, else a partial score from role-indicator keywords.
func scoreTitle(jobTitle string, profile *Profile) (int, string) {
	if jobTitle == "" {
		return 0, ""
	}
	title := strings.ToLower(jobTitle)

	for _, target := range profile.TargetTitles {
		if strings.Contains(title, strings.ToLower(target)) {
			return maxTitlePoints, fmt.Sprintf("Exact title match: %s", strings.ToLower(target))
		}
	}

	matches := 0
	for _, kw := range titleKeywords {
		if strings.Contains(title, kw) {
			matches++
		}
	}
	switch {
	case matches >= 2:
		return 20, fmt.Sprintf("Partial title match (%d keywords)", matches)
	case matches == 1:
		return 10, "Weak title match"
	}
	return 0, ""
}

// scoreSkills counts how many profile skills (all tiers) appear in the
// combined title/description/tags text.
func scoreSkills(job model.Job, profile *Profile) (int, string) {
	text := strings.ToLower(job.Title + " " + job.Description + " " + job.Tags)

	var matched []string
	for _, skill := range profile.AllSkills() {
		if strings.Contains(text, strings.ToLower(skill)) {
			matched = append(matched, skill)
		}
	}

	switch n := len(matched); {
	case n >= 5:
		return maxSkillsPoints, fmt.Sprintf("Strong skills match (%d): %s", n, strings.Join(matched[:5], ", "))
	case n >= 3:
		return 15, fmt.Sprintf("Good skills match (%d)", n)
	case n >= 1:
		return 5, fmt.Sprintf("Weak skills match (%d)", n)
	}
	return 0, ""
}

// scoreLocation checks location+description against the fixed keyword
// sets. This is the one category that emits a reason even at zero points.
func scoreLocation(job model.Job) (int, string) {
	text := strings.ToLower(job.Location + " " + job.Description)

	for _, kw := range locationRemoteKeywords {
		if strings.Contains(text, kw) {
			return maxLocationPoints, "Remote/hybrid position"
		}
	}
	loc := strings.ToLower(job.Location)
	for _, kw := range locationSpainKeywords {
		if strings.Contains(loc, kw) {
			return 15, "Spain-based position"
		}
	}
	for _, kw := range locationEuropeKeywords {
		if strings.Contains(loc, kw) {
			return 10, "Europe-based position"
		}
	}
	return 0, "Location unclear"
}

// scoreTech is the skills check narrowed to the primary stack only.
func scoreTech(job model.Job, profile *Profile) (int, string) {
	text := strings.ToLower(job.Title + " " + job.Description)

	matches := 0
	for _, tech := range profile.Skills.Primary {
		if strings.Contains(text, strings.ToLower(tech)) {
			matches++
		}
	}
	switch {
	case matches >= 3:
		return maxTechPoints, fmt.Sprintf("Primary stack match (%d)", matches)
	case matches >= 2:
		return 10, fmt.Sprintf("Good tech match (%d)", matches)
	case matches >= 1:
		return 5, "Some tech overlap"
	}
	return 0, ""
}

// checkDealBreakers returns (true, reason) when the job violates a hard
// rejection rule.
func checkDealBreakers(job model.Job, profile *Profile) (bool, string) {
	description := strings.ToLower(job.Description)

	if profile.DealBreakers.EquityOnly {
		for _, phrase := range equityOnlyPhrases {
			if strings.Contains(description, phrase) {
				return true, "Equity-only position (no salary)"
			}
		}
	}

	for _, tech := range profile.DealBreakers.ExcludedTech {
		if strings.Contains(description, strings.ToLower(tech)) {
			return true, fmt.Sprintf("Uses excluded tech: %s", tech)
		}
	}
	return false, ""
}
