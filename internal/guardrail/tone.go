// Package guardrail validates recommendations for consent, eligibility,
// tone, and content safety before they can reach anyone.
package guardrail

import (
	"regexp"
	"sort"
)

// Violation categories.
const (
	CategoryShaming  = "shaming"
	CategoryFear     = "fear"
	CategoryJudgment = "judgment"
	CategoryDemand   = "demand"
)

// tonePattern is one prohibited-phrase rule.
type tonePattern struct {
	Category string
	Name     string
	Regex    string
}

// prohibitedPatterns is the fixed prohibited-phrase table. Any match fails
// validation regardless of what else the text contains.
func prohibitedPatterns() []tonePattern {
	return []tonePattern{
		{CategoryShaming, "shaming language", `\b(terrible\s+choices?|bad\s+with\s+money|irresponsible|wasting\s+money|shameful|careless\s+spending)\b`},
		{CategoryFear, "fear framing", `\b(drowning\s+in\s+debt|financial\s+ruin|disaster|catastrophe|spiraling|doomed)\b`},
		{CategoryJudgment, "judgmental language", `\b(should\s+have|shouldn't\s+have|your\s+fault|failed\s+to|poor\s+(choices?|decisions?)|terrible)\b`},
		{CategoryDemand, "absolute demand", `\b(you\s+must|you\s+have\s+to|stop\s+spending|never\s+spend|immediately\s+cut)\b`},
	}
}

// empoweringRegex is the required-category table: at least one of these
// framings must be present for text to pass.
var empoweringRegex = regexp.MustCompile(`(?i)\b(we\s+noticed|you\s+can|you're\s+building|you've\s+got|consider|great\s+(start|progress|first\s+step)|opportunity|option|on\s+track|when\s+you're\s+ready|small\s+step)\b`)

// categorySuggestions maps a violated category to a concrete rewrite hint.
var categorySuggestions = map[string]string{
	CategoryShaming:  "Describe the observed numbers without characterizing the person.",
	CategoryFear:     "State the figure plainly; let the data speak without alarm words.",
	CategoryJudgment: "Replace past-focused judgment with a forward-looking option.",
	CategoryDemand:   "Offer a choice (\"you can\", \"consider\") instead of a command.",
}

const empoweringSuggestion = "Add an empowering framing such as \"we noticed\" or \"you can\"."

// Violation is one structured tone finding.
type Violation struct {
	Category string   `json:"category"`
	Pattern  string   `json:"pattern"`
	Matches  []string `json:"matches"`
}

// ToneResult is the structured outcome of a tone validation. It is part
// of the contract: operators consume the violation list, not just the
// boolean.
type ToneResult struct {
	Valid       bool        `json:"valid"`
	Violations  []Violation `json:"violations"`
	Suggestions []string    `json:"suggestions"`
}

// ToneValidator scans text against the prohibited and required pattern
// tables. It is usable standalone, without a persisted recommendation.
type ToneValidator struct {
	prohibited []compiledTonePattern
}

type compiledTonePattern struct {
	re *regexp.Regexp
	tonePattern
}

// NewToneValidator compiles the fixed pattern tables.
func NewToneValidator() *ToneValidator {
	patterns := prohibitedPatterns()
	compiled := make([]compiledTonePattern, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, compiledTonePattern{
			tonePattern: p,
			re:          regexp.MustCompile(`(?i)` + p.Regex),
		})
	}
	return &ToneValidator{prohibited: compiled}
}

// Validate checks one text. It passes only when zero prohibited patterns
// match and at least one empowering pattern is present. A prohibited match
// fails the text even when empowering phrases are also present.
func (v *ToneValidator) Validate(text string) ToneResult {
	result := ToneResult{Valid: true}
	seenCategories := make(map[string]bool)

	for _, p := range v.prohibited {
		matches := p.re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		result.Valid = false
		result.Violations = append(result.Violations, Violation{
			Category: p.Category,
			Pattern:  p.Name,
			Matches:  matches,
		})
		seenCategories[p.Category] = true
	}

	categories := make([]string, 0, len(seenCategories))
	for c := range seenCategories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		result.Suggestions = append(result.Suggestions, categorySuggestions[c])
	}

	if !empoweringRegex.MatchString(text) {
		result.Valid = false
		result.Suggestions = append(result.Suggestions, empoweringSuggestion)
	}

	return result
}
