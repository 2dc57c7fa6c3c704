package guardrail

import "regexp"

// prohibitedProductRegexes is the fixed content-safety list. Text
// referencing any of these products is blocked regardless of tone.
var prohibitedProductRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpayday\s*loans?\b`),
	regexp.MustCompile(`(?i)\btitle\s*loans?\b`),
	regexp.MustCompile(`(?i)\brent.to.own\b`),
	regexp.MustCompile(`(?i)\bpawn\s*(shops?|loans?)\b`),
	regexp.MustCompile(`(?i)\bcash\s*advances?\b`),
	regexp.MustCompile(`(?i)\b(lottery|gambling|sports\s*betting)\b`),
}

// SafetyValidator blocks references to prohibited financial products.
type SafetyValidator struct{}

// NewSafetyValidator creates a content-safety validator.
func NewSafetyValidator() *SafetyValidator {
	return &SafetyValidator{}
}

// Check returns the prohibited product references found in text, in list
// order. Empty means the text is safe.
func (v *SafetyValidator) Check(text string) []string {
	var found []string
	for _, re := range prohibitedProductRegexes {
		if m := re.FindString(text); m != "" {
			found = append(found, m)
		}
	}
	return found
}
