package fieldview

import "strings"

// Tone is the visual category of a status badge.
type Tone string

const (
	TonePositive      Tone = "positive"
	ToneCaution       Tone = "caution"
	ToneNegative      Tone = "negative"
	ToneInformational Tone = "informational"
	ToneNeutral       Tone = "neutral"
)

// badgeRules are evaluated in order; the first group with a keyword contained
// in the lowercased status wins.
var badgeRules = []struct {
	tone     Tone
	class    string
	keywords []string
}{
	{TonePositive, "bg-success", []string{"approved", "active", "completed", "success"}},
	{ToneCaution, "bg-warning", []string{"pending", "submitted", "waiting", "draft"}},
	{ToneNegative, "bg-danger", []string{"rejected", "failed", "error", "cancelled"}},
	{ToneInformational, "bg-info", []string{"processing", "in_progress", "in progress"}},
}

const neutralClass = "bg-secondary"

// StatusTone classifies a status string by keyword substring.
func StatusTone(status string) Tone {
	tone, _ := classifyStatus(status)
	return tone
}

// StatusBadgeClass returns the badge CSS class for a status string.
func StatusBadgeClass(status string) string {
	_, class := classifyStatus(status)
	return class
}

func classifyStatus(status string) (Tone, string) {
	s := strings.ToLower(status)
	for _, rule := range badgeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.tone, rule.class
			}
		}
	}
	return ToneNeutral, neutralClass
}
