// Package recommend decides what a learner should study next.
//
// Everything here is a pure function over a ProgressSummary snapshot: the
// engine never touches the store, so a recommendation is always consistent
// with a single point-in-time view even while attempts are being recorded
// concurrently.
package recommend

import "github.com/pavelanni/prepcoach/internal/model"

// DefaultDailyGoal is the problems-per-day target used by the consistency
// suggestion when no goal is configured.
const DefaultDailyGoal = 2

// NextTopic picks the next topic to study. Weak areas come first, oldest
// recorded weakness before newer ones, so early gaps are remediated before
// new ones open. With no weak areas the first uncovered catalog topic is
// chosen; with full coverage the catalog wraps around to its start.
// Never fails: some topic is always returned.
func NextTopic(summary model.ProgressSummary) model.Topic {
	if len(summary.WeakAreas) > 0 {
		return summary.WeakAreas[0]
	}
	for _, t := range model.TopicCatalog {
		if !summary.Covered(t) {
			return t
		}
	}
	return model.TopicCatalog[0]
}

// Suggestion IDs double as i18n message IDs.
const (
	SuggestConsistency = "SuggestConsistency"
	SuggestConcepts    = "SuggestConcepts"
	SuggestWeakArea    = "SuggestWeakArea"
)

// Suggestion is one study-plan recommendation, rendered to a localized
// string at the API edge.
type Suggestion struct {
	ID   string
	Data map[string]any
}

// Suggestions applies the fixed rule table in order and returns every
// matching rule. Rules are not mutually exclusive.
func Suggestions(summary model.ProgressSummary, dailyGoal int) []Suggestion {
	if dailyGoal <= 0 {
		dailyGoal = DefaultDailyGoal
	}

	var out []Suggestion
	if summary.TotalProblems < 10 {
		out = append(out, Suggestion{
			ID:   SuggestConsistency,
			Data: map[string]any{"Count": dailyGoal},
		})
	}
	if summary.Accuracy < 50 {
		out = append(out, Suggestion{ID: SuggestConcepts})
	}
	if len(summary.WeakAreas) > 0 {
		out = append(out, Suggestion{
			ID:   SuggestWeakArea,
			Data: map[string]any{"Topic": string(summary.WeakAreas[0])},
		})
	}
	return out
}
