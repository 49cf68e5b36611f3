package risk

import "strings"

// DefaultThreshold is the minimum probability for a concerning label to
// trigger the booking workflow.
const DefaultThreshold = 0.5

// DefaultConcernLabels are the labels treated as positive-for-concern.
func DefaultConcernLabels() []string {
	return []string{"cancerous", "malignant", "positive"}
}

// Policy decides whether a classification result should trigger the booking
// workflow. It is a pure decision function with no side effects.
type Policy struct {
	concernLabels map[string]struct{}
	threshold     float64
}

// NewPolicy builds a policy from a label set and probability threshold.
// Labels are matched case-insensitively. A non-positive threshold falls back
// to DefaultThreshold.
func NewPolicy(labels []string, threshold float64) *Policy {
	if len(labels) == 0 {
		labels = DefaultConcernLabels()
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}
	return &Policy{concernLabels: set, threshold: threshold}
}

// Actionable reports whether the label is in the concern set and the
// probability meets the threshold.
func (p *Policy) Actionable(label string, probability float64) bool {
	if _, ok := p.concernLabels[strings.ToLower(strings.TrimSpace(label))]; !ok {
		return false
	}
	return probability >= p.threshold
}

// Threshold returns the configured trigger threshold.
func (p *Policy) Threshold() float64 {
	return p.threshold
}
