package risk

import "testing"

func TestActionable_BelowThreshold(t *testing.T) {
	p := NewPolicy(nil, 0.5)
	for _, label := range []string{"cancerous", "malignant", "positive", "benign"} {
		if p.Actionable(label, 0.49) {
			t.Errorf("label %q below threshold should not be actionable", label)
		}
	}
}

func TestActionable_UnknownLabel(t *testing.T) {
	p := NewPolicy(nil, 0.5)
	for _, label := range []string{"benign", "class_3", "", "negative"} {
		if p.Actionable(label, 0.99) {
			t.Errorf("label %q outside concern set should not be actionable", label)
		}
	}
}

func TestActionable_CaseInsensitive(t *testing.T) {
	p := NewPolicy(nil, 0.5)
	cases := []struct {
		label string
		prob  float64
		want  bool
	}{
		{"malignant", 0.5, true},
		{"Malignant", 0.5, true},
		{"MALIGNANT", 0.99, true},
		{"cancerous", 0.82, true},
		{"Positive", 0.51, true},
		{"malignant", 0.4999, false},
	}
	for _, tc := range cases {
		if got := p.Actionable(tc.label, tc.prob); got != tc.want {
			t.Errorf("Actionable(%q, %f) = %v, want %v", tc.label, tc.prob, got, tc.want)
		}
	}
}

func TestNewPolicy_CustomSetAndThreshold(t *testing.T) {
	p := NewPolicy([]string{"Melanoma"}, 0.8)
	if !p.Actionable("melanoma", 0.8) {
		t.Error("custom label at threshold should be actionable")
	}
	if p.Actionable("melanoma", 0.79) {
		t.Error("custom label below threshold should not be actionable")
	}
	if p.Actionable("malignant", 0.99) {
		t.Error("default labels should not apply with a custom set")
	}
}

func TestNewPolicy_Defaults(t *testing.T) {
	p := NewPolicy(nil, 0)
	if p.Threshold() != DefaultThreshold {
		t.Errorf("expected default threshold, got %f", p.Threshold())
	}
	if !p.Actionable("cancerous", 0.5) {
		t.Error("default set should include cancerous")
	}
}
