package patterns

import (
	"strings"
	"testing"
)

func TestSuggest(t *testing.T) {
	defs := []*Definition{
		{Name: "RiskLens", Indicators: []string{"risk", "mitigation"}},
		{Name: "SignalExtractor", Indicators: []string{"signal", "pattern", "insight"}},
		{Name: "Bare"},
	}

	tests := []struct {
		name          string
		brief         string
		expectedCount int
		topPattern    string
	}{
		{
			name:          "single indicator hit",
			brief:         "What are the security risks of shipping early?",
			expectedCount: 1,
			topPattern:    "RiskLens",
		},
		{
			name:          "multiple hits rank higher",
			brief:         "Every risk needs a mitigation plan; pull the key signal too.",
			expectedCount: 2,
			topPattern:    "RiskLens",
		},
		{
			name:          "no hits",
			brief:         "Write a birthday card.",
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := Suggest(defs, tt.brief)
			if len(matches) != tt.expectedCount {
				t.Fatalf("Expected %d matches, got %d", tt.expectedCount, len(matches))
			}
			if tt.expectedCount > 0 && matches[0].Definition.Name != tt.topPattern {
				t.Errorf("Top match = %s, want %s", matches[0].Definition.Name, tt.topPattern)
			}
		})
	}
}

func TestSuggestBoostCapped(t *testing.T) {
	defs := []*Definition{
		{Name: "RiskLens", Indicators: []string{"risk", "mitigation"}},
	}

	matches := Suggest(defs, "the risk needs mitigation")
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Score != 1.0 {
		t.Errorf("Expected boosted score capped at 1.0, got %v", matches[0].Score)
	}
	if !strings.Contains(matches[0].Reason, "risk") || !strings.Contains(matches[0].Reason, "mitigation") {
		t.Errorf("Reason should list matched indicators, got %q", matches[0].Reason)
	}
}

func TestMatchIndicatorsVariations(t *testing.T) {
	tests := []struct {
		term  string
		brief string
	}{
		{"reframe", "try reframing the problem"},
		{"invert", "we inverted the funnel"},
		{"step", "break it into steps"},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			score, _ := MatchIndicators([]string{tt.term}, tt.brief)
			if score == 0 {
				t.Errorf("Expected %q to match %q via variation", tt.term, tt.brief)
			}
		})
	}
}

func TestMatchIndicatorsEmpty(t *testing.T) {
	if score, reason := MatchIndicators(nil, "anything"); score != 0 || reason != "" {
		t.Errorf("Expected zero score for no indicators, got %v %q", score, reason)
	}
}

func TestMatchIndicatorsPartialScore(t *testing.T) {
	score, _ := MatchIndicators([]string{"risk", "mitigation"}, "just the risk")
	if score != 0.5 {
		t.Errorf("Expected 0.5 for 1 of 2 indicators, got %v", score)
	}
}
