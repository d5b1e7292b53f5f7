package fusion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const chainYAML = `
name: brand-campaign
description: shape a product story for launch
mode: ship
adaptive: false
share_outputs: true
agents:
  - name: BrandStrategist
    role: a brand strategy lead
    default_pattern: RoleDirective
    patterns: [RoleDirective, PersonaFramer]
steps:
  - agent: BrandStrategist
    pattern: RoleDirective
    tension: brand_vs_performance
    context:
      role: brand strategist
  - agent: NarrativeArchitect
    threshold: 0.8
  - agent: EvaluatorAgent
    pattern: PatternCritiqueThenRewrite
`

func defaultRoster() *Roster {
	return NewRoster(DefaultRoster()...)
}

func TestParseChain(t *testing.T) {
	c, err := ParseChain([]byte(chainYAML))
	if err != nil {
		t.Fatalf("ParseChain failed: %v", err)
	}

	if c.Name != "brand-campaign" {
		t.Errorf("Name = %q, want brand-campaign", c.Name)
	}
	if c.Mode != "ship" {
		t.Errorf("Mode = %q, want ship", c.Mode)
	}
	if c.Adaptive == nil || *c.Adaptive {
		t.Error("Adaptive should be explicitly false")
	}
	if !c.ShareOutputs {
		t.Error("ShareOutputs should be true")
	}
	if len(c.Steps) != 3 {
		t.Fatalf("parsed %d steps, want 3", len(c.Steps))
	}
	if c.Steps[0].Context["role"] != "brand strategist" {
		t.Errorf("step 0 context = %v", c.Steps[0].Context)
	}
	if c.Steps[1].Threshold == nil || *c.Steps[1].Threshold != 0.8 {
		t.Errorf("step 1 threshold = %v, want 0.8", c.Steps[1].Threshold)
	}
	if c.Steps[2].Pattern != PatternCritiqueThenRewrite {
		t.Errorf("step 2 pattern = %q", c.Steps[2].Pattern)
	}
	if len(c.Agents) != 1 || c.Agents[0].Name != "BrandStrategist" {
		t.Fatalf("inline agents = %+v", c.Agents)
	}
	if len(c.Agents[0].Patterns) != 2 {
		t.Errorf("inline agent pool = %v", c.Agents[0].Patterns)
	}
}

func TestParseChainBadYAML(t *testing.T) {
	if _, err := ParseChain([]byte("steps: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseChainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brand.fusion.yaml")
	if err := os.WriteFile(path, []byte(chainYAML), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := ParseChainFile(path)
	if err != nil {
		t.Fatalf("ParseChainFile failed: %v", err)
	}
	if c.Name != "brand-campaign" {
		t.Errorf("Name = %q, want brand-campaign", c.Name)
	}

	// Validation failures report the source file.
	c.Steps[0].Agent = "BrandStrategst"
	err = c.Validate(mustRegistry(t), defaultRoster())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Validate error = %v, want *ValidationError", err)
	}
	if ve.File != path {
		t.Errorf("error file = %q, want %q", ve.File, path)
	}
	if !strings.Contains(ve.Hint, "BrandStrategist") {
		t.Errorf("hint %q should suggest BrandStrategist", ve.Hint)
	}
}

func TestParseChainFileMissing(t *testing.T) {
	if _, err := ParseChainFile(filepath.Join(t.TempDir(), "nope.fusion.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestChainValidate(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name      string
		chain     *Chain
		wantField string
	}{
		{
			name:      "no steps",
			chain:     &Chain{Name: "empty"},
			wantField: "steps",
		},
		{
			name: "unknown mode",
			chain: &Chain{
				Mode:  "deploy",
				Steps: []ChainStep{{Agent: StrategyPilot}},
			},
			wantField: "mode",
		},
		{
			name: "step without agent",
			chain: &Chain{
				Steps: []ChainStep{{Pattern: RiskLens}},
			},
			wantField: "steps[0].agent",
		},
		{
			name: "unknown agent",
			chain: &Chain{
				Steps: []ChainStep{
					{Agent: StrategyPilot},
					{Agent: "MysteryAgent"},
				},
			},
			wantField: "steps[1].agent",
		},
		{
			name: "unknown pattern",
			chain: &Chain{
				Steps: []ChainStep{{Agent: StrategyPilot, Pattern: "RiskLense"}},
			},
			wantField: "steps[0].pattern",
		},
		{
			name: "threshold out of range",
			chain: &Chain{
				Steps: []ChainStep{{Agent: StrategyPilot, Threshold: f(1.5)}},
			},
			wantField: "steps[0].threshold",
		},
		{
			name: "inline agent without name",
			chain: &Chain{
				Agents: []AgentSpec{{Role: "a ghost"}},
				Steps:  []ChainStep{{Agent: StrategyPilot}},
			},
			wantField: "agents[0].name",
		},
		{
			name: "inline agent bad default",
			chain: &Chain{
				Agents: []AgentSpec{{Name: "X", DefaultPattern: "Nope"}},
				Steps:  []ChainStep{{Agent: StrategyPilot}},
			},
			wantField: "agents[0].default_pattern",
		},
	}

	reg := mustRegistry(t)
	roster := defaultRoster()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chain.Validate(reg, roster)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}

	t.Run("valid chain passes", func(t *testing.T) {
		c, err := ParseChain([]byte(chainYAML))
		if err != nil {
			t.Fatal(err)
		}
		if err := c.Validate(reg, roster); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})

	t.Run("inline agent satisfies step reference", func(t *testing.T) {
		c := &Chain{
			Agents: []AgentSpec{{Name: "Guest", Role: "a guest", DefaultPattern: RiskLens}},
			Steps:  []ChainStep{{Agent: "Guest"}},
		}
		if err := c.Validate(reg, roster); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})
}

func TestDefaultChain(t *testing.T) {
	c := DefaultChain()
	if err := c.Validate(mustRegistry(t), defaultRoster()); err != nil {
		t.Fatalf("default chain should validate: %v", err)
	}

	want := []struct{ agent, pattern string }{
		{StrategyPilot, StepwiseInsightSynthesis},
		{NarrativeArchitect, RoleDirective},
		{EvaluatorAgent, PatternCritiqueThenRewrite},
	}
	if len(c.Steps) != len(want) {
		t.Fatalf("default chain has %d steps, want %d", len(c.Steps), len(want))
	}
	for i, w := range want {
		if c.Steps[i].Agent != w.agent || c.Steps[i].Pattern != w.pattern {
			t.Errorf("step %d = %s/%s, want %s/%s",
				i, c.Steps[i].Agent, c.Steps[i].Pattern, w.agent, w.pattern)
		}
	}
}

func TestApplyAgents(t *testing.T) {
	base := defaultRoster()
	before := base.Len()

	c := &Chain{Agents: []AgentSpec{{Name: "Guest", Role: "a guest", DefaultPattern: RiskLens}}}
	merged := c.ApplyAgents(base)

	if base.Len() != before {
		t.Error("ApplyAgents modified the base roster")
	}
	if _, ok := merged.Get("Guest"); !ok {
		t.Error("merged roster missing inline agent")
	}
	if _, ok := merged.Get(StrategyPilot); !ok {
		t.Error("merged roster missing base agent")
	}
}

func TestAdaptiveEnabled(t *testing.T) {
	b := func(v bool) *bool { return &v }

	tests := []struct {
		name     string
		adaptive *bool
		def      bool
		want     bool
	}{
		{"unset uses default true", nil, true, true},
		{"unset uses default false", nil, false, false},
		{"explicit false wins", b(false), true, false},
		{"explicit true wins", b(true), false, true},
	}
	for _, tt := range tests {
		c := &Chain{Adaptive: tt.adaptive}
		if got := c.AdaptiveEnabled(tt.def); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAgentSpecAgent(t *testing.T) {
	spec := AgentSpec{Name: "Solo", Role: "a specialist", DefaultPattern: RiskLens}
	a := spec.Agent()
	if len(a.Patterns) != 1 || a.Patterns[0] != RiskLens {
		t.Errorf("pool = %v, want just the default pattern", a.Patterns)
	}

	spec.Patterns = []string{RiskLens, InversePattern}
	a = spec.Agent()
	if len(a.Patterns) != 2 {
		t.Errorf("pool = %v, want explicit pool", a.Patterns)
	}
}
