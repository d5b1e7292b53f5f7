package fusion

import (
	"errors"
	"strings"
	"testing"
)

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	return reg
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(Pattern{ID: "A", Template: "{{input}}"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := reg.Register(Pattern{ID: "A", Template: "again"})
		if !errors.Is(err, ErrDuplicatePattern) {
			t.Errorf("error = %v, want ErrDuplicatePattern", err)
		}
		var perr *PatternError
		if !errors.As(err, &perr) || perr.ID != "A" {
			t.Errorf("error should name the pattern, got %v", err)
		}
	})

	t.Run("empty id rejected", func(t *testing.T) {
		if err := reg.Register(Pattern{Template: "x"}); err == nil {
			t.Error("empty id should fail")
		}
	})

	t.Run("empty template rejected", func(t *testing.T) {
		if err := reg.Register(Pattern{ID: "B", Template: "  \n "}); err == nil {
			t.Error("blank template should fail")
		}
	})
}

func TestRegistryResolve(t *testing.T) {
	reg := mustRegistry(t)

	p, err := reg.Resolve(RiskLens)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.ID != RiskLens {
		t.Errorf("resolved %s, want %s", p.ID, RiskLens)
	}

	_, err = reg.Resolve("NoSuchPattern")
	if !errors.Is(err, ErrUnknownPattern) {
		t.Errorf("error = %v, want ErrUnknownPattern", err)
	}
}

func TestRegistryIDsKeepOrder(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"C", "A", "B"} {
		if err := reg.Register(Pattern{ID: id, Template: "t"}); err != nil {
			t.Fatal(err)
		}
	}
	got := reg.IDs()
	want := []string{"C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDs = %v, want %v", got, want)
		}
	}
}

func TestRegistryFallbackOf(t *testing.T) {
	reg := mustRegistry(t)

	if fb, ok := reg.FallbackOf(StepwiseInsightSynthesis); !ok || fb != RoleDirective {
		t.Errorf("fallback = %q/%v, want %s", fb, ok, RoleDirective)
	}
	// Terminal pattern has none.
	if _, ok := reg.FallbackOf(PatternCritiqueThenRewrite); ok {
		t.Error("terminal pattern should have no fallback")
	}
	if _, ok := reg.FallbackOf("NoSuchPattern"); ok {
		t.Error("unknown pattern should have no fallback")
	}
}

func TestRegistryValidate(t *testing.T) {
	t.Run("dangling fallback", func(t *testing.T) {
		reg := NewRegistry()
		if err := reg.Register(Pattern{ID: "A", Template: "t", Fallback: "Missing"}); err != nil {
			t.Fatal(err)
		}
		if err := reg.Validate(); !errors.Is(err, ErrUnknownPattern) {
			t.Errorf("error = %v, want ErrUnknownPattern", err)
		}
	})

	t.Run("two-step cycle", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register(Pattern{ID: "A", Template: "t", Fallback: "B"})
		reg.Register(Pattern{ID: "B", Template: "t", Fallback: "A"})
		if err := reg.Validate(); !errors.Is(err, ErrCyclicFallback) {
			t.Errorf("error = %v, want ErrCyclicFallback", err)
		}
	})

	t.Run("self cycle", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register(Pattern{ID: "A", Template: "t", Fallback: "A"})
		if err := reg.Validate(); !errors.Is(err, ErrCyclicFallback) {
			t.Errorf("error = %v, want ErrCyclicFallback", err)
		}
	})

	t.Run("shared tail is not a cycle", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register(Pattern{ID: "A", Template: "t", Fallback: "C"})
		reg.Register(Pattern{ID: "B", Template: "t", Fallback: "C"})
		reg.Register(Pattern{ID: "C", Template: "t"})
		if err := reg.Validate(); err != nil {
			t.Errorf("two patterns may share a fallback: %v", err)
		}
	})
}

func TestPatternFill(t *testing.T) {
	p := Pattern{
		ID:       "T",
		Template: "As {{role}}, review {{input}} for {{audience}}.",
	}

	got := p.Fill(map[string]string{
		"role":  "a strategist",
		"input": "the Q3 plan",
	})
	want := "As a strategist, review the Q3 plan for {{audience}}."
	if got != want {
		t.Errorf("Fill = %q, want %q", got, want)
	}
}

func TestPatternFillDottedSlot(t *testing.T) {
	p := Pattern{ID: "T", Template: "prior: {{output.StrategyPilot}}"}
	got := p.Fill(map[string]string{"output.StrategyPilot": "the brief"})
	if got != "prior: the brief" {
		t.Errorf("Fill = %q", got)
	}
}

func TestEscapeSpecialTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "heading run escaped",
			in:   "### not a heading",
			want: `\### not a heading`,
		},
		{
			name: "rule escaped",
			in:   "before\n---\nafter",
			want: "before\n\\---\nafter",
		},
		{
			name: "short markers untouched",
			in:   "## heading\n- item",
			want: "## heading\n- item",
		},
		{
			name: "blank run collapsed",
			in:   "a\n\n\n\nb",
			want: "a\n\nb",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeSpecialTokens(tt.in)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if again := EscapeSpecialTokens(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestDefaultSafety(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"plain prose", "A clear answer with substance.", true},
		{"marker heavy", "###\n---\n***\nonly one real line", false},
		{"balanced", "---\nreal content\nmore content", true},
		{"empty lines ignored", "\n\ncontent\n\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultSafety(tt.output); got != tt.want {
				t.Errorf("DefaultSafety(%q) = %v, want %v", tt.output, got, tt.want)
			}
		})
	}
}

func TestDefaultPatternsCatalog(t *testing.T) {
	reg := mustRegistry(t)

	if reg.Len() != len(DefaultPatterns()) {
		t.Fatalf("registry has %d patterns, want %d", reg.Len(), len(DefaultPatterns()))
	}

	// Every fallback resolves and chains terminate.
	if err := reg.Validate(); err != nil {
		t.Fatalf("catalog should validate: %v", err)
	}

	for _, p := range DefaultPatterns() {
		if !strings.Contains(p.Template, "{{input}}") {
			t.Errorf("%s template lacks the input slot", p.ID)
		}
		if p.Safety == nil {
			t.Errorf("%s lacks a safety check", p.ID)
		}
		if p.Description == "" {
			t.Errorf("%s lacks a description", p.ID)
		}
	}
}
