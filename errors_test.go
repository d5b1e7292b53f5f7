package fusion

import (
	"errors"
	"testing"
)

func TestStandardErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrUnknownPattern", ErrUnknownPattern, "unknown pattern"},
		{"ErrDuplicatePattern", ErrDuplicatePattern, "pattern already registered"},
		{"ErrCyclicFallback", ErrCyclicFallback, "fallback chain contains a cycle"},
		{"ErrUnknownMode", ErrUnknownMode, "unknown execution mode"},
		{"ErrUnknownAgent", ErrUnknownAgent, "unknown agent"},
		{"ErrGenerationUnavailable", ErrGenerationUnavailable, "text generation unavailable"},
		{"ErrEmptyOutput", ErrEmptyOutput, "generator returned empty output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("%s.Error() = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestStepError(t *testing.T) {
	err := &StepError{
		Step:  2,
		Agent: "StrategyPilot",
		Err:   ErrGenerationUnavailable,
	}

	want := "step 2 (StrategyPilot): text generation unavailable"
	if got := err.Error(); got != want {
		t.Errorf("StepError.Error() = %q, want %q", got, want)
	}

	// Test Unwrap
	if got := err.Unwrap(); got != ErrGenerationUnavailable {
		t.Errorf("StepError.Unwrap() = %v, want %v", got, ErrGenerationUnavailable)
	}

	// Test errors.Is
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Error("errors.Is(StepError, ErrGenerationUnavailable) should be true")
	}
}

func TestPatternError(t *testing.T) {
	err := &PatternError{
		ID:  "RiskLens",
		Err: ErrUnknownPattern,
	}

	want := "pattern RiskLens: unknown pattern"
	if got := err.Error(); got != want {
		t.Errorf("PatternError.Error() = %q, want %q", got, want)
	}

	// Test Unwrap
	if got := err.Unwrap(); got != ErrUnknownPattern {
		t.Errorf("PatternError.Unwrap() = %v, want %v", got, ErrUnknownPattern)
	}

	// Test errors.Is
	if !errors.Is(err, ErrUnknownPattern) {
		t.Error("errors.Is(PatternError, ErrUnknownPattern) should be true")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "with field only",
			err: &ValidationError{
				Field:   "steps",
				Message: "required field is missing",
			},
			want: "steps: required field is missing",
		},
		{
			name: "with file and field",
			err: &ValidationError{
				File:    "brand.fusion.yaml",
				Field:   "steps[1].agent",
				Message: "unknown agent",
			},
			want: "brand.fusion.yaml: steps[1].agent: unknown agent",
		},
		{
			name: "with hint",
			err: &ValidationError{
				Field:   "mode",
				Message: "unknown execution mode \"deploy\"",
				Hint:    "valid modes are simulate, ship, critique",
			},
			want: "mode: unknown execution mode \"deploy\"\n  hint: valid modes are simulate, ship, critique",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	baseErr := errors.New("connection refused")
	stepErr := &StepError{
		Step:  0,
		Agent: "EvaluatorAgent",
		Err:   &PatternError{ID: "RoleDirective", Err: baseErr},
	}

	// Should be able to unwrap to the base error
	var unwrapped error = stepErr
	for {
		next := errors.Unwrap(unwrapped)
		if next == nil {
			break
		}
		unwrapped = next
	}

	if unwrapped != baseErr {
		t.Errorf("Final unwrapped error = %v, want %v", unwrapped, baseErr)
	}
}
