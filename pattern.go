package fusion

import (
	"fmt"
	"regexp"
	"strings"
)

// SafetyFunc checks generated output and reports whether it is safe to keep.
// A failed safety check is treated like a below-threshold score: the attempt
// is recorded as unsuccessful and the executor falls back.
type SafetyFunc func(output string) bool

// Pattern is a named reusable text-transformation template.
// Patterns are immutable once registered.
type Pattern struct {
	// ID is the unique pattern name.
	ID string

	// Description briefly describes what the pattern does.
	Description string

	// Template is the prompt template. Slots use {{name}} syntax. {{input}}
	// receives the step's running input; {{role}} the agent's role; any
	// step context key is available under its own name.
	Template string

	// Fallback is the pattern id tried when this pattern fails safety or
	// scoring. Empty means no static fallback.
	Fallback string

	// Safety optionally rejects unsafe output.
	Safety SafetyFunc

	// Indicators are substrings whose presence in output marks the pattern
	// as having taken effect. The evaluator's effectiveness dimension and
	// the suggestion matcher read them.
	Indicators []string

	// Tension tags the creative tensions this pattern works well under.
	// They influence persona framing only, never executor decisions.
	Tension []string
}

// slotPattern matches {{slot}} substitution markers in templates.
var slotPattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_.]*)\}\}`)

// Fill substitutes context values into the pattern template.
// Unknown slots are left in place so missing context stays visible.
func (p Pattern) Fill(context map[string]string) string {
	return slotPattern.ReplaceAllStringFunc(p.Template, func(m string) string {
		key := strings.TrimSuffix(strings.TrimPrefix(m, "{{"), "}}")
		if v, ok := context[key]; ok {
			return v
		}
		return m
	})
}

var (
	markerLine  = regexp.MustCompile(`(?m)^(#{3,}|-{3,})`)
	excessBlank = regexp.MustCompile(`\n{3,}`)
	markerOnly  = regexp.MustCompile(`^(#+|-+|\*+|=+)$`)
)

// EscapeSpecialTokens neutralizes structural markers in dynamic text before
// it is substituted into a template: heading and rule markers at line start
// lose their structural role, and runs of blank lines collapse to one.
// The function is idempotent.
func EscapeSpecialTokens(s string) string {
	s = markerLine.ReplaceAllString(s, `\$1`)
	s = excessBlank.ReplaceAllString(s, "\n\n")
	return s
}

// DefaultSafety rejects output dominated by structural marker lines, which
// indicates the generator echoed scaffolding instead of producing content.
func DefaultSafety(output string) bool {
	markers, content := 0, 0
	for _, line := range strings.Split(output, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if markerOnly.MatchString(t) {
			markers++
		} else {
			content++
		}
	}
	return content >= markers
}

// Registry holds pattern definitions for lookup. Registration order is
// preserved; suggestion ranking breaks score ties on it.
type Registry struct {
	patterns map[string]Pattern
	order    []string
}

// NewRegistry creates an empty pattern registry.
func NewRegistry() *Registry {
	return &Registry{patterns: make(map[string]Pattern)}
}

// Register adds a pattern. It fails with ErrDuplicatePattern if the id is
// already taken.
func (r *Registry) Register(p Pattern) error {
	if p.ID == "" {
		return fmt.Errorf("register pattern: empty id")
	}
	if strings.TrimSpace(p.Template) == "" {
		return &PatternError{ID: p.ID, Err: fmt.Errorf("empty template")}
	}
	if _, exists := r.patterns[p.ID]; exists {
		return &PatternError{ID: p.ID, Err: ErrDuplicatePattern}
	}
	r.patterns[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Resolve returns the pattern for id, or ErrUnknownPattern.
func (r *Registry) Resolve(id string) (Pattern, error) {
	p, ok := r.patterns[id]
	if !ok {
		return Pattern{}, &PatternError{ID: id, Err: ErrUnknownPattern}
	}
	return p, nil
}

// FallbackOf returns the configured fallback id for a pattern, if any.
func (r *Registry) FallbackOf(id string) (string, bool) {
	p, ok := r.patterns[id]
	if !ok || p.Fallback == "" {
		return "", false
	}
	return p.Fallback, true
}

// IDs returns all pattern ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Len returns the number of registered patterns.
func (r *Registry) Len() int {
	return len(r.order)
}

// Validate checks that every fallback id resolves and that fallback links
// are acyclic. A cycle is a configuration error surfaced here, at load,
// not at first use.
func (r *Registry) Validate() error {
	for _, id := range r.order {
		seen := map[string]bool{id: true}
		cur := r.patterns[id].Fallback
		for cur != "" {
			next, ok := r.patterns[cur]
			if !ok {
				return &PatternError{ID: cur, Err: ErrUnknownPattern}
			}
			if seen[cur] {
				return &PatternError{ID: id, Err: ErrCyclicFallback}
			}
			seen[cur] = true
			cur = next.Fallback
		}
	}
	return nil
}
