package fusion

import (
	"fmt"
	"sort"

	"github.com/everydev1618/gofusion/patterns"
)

// LoadDir registers every pattern definition file found in dir. Loaded
// patterns carry the default safety check. The registry is re-validated
// afterwards so a file introducing a dangling or cyclic fallback fails the
// load, not the first run that hits it.
func (r *Registry) LoadDir(dir string) error {
	defs, err := patterns.LoadDir(dir)
	if err != nil {
		return err
	}

	for _, def := range defs {
		p := Pattern{
			ID:          def.Name,
			Description: def.Description,
			Template:    def.Template,
			Fallback:    def.Fallback,
			Safety:      DefaultSafety,
			Indicators:  def.Indicators,
			Tension:     def.Tension,
		}
		if err := r.Register(p); err != nil {
			return fmt.Errorf("load %s: %w", def.Path(), err)
		}
	}

	return r.Validate()
}

// PatternMatch pairs a registered pattern with its relevance to a brief.
type PatternMatch struct {
	Pattern Pattern
	Score   float64
	Reason  string
}

// Suggest ranks registered patterns by how well their indicators match the
// brief. Patterns with no matching indicator are omitted; ties keep
// registration order.
func (r *Registry) Suggest(brief string) []PatternMatch {
	var matches []PatternMatch
	for _, id := range r.order {
		p := r.patterns[id]
		score, reason := patterns.MatchIndicators(p.Indicators, brief)
		if score > 0 {
			matches = append(matches, PatternMatch{Pattern: p, Score: score, Reason: reason})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}
