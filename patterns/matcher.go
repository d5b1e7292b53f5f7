package patterns

import (
	"sort"
	"strings"
)

// Suggest ranks definitions by how well their indicators match the brief.
// Definitions with no matching indicator are omitted. Ties keep input order.
func Suggest(defs []*Definition, brief string) []Suggestion {
	var matches []Suggestion
	for _, def := range defs {
		score, reason := MatchIndicators(def.Indicators, brief)
		if score > 0 {
			matches = append(matches, Suggestion{
				Definition: def,
				Score:      score,
				Reason:     reason,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// MatchIndicators scores how many indicator terms appear in the brief,
// counting simple word variations. Multiple matched terms boost the score.
func MatchIndicators(indicators []string, brief string) (float64, string) {
	if len(indicators) == 0 {
		return 0, ""
	}
	briefLower := strings.ToLower(brief)

	matched := 0
	var matchedTerms []string
	for _, ind := range indicators {
		if containsTerm(briefLower, strings.ToLower(ind)) {
			matched++
			matchedTerms = append(matchedTerms, ind)
		}
	}

	if matched == 0 {
		return 0, ""
	}

	score := float64(matched) / float64(len(indicators))
	if matched > 1 {
		score = score * 1.2
		if score > 1.0 {
			score = 1.0
		}
	}

	return score, "matched indicators: " + strings.Join(matchedTerms, ", ")
}

// containsTerm checks if the brief contains the term or a common variation.
func containsTerm(brief, term string) bool {
	if strings.Contains(brief, term) {
		return true
	}

	for _, v := range termVariations(term) {
		if strings.Contains(brief, v) {
			return true
		}
	}

	return false
}

// termVariations returns common variations of a term.
func termVariations(term string) []string {
	variations := []string{}

	// Plural (simple)
	if !strings.HasSuffix(term, "s") {
		variations = append(variations, term+"s")
	}

	// Past tense (simple)
	if !strings.HasSuffix(term, "ed") {
		if strings.HasSuffix(term, "e") {
			variations = append(variations, term+"d")
		} else {
			variations = append(variations, term+"ed")
		}
	}

	// Present participle
	if !strings.HasSuffix(term, "ing") {
		if strings.HasSuffix(term, "e") {
			variations = append(variations, term[:len(term)-1]+"ing")
		} else {
			variations = append(variations, term+"ing")
		}
	}

	return variations
}
