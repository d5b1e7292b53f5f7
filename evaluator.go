package fusion

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Dimension identifies one quality dimension scored by the Evaluator.
type Dimension string

// The fixed dimension set.
const (
	DimClarity       Dimension = "clarity"
	DimStructure     Dimension = "structure"
	DimRelevance     Dimension = "relevance"
	DimFeasibility   Dimension = "feasibility"
	DimInnovation    Dimension = "innovation"
	DimEffectiveness Dimension = "effectiveness"
)

// Dimensions returns the fixed dimension set in canonical order.
func Dimensions() []Dimension {
	return []Dimension{
		DimClarity,
		DimStructure,
		DimRelevance,
		DimFeasibility,
		DimInnovation,
		DimEffectiveness,
	}
}

// Weights maps dimensions to relative weight. Weights need not sum to one;
// the composite normalizes by the sum. A zero sum falls back to an
// equal-weight mean.
type Weights map[Dimension]float64

// ScoreInput carries the text under evaluation and the context the scoring
// heuristics may consult. Only Output is required.
type ScoreInput struct {
	// Output is the generated text under evaluation.
	Output string

	// PatternID is the pattern actually used, for the effectiveness
	// dimension. Unknown or empty ids score a neutral 0.7.
	PatternID string

	// Input is the step's input text, anchoring the relevance dimension.
	Input string

	// Context holds the step's substitution values; relevance treats them
	// as reference vocabulary alongside Input.
	Context map[string]string
}

// Evaluation holds per-dimension scores and the weighted composite,
// all in [0,1].
type Evaluation struct {
	Scores    map[Dimension]float64
	Composite float64
}

// Evaluator scores generated text on the fixed dimension set. Scoring is
// pure and deterministic: identical input and weights yield identical
// scores across calls. The only failure is empty output.
type Evaluator struct {
	registry *Registry
}

// NewEvaluator creates an evaluator. The registry supplies per-pattern
// indicators for the effectiveness dimension; nil disables that signal and
// effectiveness scores neutral.
func NewEvaluator(reg *Registry) *Evaluator {
	return &Evaluator{registry: reg}
}

// Score evaluates output text against the given weights.
// It fails only with ErrEmptyOutput.
func (e *Evaluator) Score(in ScoreInput, weights Weights) (*Evaluation, error) {
	if strings.TrimSpace(in.Output) == "" {
		return nil, ErrEmptyOutput
	}

	scores := map[Dimension]float64{
		DimClarity:       scoreClarity(in.Output),
		DimStructure:     scoreStructure(in.Output),
		DimRelevance:     scoreRelevance(in.Output, in.Input, in.Context),
		DimFeasibility:   scoreFeasibility(in.Output),
		DimInnovation:    scoreInnovation(in.Output),
		DimEffectiveness: e.scoreEffectiveness(in.Output, in.PatternID),
	}

	var sum, weighted float64
	for _, d := range Dimensions() {
		w := weights[d]
		if w < 0 {
			w = 0
		}
		sum += w
		weighted += w * scores[d]
	}

	var composite float64
	if sum > 0 {
		composite = weighted / sum
	} else {
		for _, d := range Dimensions() {
			composite += scores[d]
		}
		composite /= float64(len(scores))
	}

	return &Evaluation{Scores: scores, Composite: clamp01(composite)}, nil
}

var (
	sectionBreak = regexp.MustCompile(`\n\n|\n[-*•]`)
	endPunct     = regexp.MustCompile(`[.!?]\s*$`)
	bulletLine   = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])\s+`)
	headingLine  = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	numberToken  = regexp.MustCompile(`\b\d`)
	wordToken    = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9'-]{3,}`)
)

// scoreClarity combines a length base with section, capitalization, and
// terminal punctuation modifiers.
func scoreClarity(text string) float64 {
	trimmed := strings.TrimSpace(text)
	base := 0.2
	if len(trimmed) > 20 {
		base = 1.0
	}

	mods := [3]float64{0.8, 0.9, 0.9}
	if sectionBreak.MatchString(text) {
		mods[0] = 1.0
	}
	if r := []rune(trimmed); len(r) > 0 && unicode.IsUpper(r[0]) {
		mods[1] = 1.0
	}
	if endPunct.MatchString(trimmed) {
		mods[2] = 1.0
	}

	return clamp01(base * (mods[0] + mods[1] + mods[2]) / 3)
}

// scoreStructure rewards visible structure: paragraph breaks, list items,
// headings, and multiple lines.
func scoreStructure(text string) float64 {
	score := 0.25
	if strings.Contains(text, "\n\n") {
		score += 0.25
	}
	switch n := len(bulletLine.FindAllString(text, -1)); {
	case n >= 2:
		score += 0.3
	case n == 1:
		score += 0.15
	}
	if headingLine.MatchString(text) {
		score += 0.1
	}
	if strings.Count(text, "\n") >= 2 {
		score += 0.1
	}
	return clamp01(score)
}

// scoreRelevance measures vocabulary overlap between the output and the
// step's input and context values. Covering half the reference vocabulary
// counts as fully relevant; with no reference the dimension is neutral.
func scoreRelevance(output, input string, context map[string]string) float64 {
	ref := input
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ref += " " + context[k]
	}

	refSet := tokenSet(ref)
	if len(refSet) == 0 {
		return 0.6
	}
	outSet := tokenSet(output)
	hits := 0
	for tok := range refSet {
		if outSet[tok] {
			hits++
		}
	}
	return clamp01(0.3 + 1.4*float64(hits)/float64(len(refSet)))
}

// tokenSet lowercases and keeps words of four or more characters, dropping
// common fillers.
func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range wordToken.FindAllString(strings.ToLower(s), -1) {
		if fillerWords[w] {
			continue
		}
		set[w] = true
	}
	return set
}

var fillerWords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "have": true,
	"will": true, "would": true, "their": true, "there": true, "about": true,
	"into": true, "them": true, "then": true, "than": true, "these": true,
	"those": true, "when": true, "what": true, "which": true, "while": true,
	"your": true, "should": true, "could": true, "been": true, "were": true,
	"they": true, "over": true, "only": true, "also": true, "some": true,
	"such": true, "must": true, "each": true, "very": true, "more": true,
	"most": true, "through": true, "following": true,
}

var actionWords = []string{
	"build", "test", "measure", "ship", "define", "choose", "start",
	"implement", "cut", "step", "first", "then", "next",
}

var hedgeWords = []string{
	"maybe", "somehow", "possibly", "someday", "eventually", "unclear",
}

// scoreFeasibility rewards concrete, actionable text: action verbs,
// numbers, and an absence of hedging.
func scoreFeasibility(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.4

	actions := 0
	for _, w := range actionWords {
		if strings.Contains(lower, w) {
			actions++
		}
	}
	switch {
	case actions >= 3:
		score += 0.3
	case actions >= 1:
		score += 0.15
	}

	if numberToken.MatchString(text) {
		score += 0.15
	}

	hedges := 0
	for _, w := range hedgeWords {
		hedges += strings.Count(lower, w)
	}
	if hedges == 0 {
		score += 0.15
	} else {
		score -= 0.1 * float64(hedges)
	}

	return clamp01(score)
}

var innovationGroups = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bnew\b|novel|innovat`),
	regexp.MustCompile(`(?i)unique|creative|original`),
	regexp.MustCompile(`(?i)breakthrough|revolutionary|transformative|reframe|invert`),
}

// scoreInnovation rewards novelty signals but penalizes buzzword floods:
// the score peaks when signals appear in moderation.
func scoreInnovation(text string) float64 {
	groups, total := 0, 0
	for _, re := range innovationGroups {
		m := re.FindAllString(text, -1)
		if len(m) > 0 {
			groups++
		}
		total += len(m)
	}
	if groups == 0 {
		return 0.35
	}

	score := 0.45 + 0.55*float64(groups)/float64(len(innovationGroups))
	if words := len(strings.Fields(text)); words > 0 {
		density := float64(total) / float64(words) * 100
		if density > 4 {
			score -= 0.08 * (density - 4)
		}
	}
	return clamp01(score)
}

// scoreEffectiveness checks the pattern's indicator substrings in the
// output. Unknown patterns and patterns without indicators score a
// neutral 0.7.
func (e *Evaluator) scoreEffectiveness(output, patternID string) float64 {
	if e.registry == nil || patternID == "" {
		return 0.7
	}
	p, err := e.registry.Resolve(patternID)
	if err != nil || len(p.Indicators) == 0 {
		return 0.7
	}
	lower := strings.ToLower(output)
	hits := 0
	for _, ind := range p.Indicators {
		if strings.Contains(lower, strings.ToLower(ind)) {
			hits++
		}
	}
	return clamp01(0.3 + 0.7*float64(hits)/float64(len(p.Indicators)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
