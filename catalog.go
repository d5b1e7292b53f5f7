package fusion

// Built-in pattern names.
const (
	StepwiseInsightSynthesis   = "StepwiseInsightSynthesis"
	RoleDirective              = "RoleDirective"
	PatternCritiqueThenRewrite = "PatternCritiqueThenRewrite"
	RiskLens                   = "RiskLens"
	PersonaFramer              = "PersonaFramer"
	SignalExtractor            = "SignalExtractor"
	InversePattern             = "InversePattern"
	ReductionistPrompt         = "ReductionistPrompt"
	StyleTransformer           = "StyleTransformer"
	PatternAmplifier           = "PatternAmplifier"
)

// Built-in agent names.
const (
	StrategyPilot         = "StrategyPilot"
	NarrativeArchitect    = "NarrativeArchitect"
	EvaluatorAgent        = "EvaluatorAgent"
	DesignTechnologist    = "DesignTechnologist"
	CreativeDirector      = "CreativeDirector"
	CriticalDesignAdvisor = "CriticalDesignAdvisor"
	DesignMaestro         = "DesignMaestro"
)

// DefaultPatterns returns the built-in pattern catalog.
// Every pattern carries the default safety check. Fallback links form a DAG
// with PatternCritiqueThenRewrite as the terminal repair pattern.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			ID:          StepwiseInsightSynthesis,
			Description: "Break complex problems into clear numbered steps.",
			Template: `Work through the following as a problem analysis with numbered sections:
1. Context and Requirements
2. Key Components
3. Step-by-Step Solution
4. Implementation Path
5. Success Metrics

{{input}}`,
			Fallback:   RoleDirective,
			Safety:     DefaultSafety,
			Indicators: []string{"requirements", "step", "metrics"},
			Tension:    []string{"depth_vs_breadth", "exploration_vs_optimization"},
		},
		{
			ID:          RoleDirective,
			Description: "Embody a specific role for a specialized perspective.",
			Template: `As {{role}}, analyze the following. State your key considerations,
your recommendations, and implementation notes, all strictly from that
role's perspective.

{{input}}`,
			Fallback:   PatternCritiqueThenRewrite,
			Safety:     DefaultSafety,
			Indicators: []string{"as a", "recommend", "perspective"},
			Tension:    []string{"creative_vs_strategic"},
		},
		{
			ID:          PatternCritiqueThenRewrite,
			Description: "Improve output through structured critique and rewrite.",
			Template: `Critique the following text: name its strengths, then its areas for
improvement in clarity, structure, and substance. Finish with an enhanced
version that fixes every weakness you named.

{{input}}`,
			Safety:     DefaultSafety,
			Indicators: []string{"strength", "improvement", "enhanced"},
			Tension:    []string{"speed_vs_quality"},
		},
		{
			ID:          RiskLens,
			Description: "Analyze content through a risk assessment lens.",
			Template: `Assess the following through a risk lens: identify the top risks with
their likelihood and impact, propose a mitigation for each, and restate the
approach adjusted for those risks.

{{input}}`,
			Fallback:   PatternCritiqueThenRewrite,
			Safety:     DefaultSafety,
			Indicators: []string{"risk", "mitigation"},
			Tension:    []string{"innovation_vs_feasibility", "speed_vs_quality"},
		},
		{
			ID:          PersonaFramer,
			Description: "Frame content for a specific persona.",
			Template: `Reframe the following for {{persona}}. Lead with that persona's key
priorities, address their specific concerns, and tailor the solution to
what they can act on.

{{input}}`,
			Fallback:   RoleDirective,
			Safety:     DefaultSafety,
			Indicators: []string{"priorities", "concerns", "tailored"},
			Tension:    []string{"user_vs_business"},
		},
		{
			ID:          SignalExtractor,
			Description: "Extract key signals and patterns from content.",
			Template: `Extract the signals from the noise in the following. List the key
signals, name the patterns they form, and state the insights those
patterns support.

{{input}}`,
			Fallback:   StepwiseInsightSynthesis,
			Safety:     DefaultSafety,
			Indicators: []string{"signal", "pattern", "insight"},
			Tension:    []string{"depth_vs_breadth"},
		},
		{
			ID:          InversePattern,
			Description: "Analyze the problem from the inverse perspective.",
			Template: `Invert the following: state the inverse problem, analyze the anti-goals
(what a solution must never do), and synthesize a solution informed by the
inversion.

{{input}}`,
			Fallback:   RiskLens,
			Safety:     DefaultSafety,
			Indicators: []string{"inverse", "anti-goal", "synthesi"},
			Tension:    []string{"exploration_vs_optimization"},
		},
		{
			ID:          ReductionistPrompt,
			Description: "Reduce a complex problem to fundamental components.",
			Template: `Reduce the following to its fundamental components. Analyze each core
component on its own, then reconstruct the simplest solution that the
components support.

{{input}}`,
			Fallback:   StepwiseInsightSynthesis,
			Safety:     DefaultSafety,
			Indicators: []string{"core", "component", "reconstructed"},
			Tension:    []string{"depth_vs_breadth", "speed_vs_quality"},
		},
		{
			ID:          StyleTransformer,
			Description: "Transform content style while preserving meaning.",
			Template: `Transform the style of the following to {{style}} while preserving every
substantive point. List the key points you preserved and the style
guidelines you applied.

{{input}}`,
			Fallback:   RoleDirective,
			Safety:     DefaultSafety,
			Indicators: []string{"style", "preserved"},
			Tension:    []string{"creative_vs_strategic"},
		},
		{
			ID:          PatternAmplifier,
			Description: "Amplify the strongest aspects of content.",
			Template: `Amplify the strongest elements of the following: name the elements worth
amplifying, analyze the impact of pushing them further, and produce the
enhanced version.

{{input}}`,
			Fallback:   PatternCritiqueThenRewrite,
			Safety:     DefaultSafety,
			Indicators: []string{"amplif", "impact", "enhanced"},
			Tension:    []string{"vision_vs_execution", "innovation_vs_feasibility"},
		},
	}
}

// DefaultRegistry returns a validated registry of the built-in catalog.
func DefaultRegistry() (*Registry, error) {
	reg := NewRegistry()
	for _, p := range DefaultPatterns() {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// DefaultRoster returns the built-in agent roster.
func DefaultRoster() []Agent {
	return []Agent{
		{
			Name:           StrategyPilot,
			Role:           "a strategy lead who weighs market reality, strategic alignment, and long-term viability before committing",
			DefaultPattern: StepwiseInsightSynthesis,
			Patterns:       []string{StepwiseInsightSynthesis, SignalExtractor, ReductionistPrompt, RiskLens},
		},
		{
			Name:           NarrativeArchitect,
			Role:           "a narrative designer who shapes raw material into an arc with emotional resonance",
			DefaultPattern: RoleDirective,
			Patterns:       []string{RoleDirective, StyleTransformer, PersonaFramer, PatternAmplifier},
		},
		{
			Name:           EvaluatorAgent,
			Role:           "a rigorous reviewer who grades work against explicit criteria and rewrites what falls short",
			DefaultPattern: PatternCritiqueThenRewrite,
			Patterns:       []string{PatternCritiqueThenRewrite, RiskLens, InversePattern},
		},
		{
			Name:           DesignTechnologist,
			Role:           "a design technologist who tests ideas against practical constraints and scalability",
			DefaultPattern: RiskLens,
			Patterns:       []string{RiskLens, ReductionistPrompt, StepwiseInsightSynthesis},
		},
		{
			Name:           CreativeDirector,
			Role:           "a creative director who pushes work toward breakthrough thinking and narrative power",
			DefaultPattern: PatternAmplifier,
			Patterns:       []string{PatternAmplifier, InversePattern, StyleTransformer},
		},
		{
			Name:           CriticalDesignAdvisor,
			Role:           "a critical advisor who stress-tests decisions with objective analysis and quality standards",
			DefaultPattern: InversePattern,
			Patterns:       []string{InversePattern, RiskLens, PatternCritiqueThenRewrite},
		},
		{
			Name:           DesignMaestro,
			Role:           "a user-experience maestro who optimizes journeys and hunts friction",
			DefaultPattern: SignalExtractor,
			Patterns:       []string{SignalExtractor, StepwiseInsightSynthesis, PersonaFramer},
		},
	}
}

// Tensions returns the known creative tension tags in a fixed order.
func Tensions() []string {
	return []string{
		"vision_vs_execution",
		"innovation_vs_feasibility",
		"user_vs_business",
		"creative_vs_strategic",
		"exploration_vs_optimization",
		"depth_vs_breadth",
		"speed_vs_quality",
	}
}

// tensionFraming maps tension tags to a framing sentence appended to the
// agent's role framing. Unknown tags pass through as a generic instruction.
var tensionFraming = map[string]string{
	"vision_vs_execution":         "Hold the tension between long-range vision and concrete execution; let neither win outright.",
	"innovation_vs_feasibility":   "Hold the tension between innovation and feasibility; push novelty only as far as it can be built.",
	"user_vs_business":            "Hold the tension between user needs and business goals; make tradeoffs explicit.",
	"creative_vs_strategic":       "Hold the tension between creative expression and strategic alignment.",
	"exploration_vs_optimization": "Hold the tension between exploring new directions and optimizing the current one.",
	"depth_vs_breadth":            "Hold the tension between going deep on one thread and covering the full surface.",
	"speed_vs_quality":            "Hold the tension between moving fast and meeting the quality bar.",
}
