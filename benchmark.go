package fusion

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// PatternScore aggregates one pattern's benchmark performance.
type PatternScore struct {
	PatternID  string
	Composite  float64
	Dimensions map[Dimension]float64
	Samples    int
}

// BenchmarkReport ranks candidate patterns over the sample inputs.
type BenchmarkReport struct {
	Mode             Mode
	Results          []PatternScore
	BestOverall      string
	BestPerDimension map[Dimension]string
}

// benchmarkConfig collects benchmark options.
type benchmarkConfig struct {
	mode     Mode
	patterns []string
	inputs   []string
	vars     map[string]string
}

// BenchmarkOption configures RunBenchmark.
type BenchmarkOption func(*benchmarkConfig)

// WithBenchmarkMode sets the mode whose weights score the samples.
func WithBenchmarkMode(m Mode) BenchmarkOption {
	return func(c *benchmarkConfig) {
		c.mode = m
	}
}

// WithBenchmarkPatterns restricts the benchmark to the given pattern ids.
func WithBenchmarkPatterns(ids ...string) BenchmarkOption {
	return func(c *benchmarkConfig) {
		if len(ids) > 0 {
			c.patterns = ids
		}
	}
}

// WithBenchmarkInputs replaces the default sample inputs.
func WithBenchmarkInputs(inputs ...string) BenchmarkOption {
	return func(c *benchmarkConfig) {
		if len(inputs) > 0 {
			c.inputs = inputs
		}
	}
}

// WithBenchmarkVars overrides template slot values. Defaults cover the
// built-in catalog's slots (role, persona, style).
func WithBenchmarkVars(vars map[string]string) BenchmarkOption {
	return func(c *benchmarkConfig) {
		for k, v := range vars {
			c.vars[k] = v
		}
	}
}

// DefaultBenchmarkInputs returns the standard sample briefs used to compare
// patterns during pattern development.
func DefaultBenchmarkInputs() []string {
	return []string{
		"Design an onboarding flow for a project management tool aimed at small creative agencies.",
		"Our subscription churn doubled last quarter after a pricing change. Propose a recovery strategy.",
		"Plan the launch of an internal knowledge base so support agents stop answering repeat questions.",
	}
}

// RunBenchmark applies each candidate pattern to each sample input, scores
// the generated outputs, and ranks the patterns by mean composite. Ranking
// ties keep registration order. It is a development tool: any generation or
// scoring failure aborts the benchmark.
func RunBenchmark(ctx context.Context, reg *Registry, gen Generator, opts ...BenchmarkOption) (*BenchmarkReport, error) {
	cfg := &benchmarkConfig{
		mode:   DefaultMode,
		inputs: DefaultBenchmarkInputs(),
		vars: map[string]string{
			"role":    "a senior product strategist",
			"persona": "a busy product executive",
			"style":   "a concise executive brief",
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.patterns) == 0 {
		cfg.patterns = reg.IDs()
	}

	weights := WeightsFor(cfg.mode)
	evaluator := NewEvaluator(reg)

	report := &BenchmarkReport{
		Mode:             cfg.mode,
		Results:          make([]PatternScore, 0, len(cfg.patterns)),
		BestPerDimension: make(map[Dimension]string, len(Dimensions())),
	}

	for _, id := range cfg.patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pattern, err := reg.Resolve(id)
		if err != nil {
			return nil, err
		}

		score := PatternScore{
			PatternID:  id,
			Dimensions: make(map[Dimension]float64, len(Dimensions())),
		}
		for _, input := range cfg.inputs {
			vars := map[string]string{"input": EscapeSpecialTokens(input)}
			for k, v := range cfg.vars {
				vars[k] = v
			}

			output, err := gen.Generate(ctx, GenRequest{
				Framing: "You are " + cfg.vars["role"] + ".",
				Prompt:  pattern.Fill(vars),
			})
			if err != nil {
				return nil, fmt.Errorf("benchmark %s: %w", id, err)
			}

			eval, err := evaluator.Score(ScoreInput{
				Output:    output,
				PatternID: id,
				Input:     input,
			}, weights)
			if err != nil {
				return nil, fmt.Errorf("benchmark %s: %w", id, err)
			}

			score.Composite += eval.Composite
			for d, v := range eval.Scores {
				score.Dimensions[d] += v
			}
			score.Samples++
		}

		if score.Samples > 0 {
			score.Composite /= float64(score.Samples)
			for d := range score.Dimensions {
				score.Dimensions[d] /= float64(score.Samples)
			}
		}
		report.Results = append(report.Results, score)
	}

	sort.SliceStable(report.Results, func(i, j int) bool {
		return report.Results[i].Composite > report.Results[j].Composite
	})
	if len(report.Results) > 0 {
		report.BestOverall = report.Results[0].PatternID
	}
	for _, d := range Dimensions() {
		best, bestVal := "", -1.0
		for _, r := range report.Results {
			if v := r.Dimensions[d]; v > bestVal {
				best, bestVal = r.PatternID, v
			}
		}
		if best != "" {
			report.BestPerDimension[d] = best
		}
	}

	return report, nil
}

// Markdown renders the report as a readable ranking.
func (r *BenchmarkReport) Markdown() string {
	var b strings.Builder
	b.WriteString("# Pattern Benchmark\n\n")
	fmt.Fprintf(&b, "Mode: %s\n\n", r.Mode)

	b.WriteString("## Rankings\n\n")
	for i, res := range r.Results {
		fmt.Fprintf(&b, "%d. %s: %.3f composite over %d samples\n",
			i+1, res.PatternID, res.Composite, res.Samples)
		for _, d := range Dimensions() {
			fmt.Fprintf(&b, "   - %s: %.3f\n", d, res.Dimensions[d])
		}
	}

	if len(r.BestPerDimension) > 0 {
		b.WriteString("\n## Best Per Dimension\n\n")
		for _, d := range Dimensions() {
			if id, ok := r.BestPerDimension[d]; ok {
				fmt.Fprintf(&b, "- %s: %s\n", d, id)
			}
		}
	}

	return b.String()
}
