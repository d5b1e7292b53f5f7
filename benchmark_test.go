package fusion

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// echoGen returns the prompt so patterns with richer templates score their
// own structure.
type echoGen struct{}

func (echoGen) Generate(ctx context.Context, req GenRequest) (string, error) {
	return req.Prompt, nil
}

func TestRunBenchmark(t *testing.T) {
	reg := mustRegistry(t)

	report, err := RunBenchmark(context.Background(), reg, echoGen{})
	if err != nil {
		t.Fatalf("RunBenchmark failed: %v", err)
	}

	if len(report.Results) != reg.Len() {
		t.Fatalf("got %d results, want %d", len(report.Results), reg.Len())
	}
	if report.BestOverall != report.Results[0].PatternID {
		t.Errorf("BestOverall = %s, want the top-ranked %s",
			report.BestOverall, report.Results[0].PatternID)
	}

	for i := 1; i < len(report.Results); i++ {
		if report.Results[i].Composite > report.Results[i-1].Composite {
			t.Fatalf("results not sorted: %v before %v",
				report.Results[i-1], report.Results[i])
		}
	}

	for _, res := range report.Results {
		if res.Samples != len(DefaultBenchmarkInputs()) {
			t.Errorf("%s scored %d samples, want %d",
				res.PatternID, res.Samples, len(DefaultBenchmarkInputs()))
		}
		for _, d := range Dimensions() {
			v, ok := res.Dimensions[d]
			if !ok {
				t.Errorf("%s missing dimension %s", res.PatternID, d)
			}
			if v < 0 || v > 1 {
				t.Errorf("%s %s = %v, want [0,1]", res.PatternID, d, v)
			}
		}
	}

	for _, d := range Dimensions() {
		if _, ok := report.BestPerDimension[d]; !ok {
			t.Errorf("BestPerDimension missing %s", d)
		}
	}
}

func TestRunBenchmarkDeterministic(t *testing.T) {
	reg := mustRegistry(t)

	first, err := RunBenchmark(context.Background(), reg, echoGen{},
		WithBenchmarkPatterns(RiskLens, SignalExtractor))
	if err != nil {
		t.Fatal(err)
	}
	second, err := RunBenchmark(context.Background(), reg, echoGen{},
		WithBenchmarkPatterns(RiskLens, SignalExtractor))
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Results) != 2 || len(second.Results) != 2 {
		t.Fatalf("got %d/%d results, want 2 each", len(first.Results), len(second.Results))
	}
	for i := range first.Results {
		if first.Results[i].PatternID != second.Results[i].PatternID ||
			first.Results[i].Composite != second.Results[i].Composite {
			t.Errorf("run %d differs: %v vs %v", i, first.Results[i], second.Results[i])
		}
	}
}

func TestRunBenchmarkUnknownPattern(t *testing.T) {
	reg := mustRegistry(t)

	_, err := RunBenchmark(context.Background(), reg, echoGen{},
		WithBenchmarkPatterns("NoSuchPattern"))
	if !errors.Is(err, ErrUnknownPattern) {
		t.Errorf("error = %v, want ErrUnknownPattern", err)
	}
}

func TestRunBenchmarkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunBenchmark(ctx, mustRegistry(t), echoGen{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestBenchmarkReportMarkdown(t *testing.T) {
	report, err := RunBenchmark(context.Background(), mustRegistry(t), echoGen{},
		WithBenchmarkPatterns(RiskLens, StepwiseInsightSynthesis),
		WithBenchmarkMode(ModeCritique))
	if err != nil {
		t.Fatal(err)
	}

	md := report.Markdown()
	for _, want := range []string{
		"# Pattern Benchmark",
		"Mode: critique",
		"## Rankings",
		"1. ",
		RiskLens,
		StepwiseInsightSynthesis,
		"## Best Per Dimension",
		"- clarity: ",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}
