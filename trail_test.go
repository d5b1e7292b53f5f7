package fusion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleTrail() *Trail {
	t := NewTrail("default", ModeSimulate, "plan the rollout")
	t.Records = []ExecutionRecord{
		{
			Step: 0, Agent: StrategyPilot, Attempt: 1,
			RequestedPattern: StepwiseInsightSynthesis,
			Pattern:          StepwiseInsightSynthesis,
			Input:            "plan the rollout",
			Output:           "step one: define the pilot cohort",
			Scores:           map[Dimension]float64{DimClarity: 0.8, DimInnovation: 0.5},
			Composite:        0.55, Threshold: 0.6,
			Outcome: OutcomeRejected,
		},
		{
			Step: 0, Agent: StrategyPilot, Attempt: 2,
			RequestedPattern: StepwiseInsightSynthesis,
			Pattern:          RoleDirective,
			Input:            "plan the rollout",
			Output:           "as a strategist, I recommend a phased pilot",
			Scores:           map[Dimension]float64{DimClarity: 0.9, DimInnovation: 0.6},
			Composite:        0.72, Threshold: 0.6,
			Outcome: OutcomeAccepted,
		},
		{
			Step: 1, Agent: NarrativeArchitect, Attempt: 1,
			RequestedPattern: RoleDirective,
			Pattern:          RoleDirective,
			Input:            "as a strategist, I recommend a phased pilot",
			Output:           "the story of a careful launch",
			Scores:           map[Dimension]float64{DimClarity: 0.85},
			Composite:        0.81, Threshold: 0.6,
			Outcome: OutcomeAccepted,
		},
	}
	t.FinalOutput = "the story of a careful launch"
	t.CompletedAt = t.StartedAt.Add(2 * time.Second)
	return t
}

func TestNewTrailRunID(t *testing.T) {
	a := NewTrail("default", ModeSimulate, "x")
	b := NewTrail("default", ModeSimulate, "x")

	if len(a.RunID) != 8 {
		t.Errorf("run id %q should be 8 chars", a.RunID)
	}
	if a.RunID == b.RunID {
		t.Error("run ids should be unique")
	}
}

func TestTrailKeptAndFallbacks(t *testing.T) {
	trail := sampleTrail()

	kept := trail.Kept()
	if len(kept) != 2 {
		t.Fatalf("kept %d records, want 2", len(kept))
	}
	if kept[0].Pattern != RoleDirective || kept[1].Agent != NarrativeArchitect {
		t.Errorf("kept wrong records: %+v", kept)
	}
	if got := trail.Fallbacks(); got != 1 {
		t.Errorf("Fallbacks() = %d, want 1", got)
	}
}

func TestTrailSummary(t *testing.T) {
	trail := sampleTrail()
	sum := trail.Summary()

	if sum.RunID != trail.RunID {
		t.Errorf("RunID = %q, want %q", sum.RunID, trail.RunID)
	}
	if sum.Steps != 2 {
		t.Errorf("Steps = %d, want 2", sum.Steps)
	}
	if sum.Fallbacks != 1 {
		t.Errorf("Fallbacks = %d, want 1", sum.Fallbacks)
	}
	want := (0.72 + 0.81) / 2
	if diff := sum.Composite - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Composite = %v, want %v", sum.Composite, want)
	}
}

func TestTrailMarkdown(t *testing.T) {
	report := sampleTrail().Markdown()

	for _, want := range []string{
		"# Chain Execution Report",
		"Chain: default (simulate)",
		"### Step 1: StrategyPilot\n",
		"### Step 1: StrategyPilot (attempt 2)",
		"Pattern: RoleDirective (requested StepwiseInsightSynthesis)",
		"Outcome: rejected",
		"Outcome: accepted",
		"Composite: 0.72 (threshold 0.60)",
		"- clarity: 0.90",
		"Output Preview:",
		"### Step 2: NarrativeArchitect",
		"## Final Output",
		"the story of a careful launch",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestTrailMarkdownTruncated(t *testing.T) {
	trail := sampleTrail()
	trail.Truncated = true

	if !strings.Contains(trail.Markdown(), "stopped at the time budget") {
		t.Error("truncated trail should carry the budget notice")
	}
}

func TestPreviewCutsLongOutput(t *testing.T) {
	long := strings.Repeat("a", DefaultPreviewLen+50)
	got := preview(long)

	if len([]rune(got)) != DefaultPreviewLen+3 {
		t.Errorf("preview length = %d, want %d", len([]rune(got)), DefaultPreviewLen+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("long preview should end with ellipsis")
	}
	if preview("short") != "short" {
		t.Error("short text should pass through")
	}
}

func TestTrailWriteFiles(t *testing.T) {
	dir := t.TempDir()
	trail := sampleTrail()

	mdPath := filepath.Join(dir, "trails", trail.RunID+".md")
	if err := trail.WriteMarkdown(mdPath); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}
	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(md), "# Chain Execution Report") {
		t.Error("written report missing title")
	}

	jsonPath := filepath.Join(dir, "trails", trail.RunID+".json")
	if err := trail.WriteJSON(jsonPath); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var loaded Trail
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal trail: %v", err)
	}
	if loaded.RunID != trail.RunID || len(loaded.Records) != 3 {
		t.Errorf("loaded trail = %s with %d records", loaded.RunID, len(loaded.Records))
	}
}
