package fusion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StepOutcome is the terminal state of one step attempt.
type StepOutcome string

// Attempt outcomes.
const (
	// OutcomeAccepted means the attempt cleared the threshold and safety
	// check.
	OutcomeAccepted StepOutcome = "accepted"

	// OutcomeRejected means the attempt fell short and a fallback attempt
	// followed.
	OutcomeRejected StepOutcome = "rejected"

	// OutcomeExhausted means no attempt cleared the bar; the best attempt
	// was kept with a warning.
	OutcomeExhausted StepOutcome = "exhausted"
)

// ExecutionRecord is one step attempt. Fallback retries append additional
// records for the same step, with Attempt counting up from 1.
type ExecutionRecord struct {
	Step             int                   `json:"step"`
	Agent            string                `json:"agent"`
	RequestedPattern string                `json:"requested_pattern"`
	Pattern          string                `json:"pattern"`
	Input            string                `json:"input"`
	Output           string                `json:"output"`
	Scores           map[Dimension]float64 `json:"scores"`
	Composite        float64               `json:"composite"`
	Threshold        float64               `json:"threshold"`
	Outcome          StepOutcome           `json:"outcome"`
	Attempt          int                   `json:"attempt"`
	Warning          string                `json:"warning,omitempty"`
	Timestamp        time.Time             `json:"timestamp"`
}

// Trail is the full record of one chain run.
type Trail struct {
	RunID       string            `json:"run_id"`
	Chain       string            `json:"chain"`
	Mode        Mode              `json:"mode"`
	Input       string            `json:"input"`
	FinalOutput string            `json:"final_output"`
	Records     []ExecutionRecord `json:"records"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`

	// Truncated marks a run cut short by the wall-clock budget; the trail
	// holds whatever completed.
	Truncated bool `json:"truncated,omitempty"`
}

// NewTrail starts an empty trail with a fresh run id.
func NewTrail(chain string, mode Mode, input string) *Trail {
	return &Trail{
		RunID:     uuid.New().String()[:8],
		Chain:     chain,
		Mode:      mode,
		Input:     input,
		StartedAt: time.Now().UTC(),
	}
}

// Kept returns the records that produced step outputs, in step order.
// Rejected attempts are filtered out.
func (t *Trail) Kept() []ExecutionRecord {
	kept := make([]ExecutionRecord, 0, len(t.Records))
	for _, r := range t.Records {
		if r.Outcome != OutcomeRejected {
			kept = append(kept, r)
		}
	}
	return kept
}

// Fallbacks counts retry attempts across the run.
func (t *Trail) Fallbacks() int {
	n := 0
	for _, r := range t.Records {
		if r.Attempt > 1 {
			n++
		}
	}
	return n
}

// Summary condenses the trail for the memory history log. Composite is the
// mean over kept steps.
func (t *Trail) Summary() RunSummary {
	kept := t.Kept()
	var mean float64
	for _, r := range kept {
		mean += r.Composite
	}
	if len(kept) > 0 {
		mean /= float64(len(kept))
	}
	return RunSummary{
		RunID:       t.RunID,
		Chain:       t.Chain,
		Mode:        string(t.Mode),
		Steps:       len(kept),
		Fallbacks:   t.Fallbacks(),
		Composite:   mean,
		CompletedAt: t.CompletedAt,
	}
}

// Markdown renders the execution report.
func (t *Trail) Markdown() string {
	var b strings.Builder

	b.WriteString("# Chain Execution Report\n\n")
	fmt.Fprintf(&b, "Run: %s\n", t.RunID)
	fmt.Fprintf(&b, "Chain: %s (%s)\n", t.Chain, t.Mode)
	fmt.Fprintf(&b, "Input: %s\n", preview(t.Input))
	if !t.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Started: %s\n", t.StartedAt.Format(time.RFC3339))
	}
	if !t.CompletedAt.IsZero() {
		fmt.Fprintf(&b, "Completed: %s\n", t.CompletedAt.Format(time.RFC3339))
	}
	if t.Truncated {
		b.WriteString("\nRun stopped at the time budget; the trail below is partial.\n")
	}
	b.WriteString("\n")

	for _, r := range t.Records {
		if r.Attempt > 1 {
			fmt.Fprintf(&b, "### Step %d: %s (attempt %d)\n", r.Step+1, r.Agent, r.Attempt)
		} else {
			fmt.Fprintf(&b, "### Step %d: %s\n", r.Step+1, r.Agent)
		}
		if r.Pattern != r.RequestedPattern && r.RequestedPattern != "" {
			fmt.Fprintf(&b, "Pattern: %s (requested %s)\n", r.Pattern, r.RequestedPattern)
		} else {
			fmt.Fprintf(&b, "Pattern: %s\n", r.Pattern)
		}
		fmt.Fprintf(&b, "Outcome: %s\n", r.Outcome)
		fmt.Fprintf(&b, "Composite: %.2f (threshold %.2f)\n", r.Composite, r.Threshold)
		if len(r.Scores) > 0 {
			b.WriteString("Metrics:\n")
			for _, d := range Dimensions() {
				if v, ok := r.Scores[d]; ok {
					fmt.Fprintf(&b, "- %s: %.2f\n", d, v)
				}
			}
		}
		if r.Warning != "" {
			fmt.Fprintf(&b, "Warning: %s\n", r.Warning)
		}
		b.WriteString("Output Preview:\n")
		b.WriteString(preview(r.Output))
		b.WriteString("\n\n---\n\n")
	}

	b.WriteString("## Final Output\n\n")
	b.WriteString(t.FinalOutput)
	b.WriteString("\n")

	return b.String()
}

// WriteMarkdown writes the report to path, creating parent directories.
func (t *Trail) WriteMarkdown(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(t.Markdown()), 0644)
}

// WriteJSON writes the raw trail to path, creating parent directories.
func (t *Trail) WriteJSON(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// preview truncates text for report display.
func preview(s string) string {
	r := []rune(s)
	if len(r) <= DefaultPreviewLen {
		return s
	}
	return string(r[:DefaultPreviewLen]) + "..."
}
