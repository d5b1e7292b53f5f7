package fusion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// EventType identifies an executor progress event.
type EventType string

// Executor event types.
const (
	EventStepStarted    EventType = "step_started"
	EventStepScored     EventType = "step_scored"
	EventStepFallback   EventType = "step_fallback"
	EventStepExhausted  EventType = "step_exhausted"
	EventChainCompleted EventType = "chain_completed"
)

// Event is a progress notification from a running chain.
type Event struct {
	Type      EventType
	RunID     string
	Step      int
	Agent     string
	Pattern   string
	Composite float64
	Attempt   int
	Timestamp time.Time
}

// Executor runs chains. Each step renders a pattern for its agent, scores
// the generated output, and either accepts it or retries with a fallback
// pattern. Accepted output feeds the next step.
type Executor struct {
	registry   *Registry
	generator  Generator
	evaluator  *Evaluator
	memory     *Memory
	roster     *Roster
	mode       Mode
	adaptive   bool
	maxRetries int
	budget     time.Duration
	logger     *slog.Logger
	emit       func(Event)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an executor over a pattern registry and a generator.
func NewExecutor(reg *Registry, gen Generator, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry:   reg,
		generator:  gen,
		evaluator:  NewEvaluator(reg),
		roster:     NewRoster(DefaultRoster()...),
		mode:       DefaultMode,
		adaptive:   true,
		maxRetries: DefaultMaxRetries,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// WithMemory enables performance recording and adaptive recommendations.
func WithMemory(m *Memory) ExecutorOption {
	return func(e *Executor) {
		e.memory = m
	}
}

// WithRoster replaces the default agent roster.
func WithRoster(r *Roster) ExecutorOption {
	return func(e *Executor) {
		e.roster = r
	}
}

// WithMode sets the execution mode used when a chain names none.
func WithMode(m Mode) ExecutorOption {
	return func(e *Executor) {
		e.mode = m
	}
}

// WithAdaptive toggles memory-driven pattern selection on fallback. Chains
// can override per run.
func WithAdaptive(enabled bool) ExecutorOption {
	return func(e *Executor) {
		e.adaptive = enabled
	}
}

// WithMaxRetries bounds fallback attempts per step. Values clamp to the
// supported range of 1 to 2.
func WithMaxRetries(n int) ExecutorOption {
	return func(e *Executor) {
		switch {
		case n < 1:
			e.maxRetries = 1
		case n > DefaultMaxRetries:
			e.maxRetries = DefaultMaxRetries
		default:
			e.maxRetries = n
		}
	}
}

// WithBudget caps the wall-clock time of a run. When the budget expires the
// trail is returned truncated, without error.
func WithBudget(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.budget = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithEmit registers a callback for progress events.
func WithEmit(fn func(Event)) ExecutorOption {
	return func(e *Executor) {
		e.emit = fn
	}
}

// Run executes the chain over the input and returns the trail. An empty
// chain succeeds with an empty trail. A run that outlives the budget is
// returned truncated with whatever completed, and no error. Hard failures
// (unknown pattern or agent, generation unavailable, empty output, memory
// flush failure) abort the run; the partial trail accompanies the error.
func (e *Executor) Run(ctx context.Context, chain *Chain, input string) (*Trail, error) {
	mode := e.mode
	if chain.Mode != "" {
		parsed, err := ParseMode(chain.Mode)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}

	roster := chain.ApplyAgents(e.roster)
	adaptive := chain.AdaptiveEnabled(e.adaptive)
	weights := WeightsFor(mode)
	defaultThreshold := ThresholdFor(mode)

	trail := NewTrail(chain.Name, mode, input)

	if e.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.budget)
		defer cancel()
	}

	running := input
	outputs := make(map[string]string, len(chain.Steps))

	for i, step := range chain.Steps {
		if ctx.Err() != nil {
			trail.Truncated = true
			break
		}

		agent, ok := roster.Get(step.Agent)
		if !ok {
			trail.CompletedAt = time.Now().UTC()
			return trail, &StepError{Step: i, Agent: step.Agent, Err: ErrUnknownAgent}
		}

		threshold := defaultThreshold
		if step.Threshold != nil {
			threshold = *step.Threshold
		}

		output, err := e.runStep(ctx, trail, stepRun{
			index:     i,
			step:      step,
			agent:     agent,
			threshold: threshold,
			weights:   weights,
			adaptive:  adaptive,
			input:     running,
			outputs:   outputs,
			share:     chain.ShareOutputs,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				trail.Truncated = true
				break
			}
			trail.CompletedAt = time.Now().UTC()
			return trail, err
		}

		running = output
		outputs[agent.Name] = output
	}

	trail.FinalOutput = running
	trail.CompletedAt = time.Now().UTC()

	if e.memory != nil {
		if err := e.memory.RecordRun(trail.Summary()); err != nil {
			return trail, err
		}
	}

	e.notify(Event{
		Type:      EventChainCompleted,
		RunID:     trail.RunID,
		Timestamp: trail.CompletedAt,
	})
	e.logger.Info("chain completed",
		"run", trail.RunID,
		"chain", chain.Name,
		"mode", mode,
		"steps", len(trail.Kept()),
		"fallbacks", trail.Fallbacks(),
		"truncated", trail.Truncated,
	)

	return trail, nil
}

// stepRun bundles the inputs of one step execution.
type stepRun struct {
	index     int
	step      ChainStep
	agent     Agent
	threshold float64
	weights   Weights
	adaptive  bool
	input     string
	outputs   map[string]string
	share     bool
}

// runStep drives the attempt loop for one step. It returns the kept output:
// the first attempt to clear the bar, or the best rejected attempt once
// fallbacks are exhausted.
func (e *Executor) runStep(ctx context.Context, trail *Trail, run stepRun) (string, error) {
	requested := run.step.Pattern
	if requested == "" {
		requested = run.agent.DefaultPattern
	}

	framing := run.agent.BuildFraming(run.step.Tension)
	tried := make(map[string]bool)
	maxAttempts := 1 + e.maxRetries

	var attempts []ExecutionRecord
	var attemptOutputs []string

	candidate := requested
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		pattern, err := e.registry.Resolve(candidate)
		if err != nil {
			return "", &StepError{Step: run.index, Agent: run.agent.Name, Err: err}
		}

		e.notify(Event{
			Type: EventStepStarted, RunID: trail.RunID,
			Step: run.index, Agent: run.agent.Name, Pattern: candidate, Attempt: attempt,
			Timestamp: time.Now().UTC(),
		})

		prompt := pattern.Fill(e.stepVars(run))
		output, err := e.generator.Generate(ctx, GenRequest{
			Framing: framing,
			Prompt:  prompt,
			Context: run.step.Context,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", err
			}
			return "", &StepError{Step: run.index, Agent: run.agent.Name, Err: err}
		}

		eval, err := e.evaluator.Score(ScoreInput{
			Output:    output,
			PatternID: candidate,
			Input:     run.input,
			Context:   run.step.Context,
		}, run.weights)
		if err != nil {
			return "", &StepError{Step: run.index, Agent: run.agent.Name, Err: err}
		}

		safe := pattern.Safety == nil || pattern.Safety(output)
		accepted := eval.Composite >= run.threshold && safe

		e.notify(Event{
			Type: EventStepScored, RunID: trail.RunID,
			Step: run.index, Agent: run.agent.Name, Pattern: candidate,
			Composite: eval.Composite, Attempt: attempt,
			Timestamp: time.Now().UTC(),
		})

		if e.memory != nil {
			if err := e.memory.Record(run.agent.Name, candidate, accepted); err != nil {
				return "", &StepError{Step: run.index, Agent: run.agent.Name, Err: err}
			}
		}

		tried[candidate] = true
		rec := ExecutionRecord{
			Step:             run.index,
			Agent:            run.agent.Name,
			RequestedPattern: requested,
			Pattern:          candidate,
			Input:            run.input,
			Output:           output,
			Scores:           eval.Scores,
			Composite:        eval.Composite,
			Threshold:        run.threshold,
			Attempt:          attempt,
			Timestamp:        time.Now().UTC(),
		}

		if accepted {
			rec.Outcome = OutcomeAccepted
			trail.Records = append(trail.Records, append(attempts, rec)...)
			return output, nil
		}

		rec.Outcome = OutcomeRejected
		attempts = append(attempts, rec)
		attemptOutputs = append(attemptOutputs, output)

		next := ""
		if attempt < maxAttempts {
			next = e.nextCandidate(run.agent, candidate, tried, run.adaptive)
		}
		if next == "" {
			break
		}

		e.notify(Event{
			Type: EventStepFallback, RunID: trail.RunID,
			Step: run.index, Agent: run.agent.Name, Pattern: next,
			Composite: eval.Composite, Attempt: attempt,
			Timestamp: time.Now().UTC(),
		})
		e.logger.Warn("step fell back",
			"run", trail.RunID,
			"step", run.index,
			"agent", run.agent.Name,
			"from", candidate,
			"to", next,
			"composite", eval.Composite,
			"threshold", run.threshold,
		)
		candidate = next
	}

	// Exhausted: keep the best attempt and move on rather than abort.
	best := 0
	for i := range attempts {
		if attempts[i].Composite > attempts[best].Composite {
			best = i
		}
	}
	attempts[best].Outcome = OutcomeExhausted
	attempts[best].Warning = fmt.Sprintf(
		"no attempt reached threshold %.2f; kept best attempt at %.2f (%s)",
		run.threshold, attempts[best].Composite, attempts[best].Pattern)
	trail.Records = append(trail.Records, attempts...)

	e.notify(Event{
		Type: EventStepExhausted, RunID: trail.RunID,
		Step: run.index, Agent: run.agent.Name, Pattern: attempts[best].Pattern,
		Composite: attempts[best].Composite, Attempt: attempts[best].Attempt,
		Timestamp: time.Now().UTC(),
	})
	e.logger.Warn("step exhausted fallbacks, keeping best attempt",
		"run", trail.RunID,
		"step", run.index,
		"agent", run.agent.Name,
		"pattern", attempts[best].Pattern,
		"composite", attempts[best].Composite,
		"threshold", run.threshold,
	)

	return attemptOutputs[best], nil
}

// stepVars assembles the substitution values for a step. Values pass
// through EscapeSpecialTokens so generated text cannot smuggle structural
// markers into the rendered template.
func (e *Executor) stepVars(run stepRun) map[string]string {
	vars := make(map[string]string, len(run.step.Context)+2+len(run.outputs))
	for k, v := range run.step.Context {
		vars[k] = EscapeSpecialTokens(v)
	}
	vars["input"] = EscapeSpecialTokens(run.input)
	if _, ok := vars["role"]; !ok && run.agent.Role != "" {
		vars["role"] = run.agent.Role
	}
	if run.share {
		for name, out := range run.outputs {
			vars["output."+name] = EscapeSpecialTokens(out)
		}
	}
	return vars
}

// nextCandidate picks the next pattern after a rejected attempt: the static
// fallback of the current pattern, unless adaptive memory recommends an
// untried pattern from the agent's pool.
func (e *Executor) nextCandidate(agent Agent, current string, tried map[string]bool, adaptive bool) string {
	next := ""
	if fb, ok := e.registry.FallbackOf(current); ok && !tried[fb] {
		next = fb
	}

	if adaptive && e.memory != nil {
		pool := make([]string, 0, len(agent.Patterns))
		for _, id := range agent.Patterns {
			if !tried[id] {
				pool = append(pool, id)
			}
		}
		if len(pool) > 0 {
			if rec := e.memory.BestPatternFor(agent, pool); rec != "" && !tried[rec] {
				next = rec
			}
		}
	}

	return next
}

func (e *Executor) notify(ev Event) {
	if e.emit != nil {
		e.emit(ev)
	}
}
