package fusion

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChainStep is one step of a chain definition. Pattern is optional; an
// empty pattern falls back to the agent's default.
type ChainStep struct {
	Agent     string            `yaml:"agent" json:"agent"`
	Pattern   string            `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Tension   string            `yaml:"tension,omitempty" json:"tension,omitempty"`
	Threshold *float64          `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Context   map[string]string `yaml:"context,omitempty" json:"context,omitempty"`
}

// AgentSpec is an inline agent definition in a chain file. Inline agents
// extend or override the default roster for that chain only.
type AgentSpec struct {
	Name           string   `yaml:"name"`
	Role           string   `yaml:"role"`
	DefaultPattern string   `yaml:"default_pattern,omitempty"`
	Patterns       []string `yaml:"patterns,omitempty"`
}

// Agent converts the spec to a roster agent. An empty pool keeps just the
// default pattern.
func (s AgentSpec) Agent() Agent {
	pool := s.Patterns
	if len(pool) == 0 && s.DefaultPattern != "" {
		pool = []string{s.DefaultPattern}
	}
	return Agent{
		Name:           s.Name,
		Role:           s.Role,
		DefaultPattern: s.DefaultPattern,
		Patterns:       pool,
	}
}

// Chain is a parsed chain definition from a .fusion.yaml file.
type Chain struct {
	Name         string      `yaml:"name"`
	Description  string      `yaml:"description,omitempty"`
	Mode         string      `yaml:"mode,omitempty"`
	Adaptive     *bool       `yaml:"adaptive,omitempty"`
	ShareOutputs bool        `yaml:"share_outputs,omitempty"`
	Agents       []AgentSpec `yaml:"agents,omitempty"`
	Steps        []ChainStep `yaml:"steps"`

	file string
}

// ValidationError provides detailed chain validation errors.
type ValidationError struct {
	File    string
	Field   string
	Message string
	Hint    string
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Hint != "" {
		msg = msg + "\n  hint: " + e.Hint
	}
	return msg
}

// ParseChainFile parses a .fusion.yaml chain file.
func ParseChainFile(path string) (*Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	c, err := ParseChain(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.file = path
	return c, nil
}

// ParseChain parses YAML content into a Chain. Reference checks happen
// separately in Validate, once a registry and roster are known.
func ParseChain(data []byte) (*Chain, error) {
	var c Chain
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &c, nil
}

// ApplyAgents returns the roster extended with the chain's inline agents.
// The base roster is not modified.
func (c *Chain) ApplyAgents(base *Roster) *Roster {
	merged := NewRoster()
	for _, name := range base.Names() {
		if a, ok := base.Get(name); ok {
			merged.Add(a)
		}
	}
	for _, spec := range c.Agents {
		merged.Add(spec.Agent())
	}
	return merged
}

// ResolvedMode parses the chain's mode, defaulting when unset.
func (c *Chain) ResolvedMode() (Mode, error) {
	return ParseMode(c.Mode)
}

// AdaptiveEnabled reports whether adaptive pattern selection applies,
// using def when the chain does not say.
func (c *Chain) AdaptiveEnabled(def bool) bool {
	if c.Adaptive == nil {
		return def
	}
	return *c.Adaptive
}

// Validate checks the chain against a pattern registry and an agent
// roster. Inline agents count as known. The first problem found is
// returned as a *ValidationError.
func (c *Chain) Validate(reg *Registry, roster *Roster) error {
	if len(c.Steps) == 0 {
		return &ValidationError{
			File:    c.file,
			Field:   "steps",
			Message: "required field is missing",
		}
	}

	if _, err := ParseMode(c.Mode); err != nil {
		return &ValidationError{
			File:    c.file,
			Field:   "mode",
			Message: fmt.Sprintf("unknown execution mode %q", c.Mode),
			Hint:    "valid modes are " + joinModes(),
		}
	}

	known := c.ApplyAgents(roster)

	for i, spec := range c.Agents {
		if spec.Name == "" {
			return &ValidationError{
				File:    c.file,
				Field:   fmt.Sprintf("agents[%d].name", i),
				Message: "required field is missing",
			}
		}
		if spec.DefaultPattern != "" {
			if _, err := reg.Resolve(spec.DefaultPattern); err != nil {
				return &ValidationError{
					File:    c.file,
					Field:   fmt.Sprintf("agents[%d].default_pattern", i),
					Message: fmt.Sprintf("unknown pattern %q", spec.DefaultPattern),
					Hint:    didYouMean(spec.DefaultPattern, reg.IDs()),
				}
			}
		}
		for j, id := range spec.Patterns {
			if _, err := reg.Resolve(id); err != nil {
				return &ValidationError{
					File:    c.file,
					Field:   fmt.Sprintf("agents[%d].patterns[%d]", i, j),
					Message: fmt.Sprintf("unknown pattern %q", id),
					Hint:    didYouMean(id, reg.IDs()),
				}
			}
		}
	}

	for i, step := range c.Steps {
		if step.Agent == "" {
			return &ValidationError{
				File:    c.file,
				Field:   fmt.Sprintf("steps[%d].agent", i),
				Message: "required field is missing",
			}
		}
		if _, ok := known.Get(step.Agent); !ok {
			return &ValidationError{
				File:    c.file,
				Field:   fmt.Sprintf("steps[%d].agent", i),
				Message: fmt.Sprintf("unknown agent %q", step.Agent),
				Hint:    didYouMean(step.Agent, known.Names()),
			}
		}
		if step.Pattern != "" {
			if _, err := reg.Resolve(step.Pattern); err != nil {
				return &ValidationError{
					File:    c.file,
					Field:   fmt.Sprintf("steps[%d].pattern", i),
					Message: fmt.Sprintf("unknown pattern %q", step.Pattern),
					Hint:    didYouMean(step.Pattern, reg.IDs()),
				}
			}
		}
		if step.Threshold != nil && (*step.Threshold < 0 || *step.Threshold > 1) {
			return &ValidationError{
				File:    c.file,
				Field:   fmt.Sprintf("steps[%d].threshold", i),
				Message: fmt.Sprintf("threshold %v is out of range", *step.Threshold),
				Hint:    "thresholds are fractions between 0 and 1",
			}
		}
	}

	return nil
}

// DefaultChain is the built-in three-step chain: synthesize a strategy,
// shape it into a narrative, then critique and rewrite.
func DefaultChain() *Chain {
	return &Chain{
		Name:        "default",
		Description: "synthesize, narrate, critique",
		Steps: []ChainStep{
			{Agent: StrategyPilot, Pattern: StepwiseInsightSynthesis},
			{Agent: NarrativeArchitect, Pattern: RoleDirective},
			{Agent: EvaluatorAgent, Pattern: PatternCritiqueThenRewrite},
		},
	}
}

func joinModes() string {
	names := make([]string, 0, len(Modes()))
	for _, m := range Modes() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

// didYouMean suggests the closest candidate by prefix and containment.
func didYouMean(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	lower := strings.ToLower(target)
	best := ""
	bestScore := -1
	for _, c := range candidates {
		score := similarity(lower, strings.ToLower(c))
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return fmt.Sprintf("did you mean %q?", best)
}

func similarity(a, b string) int {
	if a == b {
		return 100
	}

	score := 0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			score += 2
		} else {
			break
		}
	}

	if strings.Contains(b, a) || strings.Contains(a, b) {
		score += 10
	}

	return score
}
