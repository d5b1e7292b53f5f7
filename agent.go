package fusion

import "strings"

// Agent defines a labeled role that applies patterns with a persona framing.
// It's a configuration entity: immutable once the roster is loaded.
type Agent struct {
	// Name is the unique agent identifier
	Name string

	// Role describes the persona the generator should adopt
	Role string

	// DefaultPattern is used when the memory has no history for any
	// candidate pattern
	DefaultPattern string

	// Patterns is the candidate pool for adaptive substitution, in
	// preference order
	Patterns []string

	// Framing overrides role-based framing when set (static or dynamic)
	Framing Framing
}

// Default configuration values
const (
	// DefaultMaxRetries is the default number of fallback attempts per step
	DefaultMaxRetries = 2

	// DefaultHistoryLimit is the number of run summaries the memory keeps
	DefaultHistoryLimit = 100

	// DefaultPreviewLen is the output preview length in reasoning trails
	DefaultPreviewLen = 200
)

// Framing provides the persona framing sent to the generator.
// It can be static (StaticFraming) or dynamic (DynamicFraming).
type Framing interface {
	Framing() string
}

// StaticFraming is a fixed framing string.
type StaticFraming string

// Framing returns the static framing string.
func (s StaticFraming) Framing() string {
	return string(s)
}

// DynamicFraming is a function that generates framing.
// It's called each step, allowing the framing to include current state.
type DynamicFraming func() string

// Framing calls the function to generate the framing.
func (d DynamicFraming) Framing() string {
	return d()
}

// BuildFraming returns the persona framing for a step: the agent's custom
// Framing if set, otherwise its role, plus a tension instruction when the
// step carries a tension tag. Tension tags shape framing only; they never
// change executor decisions.
func (a Agent) BuildFraming(tension string) string {
	base := ""
	if a.Framing != nil {
		base = a.Framing.Framing()
	} else if a.Role != "" {
		base = "You are " + a.Role + "."
	}
	if tension == "" {
		return base
	}
	line, ok := tensionFraming[tension]
	if !ok {
		pair := strings.ReplaceAll(tension, "_vs_", " and ")
		pair = strings.ReplaceAll(pair, "_", " ")
		line = "Hold the tension between " + pair + "."
	}
	if base == "" {
		return line
	}
	return base + " " + line
}

// Roster is an ordered set of agents keyed by name.
type Roster struct {
	agents map[string]Agent
	order  []string
}

// NewRoster creates a roster from the given agents, in order.
// A later agent with an existing name replaces the earlier one in place.
func NewRoster(agents ...Agent) *Roster {
	r := &Roster{agents: make(map[string]Agent)}
	for _, a := range agents {
		r.Add(a)
	}
	return r
}

// Add inserts or replaces an agent. Replacement keeps the original position
// so chain files can override built-in agents without reordering ties.
func (r *Roster) Add(a Agent) {
	if _, exists := r.agents[a.Name]; !exists {
		r.order = append(r.order, a.Name)
	}
	r.agents[a.Name] = a
}

// Get returns the agent with the given name.
func (r *Roster) Get(name string) (Agent, bool) {
	a, ok := r.agents[name]
	return a, ok
}

// Names returns agent names in roster order.
func (r *Roster) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of agents in the roster.
func (r *Roster) Len() int {
	return len(r.order)
}

// Validate checks that every agent's default pattern and candidate pool
// resolve against the registry. Run at load so unknown patterns surface as
// configuration errors, not mid-run failures.
func (r *Roster) Validate(reg *Registry) error {
	for _, name := range r.order {
		a := r.agents[name]
		if a.DefaultPattern != "" {
			if _, err := reg.Resolve(a.DefaultPattern); err != nil {
				return err
			}
		}
		for _, id := range a.Patterns {
			if _, err := reg.Resolve(id); err != nil {
				return err
			}
		}
	}
	return nil
}
