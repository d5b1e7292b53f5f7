package fusion

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store persists the memory document. Load returns (nil, nil) when no
// state has been saved yet.
type Store interface {
	Load() (*Document, error)
	Save(*Document) error
	Close() error
}

// PerformanceStat tracks one agent/pattern pairing.
type PerformanceStat struct {
	UsageCount  int       `json:"usage_count"`
	SuccessRate float64   `json:"success_rate"`
	LastUsed    time.Time `json:"last_used"`
}

// RunSummary is one chain run in the history log.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Chain       string    `json:"chain"`
	Mode        string    `json:"mode"`
	Steps       int       `json:"steps"`
	Fallbacks   int       `json:"fallbacks"`
	Composite   float64   `json:"composite"`
	CompletedAt time.Time `json:"completed_at"`
}

// Document is the complete persisted memory state. Stats is keyed by agent
// name, then pattern id.
type Document struct {
	Stats     map[string]map[string]*PerformanceStat `json:"pattern_stats"`
	History   []RunSummary                           `json:"chain_history"`
	UpdatedAt time.Time                              `json:"updated_at"`
}

// Memory tracks per-agent pattern performance and recommends patterns from
// observed success rates. State loads from the store once at construction;
// every recording flushes back before returning, so a failed flush surfaces
// to the caller immediately. Safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	store Store
	doc   *Document
	limit int
}

// MemoryOption configures a Memory.
type MemoryOption func(*Memory)

// WithHistoryLimit caps the run history log. Zero or negative keeps the
// default.
func WithHistoryLimit(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.limit = n
		}
	}
}

// NewMemory loads existing state from the store and returns a ready memory.
func NewMemory(store Store, opts ...MemoryOption) (*Memory, error) {
	m := &Memory{store: store, limit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(m)
	}

	doc, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load memory: %w", err)
	}
	if doc == nil {
		doc = &Document{}
	}
	if doc.Stats == nil {
		doc.Stats = make(map[string]map[string]*PerformanceStat)
	}
	m.doc = doc
	return m, nil
}

// Record updates the running success rate for an agent/pattern pairing and
// flushes the document. The rate is cumulative: with n prior uses at rate r,
// a new outcome s yields (r*n + s) / (n+1).
func (m *Memory) Record(agent, pattern string, success bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byPattern := m.doc.Stats[agent]
	if byPattern == nil {
		byPattern = make(map[string]*PerformanceStat)
		m.doc.Stats[agent] = byPattern
	}
	stat := byPattern[pattern]
	if stat == nil {
		stat = &PerformanceStat{}
		byPattern[pattern] = stat
	}

	s := 0.0
	if success {
		s = 1.0
	}
	n := float64(stat.UsageCount)
	stat.SuccessRate = (stat.SuccessRate*n + s) / (n + 1)
	stat.UsageCount++
	stat.LastUsed = time.Now().UTC()
	m.doc.UpdatedAt = stat.LastUsed

	return m.flushLocked()
}

// BestPatternFor recommends a pattern for the agent from the candidate
// list. The highest success rate wins; ties go to the pattern with fewer
// uses, then to candidate order. Candidates without history are skipped.
// With no candidates the agent's pool is consulted; with no history at all
// the agent's default pattern is returned.
func (m *Memory) BestPatternFor(agent Agent, candidates []string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(candidates) == 0 {
		candidates = agent.Patterns
	}

	byPattern := m.doc.Stats[agent.Name]
	var best string
	var bestStat *PerformanceStat
	for _, id := range candidates {
		stat, ok := byPattern[id]
		if !ok {
			continue
		}
		if bestStat == nil ||
			stat.SuccessRate > bestStat.SuccessRate ||
			(stat.SuccessRate == bestStat.SuccessRate && stat.UsageCount < bestStat.UsageCount) {
			best, bestStat = id, stat
		}
	}
	if best == "" {
		return agent.DefaultPattern
	}
	return best
}

// RecordRun appends a chain run to the history log, trimming the oldest
// entries past the limit, and flushes the document.
func (m *Memory) RecordRun(run RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.doc.History = append(m.doc.History, run)
	if over := len(m.doc.History) - m.limit; over > 0 {
		m.doc.History = m.doc.History[over:]
	}
	m.doc.UpdatedAt = time.Now().UTC()

	return m.flushLocked()
}

// Stats returns a copy of the recorded stats for one agent.
func (m *Memory) Stats(agent string) map[string]PerformanceStat {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]PerformanceStat, len(m.doc.Stats[agent]))
	for id, stat := range m.doc.Stats[agent] {
		out[id] = *stat
	}
	return out
}

// Stat returns the recorded stat for one agent and pattern pairing.
func (m *Memory) Stat(agent, pattern string) (PerformanceStat, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stat, ok := m.doc.Stats[agent][pattern]
	if !ok {
		return PerformanceStat{}, false
	}
	return *stat, true
}

// Snapshot returns a copy of the full document.
func (m *Memory) Snapshot() Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := Document{
		Stats:     make(map[string]map[string]*PerformanceStat, len(m.doc.Stats)),
		History:   append([]RunSummary(nil), m.doc.History...),
		UpdatedAt: m.doc.UpdatedAt,
	}
	for agent, byPattern := range m.doc.Stats {
		doc.Stats[agent] = make(map[string]*PerformanceStat, len(byPattern))
		for id, stat := range byPattern {
			copied := *stat
			doc.Stats[agent][id] = &copied
		}
	}
	return doc
}

// Flush writes the current document to the store.
func (m *Memory) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushLocked()
}

// Close flushes and releases the store.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.flushLocked(); err != nil {
		m.store.Close()
		return err
	}
	return m.store.Close()
}

func (m *Memory) flushLocked() error {
	if err := m.store.Save(m.doc); err != nil {
		return fmt.Errorf("flush memory: %w", err)
	}
	return nil
}

// Insights renders a markdown report over the recorded stats and history.
func (m *Memory) Insights() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder
	b.WriteString("# Fusion System Insights\n\n")

	agents := make([]string, 0, len(m.doc.Stats))
	for name := range m.doc.Stats {
		agents = append(agents, name)
	}
	sort.Strings(agents)

	if len(agents) == 0 {
		b.WriteString("No pattern usage recorded yet.\n")
	} else {
		b.WriteString("## Pattern Performance\n\n")
		for _, name := range agents {
			fmt.Fprintf(&b, "### %s\n", name)
			patterns := make([]string, 0, len(m.doc.Stats[name]))
			for id := range m.doc.Stats[name] {
				patterns = append(patterns, id)
			}
			sort.Strings(patterns)
			for _, id := range patterns {
				stat := m.doc.Stats[name][id]
				fmt.Fprintf(&b, "- %s: %.1f%% success over %d uses\n",
					id, stat.SuccessRate*100, stat.UsageCount)
			}
			b.WriteString("\n")
		}
	}

	if n := len(m.doc.History); n > 0 {
		b.WriteString("## Recent Chains\n\n")
		start := n - 10
		if start < 0 {
			start = 0
		}
		for _, run := range m.doc.History[start:] {
			fmt.Fprintf(&b, "- %s: %s (%s), %d steps, %d fallbacks, composite %.2f\n",
				run.RunID, run.Chain, run.Mode, run.Steps, run.Fallbacks, run.Composite)
		}
	}

	return b.String()
}
