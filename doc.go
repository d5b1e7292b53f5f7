// Package fusion provides adaptive prompt-pattern chain orchestration.
//
// Fusion is a Go library for composing multi-step prompt chains. It provides:
//
//   - A pattern catalog with acyclic fallback links
//   - Deterministic scoring of generated output on six quality dimensions
//   - Chains whose accepted step outputs feed the following steps
//   - Quality-gated fallback retries that keep the best attempt when all fail
//   - Persistent pattern performance memory (JSON or SQLite)
//   - Execution modes with distinct weight profiles and acceptance bars
//
// # Quick Start
//
// Build a registry and run the default chain:
//
//	reg, err := fusion.DefaultRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	exec := fusion.NewExecutor(reg, fusion.TemplateGenerator{})
//
//	trail, err := exec.Run(ctx, fusion.DefaultChain(), "plan the Q3 launch")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(trail.FinalOutput)
//
// TemplateGenerator expands pattern templates locally and deterministically.
// To generate with a model instead, wrap an API client:
//
//	gen := fusion.NewLLMGenerator(llm.New())
//	exec := fusion.NewExecutor(reg, gen, fusion.WithMode(fusion.ModeShip))
//
// # Chains
//
// Chains are defined in YAML:
//
//	name: campaign
//	mode: ship
//	steps:
//	  - agent: StrategyPilot
//	    pattern: StepwiseInsightSynthesis
//	  - agent: NarrativeArchitect
//	  - agent: EvaluatorAgent
//	    pattern: PatternCritiqueThenRewrite
//
// Parse and validate before running:
//
//	chain, err := fusion.ParseChainFile("campaign.fusion.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := chain.Validate(reg, roster); err != nil {
//	    log.Fatal(err)
//	}
//
// Each step scores its generated output against the mode's acceptance bar.
// A step that falls short retries with the pattern's fallback; when every
// attempt falls short the best one is kept with a warning and the chain
// continues. Quality shortfalls are recorded, never raised as errors.
//
// # Adaptive Selection
//
// With memory attached, retries prefer the pattern with the best recorded
// success rate for that agent instead of the static fallback link:
//
//	mem, err := fusion.NewMemory(fusion.NewJSONStore(fusion.DefaultMemoryPath()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mem.Close()
//
//	exec := fusion.NewExecutor(reg, gen, fusion.WithMemory(mem))
//
// # Architecture
//
// The main components are:
//
//   - Pattern: Prompt template with slots, indicators, and a fallback link
//   - Registry: Pattern lookup with load-time fallback graph validation
//   - Agent: Named perspective with a role, framing, and pattern pool
//   - Evaluator: Deterministic six-dimension output scoring
//   - Executor: Runs chains, gating each step on the mode's quality bar
//   - Memory: Per-agent pattern performance, persisted across runs
//   - Trail: Full record of one run, renderable as markdown or JSON
//
// # Thread Safety
//
// Memory is safe for concurrent use. Registries and rosters are assembled
// once at startup; after that, concurrent reads are safe.
package fusion
