// Package llm provides the Anthropic text backend for the fusion package.
//
// # Usage
//
//	client := llm.New()  // Uses ANTHROPIC_API_KEY env var
//
//	// Or with custom API key
//	client := llm.New(llm.WithAPIKey("sk-..."))
//
//	// Or with custom model
//	client := llm.New(llm.WithModel("claude-opus-4-20250514"))
//
// # Using with the Executor
//
// Wrap the client in a generator and hand it to the executor:
//
//	gen := fusion.NewLLMGenerator(llm.New())
//	exec := fusion.NewExecutor(registry, gen)
//
// # Rate Limiting
//
// Rate-limited requests (429) and overloaded responses (529) retry
// automatically with exponential backoff, honoring the retry-after header
// when the API sends one.
package llm
