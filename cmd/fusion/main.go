// Package main provides the Fusion CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	fusion "github.com/everydev1618/gofusion"
	"github.com/everydev1618/gofusion/llm"
)

var (
	version = "dev"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "run":
		runCmd(args)
	case "chain":
		chainCmd(args)
	case "eval":
		evalCmd(args)
	case "validate":
		validateCmd(args)
	case "patterns":
		patternsCmd(args)
	case "memory":
		memoryCmd(args)
	case "version":
		fmt.Printf("fusion %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Fusion - Adaptive Prompt Chain Orchestration

Usage:
  fusion <command> [options]

Commands:
  run       Run a single agent with one pattern
  chain     Run a chain from a .fusion.yaml file
  eval      Score a text file on the quality dimensions
  validate  Validate a .fusion.yaml file
  patterns  List, suggest, or benchmark patterns
  memory    Inspect recorded pattern performance
  version   Print version information
  help      Show this help message

Examples:
  fusion run --agent StrategyPilot "plan the Q3 launch"
  fusion chain --input "plan the Q3 launch" campaign.fusion.yaml
  fusion eval --mode ship draft.md
  fusion patterns suggest "derisk the data migration"

Run 'fusion <command> --help' for more information on a command.`)
}

// runCmd executes a single agent and pattern as a one-step chain.
func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	agent := fs.String("agent", fusion.StrategyPilot, "Agent to run")
	pattern := fs.String("pattern", "", "Pattern to apply (default: the agent's default)")
	tension := fs.String("tension", "", "Tension to hold in the agent framing")
	mode := fs.String("mode", "", "Execution mode: simulate, ship, or critique")
	output := fs.String("output", "text", "Output format: text, report, or json")
	offline := fs.Bool("offline", false, "Force the local template generator")
	noMemory := fs.Bool("no-memory", false, "Skip performance recording")
	adaptive := fs.Bool("adaptive", true, "Let recorded performance steer fallback patterns")
	memoryPath := fs.String("memory", fusion.DefaultMemoryPath(), "Memory document path")
	dbPath := fs.String("db", "", "Use a SQLite memory store at this path instead")
	patternsDir := fs.String("patterns", "", "Directory of extra .pattern.md files")
	budget := fs.Duration("budget", 0, "Wall-clock budget; expired runs keep partial results")
	timeout := fs.Duration("timeout", 10*time.Minute, "Maximum execution time")
	save := fs.Bool("save", false, "Save the trail under the fusion home directory")
	logFile := fs.String("log-file", "", "Append JSON logs to this file")
	verbose := fs.Bool("verbose", false, "Show step progress and debug logs")

	fs.Usage = func() {
		fmt.Println(`Usage: fusion run [options] <input text>

Run a single agent with one pattern and print the result.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  fusion run "plan the Q3 launch"
  fusion run --agent NarrativeArchitect --pattern RoleDirective "pitch the beta"
  fusion run --mode ship --output report "position the new pricing"`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	input := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(input) == "" {
		fmt.Fprintln(os.Stderr, "Error: no input text provided")
		fs.Usage()
		os.Exit(1)
	}

	closeLog := setupLogger(*verbose, *logFile)
	defer closeLog()

	reg, err := buildRegistry(*patternsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading patterns: %v\n", err)
		os.Exit(1)
	}

	chain := &fusion.Chain{
		Name: "adhoc",
		Mode: *mode,
		Steps: []fusion.ChainStep{
			{Agent: *agent, Pattern: *pattern, Tension: *tension},
		},
	}
	roster := fusion.NewRoster(fusion.DefaultRoster()...)
	if err := chain.Validate(reg, roster); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := []fusion.ExecutorOption{
		fusion.WithAdaptive(*adaptive),
	}
	if *budget > 0 {
		opts = append(opts, fusion.WithBudget(*budget))
	}
	if *verbose {
		opts = append(opts, fusion.WithEmit(printProgress))
	}
	if !*noMemory {
		mem, err := openMemory(*memoryPath, *dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening memory: %v\n", err)
			os.Exit(1)
		}
		defer mem.Close()
		opts = append(opts, fusion.WithMemory(mem))
	}

	exec := fusion.NewExecutor(reg, buildGenerator(*offline), opts...)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	trail, err := exec.Run(ctx, chain, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printTrail(trail, *output)
	if *save {
		saveTrail(trail)
	}
}

// chainCmd executes a chain from a .fusion.yaml file.
func chainCmd(args []string) {
	fs := flag.NewFlagSet("chain", flag.ExitOnError)
	input := fs.String("input", "", "Input text for the first step")
	mode := fs.String("mode", "", "Override the chain's execution mode")
	output := fs.String("output", "text", "Output format: text, report, or json")
	offline := fs.Bool("offline", false, "Force the local template generator")
	noMemory := fs.Bool("no-memory", false, "Skip performance recording")
	adaptive := fs.Bool("adaptive", true, "Let recorded performance steer fallback patterns")
	memoryPath := fs.String("memory", fusion.DefaultMemoryPath(), "Memory document path")
	dbPath := fs.String("db", "", "Use a SQLite memory store at this path instead")
	patternsDir := fs.String("patterns", "", "Directory of extra .pattern.md files")
	budget := fs.Duration("budget", 0, "Wall-clock budget; expired runs keep partial results")
	timeout := fs.Duration("timeout", 30*time.Minute, "Maximum execution time")
	save := fs.Bool("save", false, "Save the trail under the fusion home directory")
	logFile := fs.String("log-file", "", "Append JSON logs to this file")
	verbose := fs.Bool("verbose", false, "Show step progress and debug logs")

	fs.Usage = func() {
		fmt.Println(`Usage: fusion chain [options] <file.fusion.yaml>

Run a chain definition. Each step's accepted output feeds the next step.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  fusion chain --input "plan the Q3 launch" campaign.fusion.yaml
  fusion chain --input "pitch the beta" --output report --save campaign.fusion.yaml`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no .fusion.yaml file specified")
		fs.Usage()
		os.Exit(1)
	}
	if strings.TrimSpace(*input) == "" {
		fmt.Fprintln(os.Stderr, "Error: no input text provided, use --input")
		os.Exit(1)
	}

	file := fs.Arg(0)

	closeLog := setupLogger(*verbose, *logFile)
	defer closeLog()

	reg, err := buildRegistry(*patternsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading patterns: %v\n", err)
		os.Exit(1)
	}

	chain, err := fusion.ParseChainFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", file, err)
		os.Exit(1)
	}
	if *mode != "" {
		chain.Mode = *mode
	}

	roster := fusion.NewRoster(fusion.DefaultRoster()...)
	if err := chain.Validate(reg, roster); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Loaded %s: %d steps, %d inline agents\n",
			chain.Name, len(chain.Steps), len(chain.Agents))
	}

	opts := []fusion.ExecutorOption{
		fusion.WithAdaptive(*adaptive),
	}
	if *budget > 0 {
		opts = append(opts, fusion.WithBudget(*budget))
	}
	if *verbose {
		opts = append(opts, fusion.WithEmit(printProgress))
	}
	if !*noMemory {
		mem, err := openMemory(*memoryPath, *dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening memory: %v\n", err)
			os.Exit(1)
		}
		defer mem.Close()
		opts = append(opts, fusion.WithMemory(mem))
	}

	exec := fusion.NewExecutor(reg, buildGenerator(*offline), opts...)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	trail, err := exec.Run(ctx, chain, *input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printTrail(trail, *output)
	if *save {
		saveTrail(trail)
	}
}

// setupLogger installs the process logger. Runs stay quiet at warn level
// unless verbose asks for debug output.
func setupLogger(verbose bool, logFile string) func() error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := []fusion.LoggerOption{fusion.WithLogLevel(level)}
	if logFile != "" {
		opts = append(opts, fusion.WithLogFile(logFile))
	}

	logger, closeLog, err := fusion.NewLogger(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	return closeLog
}

// buildRegistry assembles the built-in catalog plus any pattern files.
func buildRegistry(dir string) (*fusion.Registry, error) {
	reg, err := fusion.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		if err := reg.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// buildGenerator picks the model client when an API key is configured,
// otherwise the deterministic template generator.
func buildGenerator(offline bool) fusion.Generator {
	if offline || os.Getenv("ANTHROPIC_API_KEY") == "" {
		return fusion.TemplateGenerator{}
	}
	return fusion.NewLLMGenerator(llm.New())
}

// openMemory opens the SQLite store when dbPath is set, the JSON document
// store otherwise.
func openMemory(jsonPath, dbPath string) (*fusion.Memory, error) {
	if dbPath != "" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
		store, err := fusion.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, err
		}
		return fusion.NewMemory(store)
	}
	return fusion.NewMemory(fusion.NewJSONStore(jsonPath))
}

// printProgress narrates executor events on stderr.
func printProgress(ev fusion.Event) {
	switch ev.Type {
	case fusion.EventStepStarted:
		fmt.Fprintf(os.Stderr, "step %d: %s using %s\n", ev.Step+1, ev.Agent, ev.Pattern)
	case fusion.EventStepScored:
		fmt.Fprintf(os.Stderr, "step %d: composite %.2f (attempt %d)\n", ev.Step+1, ev.Composite, ev.Attempt)
	case fusion.EventStepFallback:
		fmt.Fprintf(os.Stderr, "step %d: retrying with %s\n", ev.Step+1, ev.Pattern)
	case fusion.EventStepExhausted:
		fmt.Fprintf(os.Stderr, "step %d: fallbacks exhausted, keeping best attempt\n", ev.Step+1)
	case fusion.EventChainCompleted:
		fmt.Fprintf(os.Stderr, "run %s completed\n", ev.RunID)
	}
}

// printTrail writes the run result to stdout in the requested format.
func printTrail(t *fusion.Trail, format string) {
	switch format {
	case "json":
		data, _ := json.MarshalIndent(t, "", "  ")
		fmt.Println(string(data))
	case "report":
		fmt.Println(t.Markdown())
	default:
		fmt.Println(t.FinalOutput)
	}
}

// saveTrail writes the markdown report and raw trail into the trail
// directory. Save failures are reported but never fail the run.
func saveTrail(t *fusion.Trail) {
	if err := fusion.EnsureHome(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create trail dir: %v\n", err)
		return
	}
	base := filepath.Join(fusion.TrailDir(), t.RunID)
	if err := t.WriteMarkdown(base + ".md"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save report: %v\n", err)
		return
	}
	if err := t.WriteJSON(base + ".json"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save trail: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Trail saved: %s.md\n", base)
}
