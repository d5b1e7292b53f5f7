package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	fusion "github.com/everydev1618/gofusion"
)

// patternsCmd dispatches the pattern catalog subcommands.
func patternsCmd(args []string) {
	if len(args) < 1 {
		printPatternsUsage()
		os.Exit(1)
	}

	sub := args[0]
	rest := args[1:]

	switch sub {
	case "list":
		patternsListCmd(rest)
	case "suggest":
		patternsSuggestCmd(rest)
	case "bench":
		patternsBenchCmd(rest)
	case "help", "-h", "--help":
		printPatternsUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown patterns subcommand: %s\n\n", sub)
		printPatternsUsage()
		os.Exit(1)
	}
}

func printPatternsUsage() {
	fmt.Println(`Usage: fusion patterns <subcommand> [options]

Subcommands:
  list     Show the pattern catalog with fallbacks
  suggest  Rank patterns against a task brief by indicator match
  bench    Score every pattern over shared inputs and rank the results

Examples:
  fusion patterns list
  fusion patterns suggest "derisk the data migration"
  fusion patterns bench --mode critique`)
}

// patternsListCmd prints the catalog.
func patternsListCmd(args []string) {
	fs := flag.NewFlagSet("patterns list", flag.ExitOnError)
	patternsDir := fs.String("patterns", "", "Directory of extra .pattern.md files")

	fs.Usage = func() {
		fmt.Println(`Usage: fusion patterns list [options]

Show every registered pattern with its description and fallback.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	reg, err := buildRegistry(*patternsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading patterns: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Patterns (%d):\n", reg.Len())
	for _, id := range reg.IDs() {
		p, err := reg.Resolve(id)
		if err != nil {
			continue
		}
		fmt.Printf("  %-28s %s\n", p.ID, p.Description)
		if p.Fallback != "" {
			fmt.Printf("  %-28s falls back to %s\n", "", p.Fallback)
		}
	}
}

// patternsSuggestCmd ranks patterns against a task brief.
func patternsSuggestCmd(args []string) {
	fs := flag.NewFlagSet("patterns suggest", flag.ExitOnError)
	patternsDir := fs.String("patterns", "", "Directory of extra .pattern.md files")

	fs.Usage = func() {
		fmt.Println(`Usage: fusion patterns suggest [options] <task brief>

Rank patterns by how well their indicators match the brief.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  fusion patterns suggest "derisk the data migration"
  fusion patterns suggest "extract the signal from the survey results"`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	brief := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(brief) == "" {
		fmt.Fprintln(os.Stderr, "Error: no task brief provided")
		fs.Usage()
		os.Exit(1)
	}

	reg, err := buildRegistry(*patternsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading patterns: %v\n", err)
		os.Exit(1)
	}

	matches := reg.Suggest(brief)
	if len(matches) == 0 {
		fmt.Println("No patterns matched the brief.")
		return
	}

	fmt.Printf("Suggestions for %q:\n", brief)
	for _, m := range matches {
		fmt.Printf("  %-28s %.2f  %s\n", m.Pattern.ID, m.Score, m.Reason)
	}
}

// patternsBenchCmd scores the catalog over shared inputs.
func patternsBenchCmd(args []string) {
	fs := flag.NewFlagSet("patterns bench", flag.ExitOnError)
	mode := fs.String("mode", "", "Weight profile: simulate, ship, or critique")
	offline := fs.Bool("offline", false, "Force the local template generator")
	patternsDir := fs.String("patterns", "", "Directory of extra .pattern.md files")
	timeout := fs.Duration("timeout", 30*time.Minute, "Maximum execution time")

	fs.Usage = func() {
		fmt.Println(`Usage: fusion patterns bench [options] [pattern ...]

Run every pattern (or just the named ones) over a shared set of briefs,
score the outputs, and rank the patterns by mean composite.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  fusion patterns bench
  fusion patterns bench --mode critique RiskLens SignalExtractor`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	m, err := fusion.ParseMode(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	reg, err := buildRegistry(*patternsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading patterns: %v\n", err)
		os.Exit(1)
	}

	opts := []fusion.BenchmarkOption{fusion.WithBenchmarkMode(m)}
	if fs.NArg() > 0 {
		opts = append(opts, fusion.WithBenchmarkPatterns(fs.Args()...))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := fusion.RunBenchmark(ctx, reg, buildGenerator(*offline), opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(report.Markdown())
}
