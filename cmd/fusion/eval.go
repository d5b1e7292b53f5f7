package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	fusion "github.com/everydev1618/gofusion"
)

// evalCmd scores a standalone text file on the quality dimensions.
func evalCmd(args []string) {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	mode := fs.String("mode", "", "Weight profile: simulate, ship, or critique")
	pattern := fs.String("pattern", "", "Pattern the text was generated with, for the effectiveness dimension")
	input := fs.String("input", "", "Original input text, for the relevance dimension")
	patternsDir := fs.String("patterns", "", "Directory of extra .pattern.md files")

	fs.Usage = func() {
		fmt.Println(`Usage: fusion eval [options] <file>

Score a text file on the six quality dimensions and report the weighted
composite against the mode's acceptance bar. Use "-" to read from stdin.

A score below the bar is a finding, not a failure; eval exits non-zero
only when the file cannot be read or is empty.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  fusion eval draft.md
  fusion eval --mode ship --pattern StepwiseInsightSynthesis draft.md
  some-tool | fusion eval -`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no file specified")
		fs.Usage()
		os.Exit(1)
	}

	file := fs.Arg(0)
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", file, err)
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

	eval, err := fusion.NewEvaluator(reg).Score(fusion.ScoreInput{
		Output:    string(data),
		PatternID: *pattern,
		Input:     *input,
	}, fusion.WeightsFor(m))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, d := range fusion.Dimensions() {
		fmt.Printf("%-14s %.2f\n", d, eval.Scores[d])
	}

	threshold := fusion.ThresholdFor(m)
	fmt.Printf("\n%-14s %.2f (threshold %.2f, mode %s)\n", "composite", eval.Composite, threshold, m)
	if eval.Composite >= threshold {
		fmt.Printf("Meets the %s bar.\n", m)
	} else {
		fmt.Printf("Falls short of the %s bar.\n", m)
	}
}

// validateCmd validates a .fusion.yaml chain file.
func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	patternsDir := fs.String("patterns", "", "Directory of extra .pattern.md files")
	verbose := fs.Bool("verbose", false, "Show detailed validation results")

	fs.Usage = func() {
		fmt.Println(`Usage: fusion validate [options] <file.fusion.yaml>

Validate a chain file without executing it.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  fusion validate campaign.fusion.yaml
  fusion validate --verbose campaign.fusion.yaml`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no .fusion.yaml file specified")
		fs.Usage()
		os.Exit(1)
	}

	file := fs.Arg(0)

	reg, err := buildRegistry(*patternsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading patterns: %v\n", err)
		os.Exit(1)
	}

	chain, err := fusion.ParseChainFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	roster := fusion.NewRoster(fusion.DefaultRoster()...)
	if err := chain.Validate(reg, roster); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("File: %s\n", file)
		fmt.Printf("Name: %s\n", chain.Name)
		if chain.Description != "" {
			fmt.Printf("Description: %s\n", chain.Description)
		}
		m, _ := chain.ResolvedMode()
		fmt.Printf("Mode: %s (threshold %.2f)\n", m, fusion.ThresholdFor(m))
		fmt.Println()

		if len(chain.Agents) > 0 {
			fmt.Printf("Inline agents (%d):\n", len(chain.Agents))
			for _, spec := range chain.Agents {
				fmt.Printf("  - %s: %s\n", spec.Name, spec.Role)
			}
			fmt.Println()
		}

		fmt.Printf("Steps (%d):\n", len(chain.Steps))
		for i, step := range chain.Steps {
			pattern := step.Pattern
			if pattern == "" {
				pattern = "(agent default)"
			}
			extras := make([]string, 0, 2)
			if step.Tension != "" {
				extras = append(extras, "tension="+step.Tension)
			}
			if step.Threshold != nil {
				extras = append(extras, fmt.Sprintf("threshold=%.2f", *step.Threshold))
			}
			line := fmt.Sprintf("  %d. %s: %s", i+1, step.Agent, pattern)
			if len(extras) > 0 {
				line += " (" + strings.Join(extras, ", ") + ")"
			}
			fmt.Println(line)
		}
		fmt.Println()
	}

	fmt.Printf("Valid: %s\n", file)
}
