package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	fusion "github.com/everydev1618/gofusion"
)

// memoryCmd dispatches the memory inspection subcommands.
func memoryCmd(args []string) {
	if len(args) < 1 {
		printMemoryUsage()
		os.Exit(1)
	}

	sub := args[0]
	rest := args[1:]

	switch sub {
	case "show":
		memoryShowCmd(rest)
	case "insights":
		memoryInsightsCmd(rest)
	case "help", "-h", "--help":
		printMemoryUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown memory subcommand: %s\n\n", sub)
		printMemoryUsage()
		os.Exit(1)
	}
}

func printMemoryUsage() {
	fmt.Println(`Usage: fusion memory <subcommand> [options]

Subcommands:
  show      Dump the recorded performance document as JSON
  insights  Render a readable report over stats and recent chains

Examples:
  fusion memory insights
  fusion memory show --agent StrategyPilot`)
}

// memoryShowCmd dumps the performance document.
func memoryShowCmd(args []string) {
	fs := flag.NewFlagSet("memory show", flag.ExitOnError)
	agent := fs.String("agent", "", "Limit output to one agent's stats")
	memoryPath := fs.String("memory", fusion.DefaultMemoryPath(), "Memory document path")
	dbPath := fs.String("db", "", "Use a SQLite memory store at this path instead")

	fs.Usage = func() {
		fmt.Println(`Usage: fusion memory show [options]

Dump the recorded performance document as JSON.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	mem, err := openMemory(*memoryPath, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening memory: %v\n", err)
		os.Exit(1)
	}
	defer mem.Close()

	var out any
	if *agent != "" {
		out = mem.Stats(*agent)
	} else {
		out = mem.Snapshot()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// memoryInsightsCmd renders the readable performance report.
func memoryInsightsCmd(args []string) {
	fs := flag.NewFlagSet("memory insights", flag.ExitOnError)
	memoryPath := fs.String("memory", fusion.DefaultMemoryPath(), "Memory document path")
	dbPath := fs.String("db", "", "Use a SQLite memory store at this path instead")

	fs.Usage = func() {
		fmt.Println(`Usage: fusion memory insights [options]

Render a readable report over recorded pattern performance and the
recent chain history.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	mem, err := openMemory(*memoryPath, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening memory: %v\n", err)
		os.Exit(1)
	}
	defer mem.Close()

	fmt.Println(mem.Insights())
}
