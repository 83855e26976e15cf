package main

import (
	"flag"
	"fmt"
	"os"

	"plvm/internal/compiler"
	"plvm/internal/logger"
	"plvm/pkg/color"

	"github.com/charmbracelet/log"
)

// Main entry point for the plvm interpreter.
func main() {
	options := compiler.Compiler{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.ShouldInterpret, "r", true, "Run with interpreter")
	flag.BoolVar(&options.CheckOnly, "check", false, "Type check only")
	flag.BoolVar(&options.Dump, "dump", false, "Print top level memory after the run")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.IntVar(&options.MaxSteps, "steps", 0, "Maximum instructions per run (0 takes the config value)")
	flag.IntVar(&options.MaxDepth, "depth", 0, "Maximum nested calls (0 takes the config value)")
	flag.StringVar(&options.SnapshotFile, "snapshot", "", "Write a CBOR snapshot of public top level variables")
	flag.StringVar(&options.ConfigFile, "config", "", "TOML config file")
	flag.StringVar(&options.ScenarioFile, "scenarios", "", "Run every scenario of a markdown file")

	flag.Parse()
	args := flag.Args()

	if err := options.Configure(); err != nil {
		logger.Init(options.Verbose, options.NoColor)
		log.Fatal("Invalid configuration", "file", options.ConfigFile, "error", err)
	}

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options] <file>\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if options.ScenarioFile != "" {
		if err := options.RunScenarios(); err != nil {
			log.Fatal("Scenarios failed", "error", err)
		}
		return
	}

	if len(args) == 0 {
		log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	options.SourceFile = args[0]

	err := options.Compile()
	if err != nil {
		log.Fatal("Execution failed", "error", err)
	}
}
