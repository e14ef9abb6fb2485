package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dotcommander/socialstory/internal/config"
	"github.com/dotcommander/socialstory/internal/core"
	"github.com/dotcommander/socialstory/internal/quality"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file (default $SOCIAL_STORY_CONFIG)")
	asJSON := flag.Bool("json", false, "print the summary as JSON instead of text")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [stories-dir]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.LoadForValidation(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	root := cfg.Paths.StoriesDir
	if flag.NArg() > 0 {
		root = flag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validator := quality.NewValidator(cfg.Story.ValidationThreshold, quality.WithLogger(logger))
	summary, err := validator.ValidateAll(ctx, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ validating %s: %v\n", root, err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			fmt.Fprintf(os.Stderr, "❌ encoding summary: %v\n", err)
			return 1
		}
	} else {
		reporter := core.NewReporter(os.Stdout)
		reporter.Line("🔍 Validating all stories in %s...", root)
		for _, result := range summary.Results {
			reporter.Validation(result)
		}
		reporter.BatchSummary(summary, validator.Threshold())
	}

	if !summary.AllPassing {
		return 1
	}
	return 0
}
