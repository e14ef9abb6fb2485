package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dotcommander/socialstory/internal/agent"
	"github.com/dotcommander/socialstory/internal/config"
	"github.com/dotcommander/socialstory/internal/core"
	"github.com/dotcommander/socialstory/internal/metrics"
	"github.com/dotcommander/socialstory/internal/phase"
	"github.com/dotcommander/socialstory/internal/phase/generate"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file (default $SOCIAL_STORY_CONFIG)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [topic words...]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	reporter := core.NewReporter(os.Stdout)
	pipeline, err := newPipeline(cfg, logger, reporter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Limits.TotalTimeout)
	defer cancel()

	result, err := pipeline.Run(ctx, cfg.Topic(flag.Args()))
	if err != nil {
		reporter.Error(err)
		return 1
	}
	if !result.Passing() {
		return 1
	}
	return 0
}

func newPipeline(cfg *config.Config, logger *slog.Logger, reporter *core.Reporter) (*core.Pipeline, error) {
	m := metrics.New()
	api := agent.NewOpenAI(cfg.AI)

	caller := agent.NewClient(api, cfg,
		agent.WithMetrics(m),
		agent.WithLogger(logger.With("component", "ai_client")),
	)
	speaker := agent.NewSpeaker(api, cfg.Speech,
		agent.WithSpeakerMetrics(m),
		agent.WithSpeakerLogger(logger.With("component", "speaker")),
	)

	prompts, err := phase.NewPromptBuilder(cfg.Story.MinPages, cfg.Story.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}
	base := phase.NewBaseGenerator(caller, phase.WithLogger(logger.With("component", "generator")))

	stages := core.Stages{
		Structure:   generate.NewStructureGenerator(base, prompts, cfg.Story.MinPages, cfg.Story.MaxPages),
		Pages:       generate.NewPageGenerator(base, prompts, cfg.Limits.PageWorkers),
		Index:       generate.NewIndexGenerator(base, prompts),
		Interactive: generate.NewInteractiveGenerator(base, prompts),
		Audio:       generate.NewAudioGenerator(speaker, cfg.Limits.AudioWorkers, logger),
		Enhancement: generate.NewEnhancer(logger),
	}

	return core.NewPipeline(stages, cfg,
		core.WithLogger(logger),
		core.WithMetrics(m),
		core.WithReporter(reporter),
	), nil
}
