package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dotcommander/socialstory/internal/config"
	"github.com/dotcommander/socialstory/internal/domain/story"
	"github.com/dotcommander/socialstory/internal/metadata"
	"github.com/dotcommander/socialstory/internal/metrics"
	"github.com/dotcommander/socialstory/internal/quality"
	"github.com/dotcommander/socialstory/internal/storage"
)

// StageSetup covers story directory creation.
const StageSetup = "setup"

// Stage outcomes recorded in StageReport and metrics.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Stages holds one implementation per pipeline step.
type Stages struct {
	Structure   StructureStage
	Pages       PageStage
	Index       IndexStage
	Interactive InteractiveStage
	Audio       AudioStage
	Enhancement EnhancementStage
}

// StageReport records how a step ended. Err is set for skipped or failed
// steps.
type StageReport struct {
	Stage   string
	Outcome string
	Tokens  int
	Err     error
}

// RunResult is what a generation run produced.
type RunResult struct {
	RunID        string
	Topic        string
	Slug         string
	StoryDir     string
	Structure    *story.Structure
	PagesWritten int
	Audio        AudioResult
	TokensUsed   int
	Validation   quality.Result
	Stages       []StageReport
}

// Passing reports whether the story met the validation threshold.
func (r *RunResult) Passing() bool {
	return r != nil && r.Validation.Passing
}

// Pipeline runs the generation stages in order: structure, pages, index,
// quiz, choices, games, audio, enhancement, validation, metadata and the
// stories index.
type Pipeline struct {
	stages    Stages
	cfg       *config.Config
	validator *quality.Validator
	writer    *metadata.Writer
	metrics   *metrics.Metrics
	reporter  *Reporter
	logger    *slog.Logger
	now       func() time.Time
	newRunID  func() string
}

type Option func(*Pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

func WithReporter(r *Reporter) Option {
	return func(p *Pipeline) {
		p.reporter = r
	}
}

// WithClock fixes the time used for the story date and timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

func WithRunID(id string) Option {
	return func(p *Pipeline) {
		p.newRunID = func() string { return id }
	}
}

func NewPipeline(stages Stages, cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		stages:   stages,
		cfg:      cfg,
		logger:   slog.Default(),
		now:      time.Now,
		newRunID: func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.reporter == nil {
		p.reporter = NewReporter(nil)
	}
	p.validator = quality.NewValidator(cfg.Story.ValidationThreshold, quality.WithLogger(p.logger))
	p.writer = metadata.NewWriter(p.logger)

	return p
}

// run is the state of one Run call.
type run struct {
	*Pipeline
	ctx    context.Context
	result *RunResult
	store  *storage.FileSystem
	date   time.Time
	logger *slog.Logger
}

// Run generates a story for topic. The returned error is non-nil only for
// failures that stop the run (see IsFatal); a story that fails validation is
// a successful run with RunResult.Passing false. The result is never nil.
func (p *Pipeline) Run(ctx context.Context, topic string) (*RunResult, error) {
	r := &run{
		Pipeline: p,
		ctx:      ctx,
		result:   &RunResult{RunID: p.newRunID(), Topic: topic},
		date:     p.now(),
	}
	r.logger = p.logger.With("run_id", r.result.RunID)

	start := time.Now()
	err := r.execute()

	outcome := "passing"
	switch {
	case err != nil:
		outcome = "error"
		r.logger.Error("generation failed", "stage", StageOf(err), "error", err)
	case !r.result.Passing():
		outcome = "failing"
	}
	p.metrics.ObserveRun(outcome)
	r.logger.Info("generation finished",
		"outcome", outcome,
		"tokens", r.result.TokensUsed,
		"duration", time.Since(start),
	)

	if p.cfg.Metrics.PushgatewayURL != "" {
		// a cancelled run still reports its metrics
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if perr := p.metrics.Push(pushCtx, p.cfg.Metrics.PushgatewayURL, p.cfg.Metrics.JobName); perr != nil {
			r.logger.Warn("pushing metrics", "error", perr)
		}
	}

	return r.result, err
}

func (r *run) execute() error {
	r.reporter.Header(r.result.Topic, r.cfg.AI.Model)

	if err := r.generateStructure(); err != nil {
		return err
	}
	if err := r.createStoryDir(); err != nil {
		return err
	}

	r.reporter.Banner("STAGE 2: Generating Page Content")
	pageHTML := r.generatePages()
	r.generateIndex()

	r.reporter.Banner("STAGE 3: Generating Interactive Elements")
	r.generateInteractive()

	r.reporter.Banner("STAGE 4: Generating Audio Files")
	r.result.Structure.ResolveNarration(pageHTML, r.cfg.Story.NarrationSource == config.NarrationHTML)
	r.generateAudio()

	r.reporter.Banner("STAGE 5: Enhancement Pass")
	r.enhance()

	// the draft lets the structure check see story.json and story.md
	if err := r.writeMetadata(); err != nil {
		return err
	}

	r.reporter.Banner("VALIDATION")
	r.validate()

	r.reporter.Banner("SAVING METADATA")
	if err := r.writeMetadata(); err != nil {
		return err
	}
	if err := r.appendIndex(); err != nil {
		return err
	}

	r.reporter.Summary(r.result, r.validator.Threshold())
	return nil
}

func (r *run) record(stage, outcome string, tokens int, err error) {
	r.result.TokensUsed += tokens
	r.result.Stages = append(r.result.Stages, StageReport{
		Stage:   stage,
		Outcome: outcome,
		Tokens:  tokens,
		Err:     err,
	})
	r.metrics.ObserveStage(stage, outcome)
}

func (r *run) generateStructure() error {
	r.reporter.Banner("STAGE 1: Generating Story Structure")
	r.reporter.Line("Topic: %s", r.result.Topic)

	s, tokens, err := r.stages.Structure.Generate(r.ctx, r.result.Topic)
	if err != nil {
		if !errors.Is(err, ErrStructureGeneration) {
			err = fmt.Errorf("%w: %w", ErrStructureGeneration, err)
		}
		r.record(StageStructure, OutcomeFailed, tokens, err)
		r.reporter.Fail("Failed to generate story structure: %v", err)
		return NewStageError(StageStructure, err)
	}

	r.result.Structure = s
	r.record(StageStructure, OutcomeOK, tokens, nil)
	r.reporter.Structure(s, tokens)
	return nil
}

func (r *run) createStoryDir() error {
	dir, slug := storage.CreateStoryPath(r.cfg.Paths.StoriesDir, r.date, r.result.Topic)
	r.result.StoryDir, r.result.Slug = dir, slug
	r.store = storage.NewFileSystem(dir)

	for _, sub := range append([]string{"."}, storage.RequiredDirs...) {
		if err := r.store.MkdirAll(r.ctx, sub); err != nil {
			err = fmt.Errorf("%w: %s: %v", ErrStoryDirectory, dir, err)
			r.record(StageSetup, OutcomeFailed, 0, err)
			return NewStageError(StageSetup, err)
		}
	}

	r.reporter.Line("")
	r.reporter.Line("📁 Created story directory: %s", dir)
	return nil
}

func (r *run) generatePages() map[int]string {
	results := r.stages.Pages.GenerateAll(r.ctx, r.result.Structure, r.store)
	total := len(r.result.Structure.Pages)

	pageHTML := make(map[int]string, len(results))
	tokens := 0
	var errs []error
	for _, res := range results {
		tokens += res.Tokens
		r.reporter.Page(res, total)
		if res.Written() {
			r.result.PagesWritten++
			pageHTML[res.Number] = res.HTML
			continue
		}
		if res.Err != nil {
			errs = append(errs, res.Err)
		} else {
			errs = append(errs, fmt.Errorf("page %d: %w", res.Number, ErrStageSkipped))
		}
	}

	outcome := OutcomeOK
	switch {
	case r.result.PagesWritten == 0:
		outcome = OutcomeSkipped
	case r.result.PagesWritten < total:
		outcome = OutcomePartial
	}
	r.record(StagePages, outcome, tokens, errors.Join(errs...))
	return pageHTML
}

func (r *run) generateIndex() {
	r.reporter.Line("")
	r.reporter.Line("  📄 Generating story index...")
	html, tokens, ok := r.stages.Index.Generate(r.ctx, r.result.Structure, r.result.Structure.PageCount())
	r.saveArtifact(StageIndex, "Index", storage.IndexFile, html, tokens, ok)
}

func (r *run) generateInteractive() {
	s := r.result.Structure
	for _, step := range []struct {
		stage, label, file string
		gen                func(context.Context, *story.Structure) (string, int, bool)
	}{
		{"quiz", "Quiz", storage.QuizFile, r.stages.Interactive.Quiz},
		{"choices", "Choices", storage.ChoicesFile, r.stages.Interactive.Choices},
		{"games", "Games", storage.GamesFile, r.stages.Interactive.Games},
	} {
		r.reporter.Line("")
		r.reporter.Line("  🎯 Generating %s module...", step.stage)
		text, tokens, ok := step.gen(r.ctx, s)
		r.saveArtifact(StageInteractive+"_"+step.stage, step.label, storage.InteractivePath(step.file), text, tokens, ok)
	}
}

// saveArtifact writes one generated file. Failures skip the artifact and
// the run goes on.
func (r *run) saveArtifact(stage, label, path, text string, tokens int, ok bool) {
	if !ok {
		err := fmt.Errorf("%s: %w", path, ErrStageSkipped)
		r.record(stage, OutcomeSkipped, tokens, err)
		r.reporter.Fail("%s generation failed, skipping %s", label, path)
		return
	}

	if err := r.store.Save(r.ctx, path, []byte(text)); err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrArtifactWrite, path, err)
		r.logger.Error("saving artifact", "path", path, "error", err)
		r.record(stage, OutcomeFailed, tokens, err)
		r.reporter.Fail("%s could not be saved: %v", label, err)
		return
	}

	r.record(stage, OutcomeOK, tokens, nil)
	r.reporter.Success("%s generated (%d chars, %d tokens)", label, len(text), tokens)
}

func (r *run) generateAudio() {
	s := r.result.Structure
	audioDir := filepath.Join(r.result.StoryDir, storage.AudioDir)

	r.reporter.Line("")
	r.reporter.Line("🔊 Generating audio for %d pages...", len(s.Pages))
	res := r.stages.Audio.GenerateAll(r.ctx, s.Pages, audioDir)
	r.result.Audio = res

	outcome := OutcomeOK
	var err error
	switch {
	case res.Success == 0 && res.Total > 0:
		outcome = OutcomeSkipped
	case res.Failed > 0:
		outcome = OutcomePartial
	}
	if res.Failed > 0 {
		err = fmt.Errorf("%d of %d audio files: %w", res.Failed, res.Total, ErrStageSkipped)
	}
	r.record(StageAudio, outcome, 0, err)
	r.reporter.Audio(res)
}

func (r *run) enhance() {
	tokens := r.stages.Enhancement.Run(r.ctx, r.result.Structure)
	r.record(StageEnhancement, OutcomeOK, tokens, nil)
	r.reporter.Success("Enhancement complete (skipped for efficiency)")
}

func (r *run) validate() {
	r.result.Validation = r.validator.Validate(r.ctx, r.result.StoryDir)
	r.metrics.SetValidation(r.result.Validation.Percentage)

	outcome := OutcomeOK
	if !r.result.Validation.Passing {
		outcome = OutcomePartial
	}
	r.record(StageValidation, outcome, 0, nil)
	r.reporter.Validation(r.result.Validation)
}

func (r *run) metadataRecord() metadata.Record {
	rec := metadata.Record{
		RunID:       r.result.RunID,
		GeneratedAt: r.date,
		Model:       r.cfg.AI.Model,
		Topic:       r.result.Topic,
		Slug:        r.result.Slug,
		Structure:   r.result.Structure,
		TokensUsed:  r.result.TokensUsed,
		Audio: metadata.AudioSummary{
			Total:   r.result.Audio.Total,
			Success: r.result.Audio.Success,
			Failed:  r.result.Audio.Failed,
		},
		TTSModel: r.cfg.Speech.Model,
		TTSVoice: r.cfg.Speech.Voice,
	}
	if r.result.Validation.MaxScore > 0 {
		v := r.result.Validation
		rec.Validation = &v
	}
	return rec
}

func (r *run) writeMetadata() error {
	rec := r.metadataRecord()
	if err := r.writer.Write(r.ctx, r.store, rec); err != nil {
		err = fmt.Errorf("%w: %w", ErrMetadataWrite, err)
		r.record(StageMetadata, OutcomeFailed, 0, err)
		return NewStageError(StageMetadata, err)
	}
	if rec.Validation != nil {
		r.reporter.Success("Metadata saved to %s and %s", storage.StoryJSONFile, storage.StoryMDFile)
	}
	return nil
}

// appendIndex runs last so the shared index only lists finished stories.
func (r *run) appendIndex() error {
	root := storage.NewFileSystem(r.cfg.Paths.StoriesDir)
	entry := r.metadataRecord().IndexEntry(filepath.Base(r.result.StoryDir))

	if err := r.writer.AppendIndex(r.ctx, root, entry); err != nil {
		err = fmt.Errorf("%w: %w", ErrMetadataWrite, err)
		r.record(StageMetadata, OutcomeFailed, 0, err)
		return NewStageError(StageMetadata, err)
	}

	r.record(StageMetadata, OutcomeOK, 0, nil)
	r.reporter.Success("Updated %s", filepath.Join(r.cfg.Paths.StoriesDir, storage.StoriesIndexFile))
	return nil
}
