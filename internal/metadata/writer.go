package metadata

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/dotcommander/socialstory/internal/domain/story"
	"github.com/dotcommander/socialstory/internal/quality"
	"github.com/dotcommander/socialstory/internal/storage"
)

const (
	ValidationPending = "pending"
	ValidationPassing = "passing"
	ValidationFailing = "failing"
)

//go:embed story.md.tmpl
var storyMarkdown string

var storyTemplate = template.Must(template.New(storage.StoryMDFile).Parse(storyMarkdown))

type AudioSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// Record is everything known about a finished (or draft) story.
// A nil Validation marks a draft written before validation ran.
type Record struct {
	RunID       string
	GeneratedAt time.Time
	Model       string
	Topic       string
	Slug        string
	Structure   *story.Structure
	TokensUsed  int
	Audio       AudioSummary
	Validation  *quality.Result
	TTSModel    string
	TTSVoice    string
}

// Metadata is the story.json document.
type Metadata struct {
	GeneratedDate      string          `json:"generated_date"`
	GeneratedTimestamp string          `json:"generated_timestamp"`
	RunID              string          `json:"run_id"`
	Model              string          `json:"model"`
	Topic              string          `json:"topic"`
	Slug               string          `json:"slug"`
	Title              string          `json:"title"`
	Pages              int             `json:"pages"`
	Characters         []string        `json:"characters"`
	Settings           []string        `json:"settings"`
	LearningObjectives []string        `json:"learning_objectives"`
	EmotionalTone      string          `json:"emotional_tone"`
	TokensUsed         int             `json:"tokens_used"`
	Audio              AudioSummary    `json:"audio"`
	ValidationStatus   string          `json:"validation_status"`
	Validation         *quality.Result `json:"validation"`
	TTSModel           string          `json:"tts_model"`
	TTSVoice           string          `json:"tts_voice"`
}

// IndexEntry is one line of the shared stories index.
type IndexEntry struct {
	Date  string `json:"date"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Topic string `json:"topic"`
	Pages int    `json:"pages"`
	Path  string `json:"path"`
}

func (r Record) date() string {
	return r.GeneratedAt.Format(time.DateOnly)
}

func (r Record) status() string {
	switch {
	case r.Validation == nil:
		return ValidationPending
	case r.Validation.Passing:
		return ValidationPassing
	default:
		return ValidationFailing
	}
}

// Metadata builds the story.json document.
func (r Record) Metadata() Metadata {
	s := r.Structure
	objectives := s.LearningObjectives
	if objectives == nil {
		objectives = []string{}
	}

	return Metadata{
		GeneratedDate:      r.date(),
		GeneratedTimestamp: r.GeneratedAt.Format(time.RFC3339),
		RunID:              r.RunID,
		Model:              r.Model,
		Topic:              r.Topic,
		Slug:               r.Slug,
		Title:              s.Title,
		Pages:              s.PageCount(),
		Characters:         s.CharacterNames(),
		Settings:           s.SettingNames(),
		LearningObjectives: objectives,
		EmotionalTone:      s.EmotionalTone,
		TokensUsed:         r.TokensUsed,
		Audio:              r.Audio,
		ValidationStatus:   r.status(),
		Validation:         r.Validation,
		TTSModel:           r.TTSModel,
		TTSVoice:           r.TTSVoice,
	}
}

// IndexEntry builds the stories index line for a story stored in dirName.
func (r Record) IndexEntry(dirName string) IndexEntry {
	return IndexEntry{
		Date:  r.date(),
		Slug:  r.Slug,
		Title: r.Structure.Title,
		Topic: r.Topic,
		Pages: r.Structure.PageCount(),
		Path:  dirName,
	}
}

// RenderMarkdown renders story.md.
func RenderMarkdown(r Record) ([]byte, error) {
	s := r.Structure
	view := struct {
		Title              string
		GeneratedDate      string
		Topic              string
		Model              string
		Pages              int
		TokensUsed         int
		Audio              AudioSummary
		Characters         []story.Character
		Settings           []story.Setting
		LearningObjectives []string
		EmotionalTone      string
		StoryPages         []story.Page
		Validation         *quality.Result
	}{
		Title:              s.Title,
		GeneratedDate:      r.date(),
		Topic:              r.Topic,
		Model:              r.Model,
		Pages:              s.PageCount(),
		TokensUsed:         r.TokensUsed,
		Audio:              r.Audio,
		Characters:         s.Characters,
		Settings:           s.Settings,
		LearningObjectives: s.LearningObjectives,
		EmotionalTone:      s.EmotionalTone,
		StoryPages:         s.Pages,
		Validation:         r.Validation,
	}

	var buf bytes.Buffer
	if err := storyTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", storage.StoryMDFile, err)
	}
	return buf.Bytes(), nil
}

// Writer persists story metadata and the shared stories index.
type Writer struct {
	logger *slog.Logger
}

func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger.With("component", "metadata")}
}

// Write saves story.json and story.md through store, which is rooted at the
// story directory.
func (w *Writer) Write(ctx context.Context, store storage.Storage, r Record) error {
	data, err := json.MarshalIndent(r.Metadata(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", storage.StoryJSONFile, err)
	}
	if err := store.Save(ctx, storage.StoryJSONFile, append(data, '\n')); err != nil {
		return fmt.Errorf("saving %s: %w", storage.StoryJSONFile, err)
	}

	md, err := RenderMarkdown(r)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, storage.StoryMDFile, md); err != nil {
		return fmt.Errorf("saving %s: %w", storage.StoryMDFile, err)
	}

	w.logger.Debug("metadata saved",
		"title", r.Structure.Title,
		"validation", r.status(),
	)
	return nil
}

// AppendIndex adds entry to index.json through store, which is rooted at the
// stories directory. A missing index starts a new list; an unreadable one is
// an error so existing entries are never dropped.
func (w *Writer) AppendIndex(ctx context.Context, store storage.Storage, entry IndexEntry) error {
	entries, err := LoadIndex(ctx, store)
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", storage.StoriesIndexFile, err)
	}
	if err := store.Save(ctx, storage.StoriesIndexFile, append(data, '\n')); err != nil {
		return fmt.Errorf("saving %s: %w", storage.StoriesIndexFile, err)
	}

	w.logger.Debug("stories index updated", "entries", len(entries), "path", entry.Path)
	return nil
}

// LoadIndex reads the stories index. A missing file is an empty index.
func LoadIndex(ctx context.Context, store storage.Storage) ([]IndexEntry, error) {
	if !store.Exists(ctx, storage.StoriesIndexFile) {
		return []IndexEntry{}, nil
	}

	data, err := store.Load(ctx, storage.StoriesIndexFile)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", storage.StoriesIndexFile, err)
	}

	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", storage.StoriesIndexFile, err)
	}
	if entries == nil {
		entries = []IndexEntry{}
	}
	return entries, nil
}
