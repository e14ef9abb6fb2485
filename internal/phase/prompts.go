package phase

import (
	"bytes"
	"embed"
	"fmt"
	"strings"

	"github.com/dotcommander/socialstory/internal/domain/story"
	"github.com/dotcommander/socialstory/internal/storage"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

type Stage string

const (
	StageStructure Stage = "structure"
	StagePage      Stage = "page"
	StageIndex     Stage = "index"
	StageQuiz      Stage = "quiz"
	StageChoices   Stage = "choices"
	StageGames     Stage = "games"
)

var systemMessages = map[Stage]string{
	StageStructure: "You are an expert social story creator specializing in creating educational, supportive narratives for children with diverse learning needs.",
	StagePage:      "You are an expert in creating accessible, visual HTML pages for social stories.",
	StageIndex:     "You are an expert in creating accessible web interfaces.",
	StageQuiz:      "You are an expert in creating educational quizzes for children.",
	StageChoices:   "You are an expert in creating interactive educational experiences.",
	StageGames:     "You are an expert in creating educational games for children.",
}

// Prompt is one ready-to-send request.
type Prompt struct {
	Stage  Stage
	System string
	Text   string
}

// PromptBuilder renders the stage prompts from embedded templates.
type PromptBuilder struct {
	cache    *PromptCache
	minPages int
	maxPages int
}

// NewPromptBuilder parses every stage template up front. minPages and
// maxPages bound the page count requested from the structure stage.
func NewPromptBuilder(minPages, maxPages int) (*PromptBuilder, error) {
	cache := NewPromptCache(promptFS)
	paths := make([]string, 0, len(systemMessages))
	for stage := range systemMessages {
		paths = append(paths, templatePath(stage))
	}
	if err := cache.Preload(paths); err != nil {
		return nil, err
	}

	return &PromptBuilder{
		cache:    cache,
		minPages: minPages,
		maxPages: maxPages,
	}, nil
}

func (b *PromptBuilder) Structure(topic string) (Prompt, error) {
	return b.render(StageStructure, struct {
		Topic              string
		MinPages, MaxPages int
	}{topic, b.minPages, b.maxPages})
}

func (b *PromptBuilder) Page(s *story.Structure, page story.Page, totalPages int) (Prompt, error) {
	return b.render(StagePage, struct {
		Title             string
		PageNumber        int
		TotalPages        int
		CharactersInfo    string
		SettingsInfo      string
		Setting           string
		CharactersPresent string
		Narrative         string
		VisualDescription string
		TeachingPoint     string
		AudioFile         string
	}{
		Title:             s.Title,
		PageNumber:        page.PageNumber,
		TotalPages:        totalPages,
		CharactersInfo:    CharacterListing(s.Characters),
		SettingsInfo:      SettingListing(s.Settings),
		Setting:           page.Setting,
		CharactersPresent: strings.Join(page.CharactersPresent, ", "),
		Narrative:         page.Narrative,
		VisualDescription: page.VisualDescription,
		TeachingPoint:     page.TeachingPoint,
		AudioFile:         storage.AudioFileName(page.PageNumber),
	})
}

func (b *PromptBuilder) Index(s *story.Structure, pageCount int) (Prompt, error) {
	return b.render(StageIndex, struct {
		Title      string
		PageCount  int
		Objectives string
		LastPage   string
	}{
		Title:      s.Title,
		PageCount:  pageCount,
		Objectives: strings.Join(s.LearningObjectives, ", "),
		LastPage:   storage.PageFileName(pageCount),
	})
}

func (b *PromptBuilder) Quiz(s *story.Structure) (Prompt, error) {
	return b.render(StageQuiz, struct {
		Title        string
		PagesSummary string
		Objectives   string
	}{s.Title, PagesSummary(s.Pages), strings.Join(s.LearningObjectives, ", ")})
}

func (b *PromptBuilder) Choices(s *story.Structure) (Prompt, error) {
	return b.render(StageChoices, struct {
		Title        string
		PagesSummary string
	}{s.Title, PagesSummary(s.Pages)})
}

func (b *PromptBuilder) Games(s *story.Structure) (Prompt, error) {
	return b.render(StageGames, struct {
		Title      string
		Characters string
	}{s.Title, strings.Join(s.CharacterNames(), ", ")})
}

func (b *PromptBuilder) render(stage Stage, data any) (Prompt, error) {
	tmpl, err := b.cache.LoadTemplate(templatePath(stage))
	if err != nil {
		return Prompt{}, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("executing %s prompt template: %w", stage, err)
	}

	return Prompt{
		Stage:  stage,
		System: systemMessages[stage],
		Text:   strings.TrimSpace(buf.String()),
	}, nil
}

// CharacterListing renders "- Name: description" lines.
func CharacterListing(characters []story.Character) string {
	lines := make([]string, len(characters))
	for i, c := range characters {
		lines[i] = fmt.Sprintf("- %s: %s", c.Name, c.Description)
	}
	return strings.Join(lines, "\n")
}

// SettingListing renders "- Name: description" lines.
func SettingListing(settings []story.Setting) string {
	lines := make([]string, len(settings))
	for i, s := range settings {
		lines[i] = fmt.Sprintf("- %s: %s", s.Name, s.Description)
	}
	return strings.Join(lines, "\n")
}

// PagesSummary renders "Page N: narrative" lines.
func PagesSummary(pages []story.Page) string {
	lines := make([]string, len(pages))
	for i, p := range pages {
		lines[i] = fmt.Sprintf("Page %d: %s", p.PageNumber, p.Narrative)
	}
	return strings.Join(lines, "\n")
}

func templatePath(stage Stage) string {
	return "prompts/" + string(stage) + ".tmpl"
}
