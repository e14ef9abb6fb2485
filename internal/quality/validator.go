package quality

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dotcommander/socialstory/internal/storage"
)

const (
	MaxScore         = 10
	DefaultThreshold = 70.0

	// pages inspected for accessibility and print styling
	samplePages = 3
	// an interactive module shorter than this is a stub
	minScriptChars = 100
)

// Check names.
const (
	CheckStructure     = "structure"
	CheckPages         = "pages"
	CheckAccessibility = "accessibility"
	CheckInteractive   = "interactive"
	CheckAudio         = "audio"
	CheckNavigation    = "navigation"
	CheckPrintCSS      = "print_css"
)

type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomePartial Outcome = "partial"
	OutcomeFail    Outcome = "fail"
)

// CheckResult is the outcome of one rubric line.
type CheckResult struct {
	Name       string   `json:"name"`
	Points     int      `json:"points"`
	MaxPoints  int      `json:"max_points"`
	Outcome    Outcome  `json:"outcome"`
	ReadErrors []string `json:"read_errors,omitempty"`
}

type Details struct {
	PagesFound          int     `json:"pages_found"`
	AudioFiles          int     `json:"audio_files"`
	InteractiveElements int     `json:"interactive_elements"`
	AccessibilityScore  float64 `json:"accessibility_score"`
	HasNavigation       bool    `json:"has_navigation"`
	HasPrintCSS         bool    `json:"has_print_css"`
}

// Result is the scored validation of one story directory.
type Result struct {
	Story      string        `json:"story,omitempty"`
	Score      int           `json:"score"`
	MaxScore   int           `json:"max_score"`
	Percentage float64       `json:"percentage"`
	Passing    bool          `json:"passing"`
	Threshold  float64       `json:"threshold"`
	Issues     []string      `json:"issues"`
	Warnings   []string      `json:"warnings"`
	Details    Details       `json:"details"`
	Checks     []CheckResult `json:"checks"`
}

// Validator scores a story directory against a fixed 10 point rubric.
// It only reads; missing or unreadable files count as missing evidence.
type Validator struct {
	threshold float64
	logger    *slog.Logger
}

type Option func(*Validator)

func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// NewValidator returns a validator passing stories at or above threshold
// percent. A threshold <= 0 uses DefaultThreshold.
func NewValidator(threshold float64, opts ...Option) *Validator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	v := &Validator{
		threshold: threshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "validator")
	return v
}

func (v *Validator) Threshold() float64 {
	return v.threshold
}

// run carries the state of one Validate call.
type run struct {
	ctx      context.Context
	fs       *storage.FileSystem
	result   Result
	pages    []string
	sampled  []string
	contents map[string]pageRead
}

type pageRead struct {
	text string
	err  error
}

// Validate scores storyDir.
func (v *Validator) Validate(ctx context.Context, storyDir string) Result {
	r := &run{
		ctx: ctx,
		fs:  storage.NewFileSystem(storyDir),
		result: Result{
			Story:     filepath.Base(storyDir),
			MaxScore:  MaxScore,
			Threshold: v.threshold,
			Issues:    []string{},
			Warnings:  []string{},
		},
		contents: make(map[string]pageRead),
	}

	r.pages, _ = r.fs.List(ctx, filepath.Join(storage.PagesDir, "page-*.html"))
	r.sampled = r.pages[:min(samplePages, len(r.pages))]

	for _, check := range []func() CheckResult{
		r.checkStructure,
		r.checkPages,
		r.checkAccessibility,
		r.checkInteractive,
		r.checkAudio,
		r.checkNavigation,
		r.checkPrintCSS,
	} {
		c := check()
		c.Outcome = outcomeOf(c.Points, c.MaxPoints)
		r.result.Score += c.Points
		r.result.Checks = append(r.result.Checks, c)

		v.logger.Debug("check scored",
			"story", r.result.Story,
			"check", c.Name,
			"points", c.Points,
			"max_points", c.MaxPoints,
		)
	}

	// the check weights add up to 12; the score is capped at MaxScore
	r.result.Score = min(r.result.Score, MaxScore)
	r.result.Percentage = float64(r.result.Score) * 100 / MaxScore
	r.result.Passing = r.result.Percentage >= v.threshold

	v.logger.Info("story validated",
		"story", r.result.Story,
		"score", r.result.Score,
		"percentage", r.result.Percentage,
		"passing", r.result.Passing,
	)
	return r.result
}

func (r *run) issue(format string, args ...any) {
	r.result.Issues = append(r.result.Issues, fmt.Sprintf(format, args...))
}

func (r *run) warn(format string, args ...any) {
	r.result.Warnings = append(r.result.Warnings, fmt.Sprintf(format, args...))
}

// read loads a story-relative file, caching sampled pages across checks.
func (r *run) read(path string) (string, error) {
	if cached, ok := r.contents[path]; ok {
		return cached.text, cached.err
	}
	data, err := r.fs.Load(r.ctx, path)
	r.contents[path] = pageRead{text: string(data), err: err}
	return string(data), err
}

func (r *run) checkStructure() CheckResult {
	c := CheckResult{Name: CheckStructure, MaxPoints: 2}
	complete := true

	for _, name := range storage.RequiredFiles {
		if !r.fs.Exists(r.ctx, name) {
			r.issue("Missing required file: %s", name)
			complete = false
		}
	}
	for _, name := range storage.RequiredDirs {
		if !r.fs.Exists(r.ctx, name) {
			r.issue("Missing required directory: %s", name)
			complete = false
		}
	}

	if complete {
		c.Points = 2
	}
	return c
}

func (r *run) checkPages() CheckResult {
	c := CheckResult{Name: CheckPages, MaxPoints: 2}
	n := len(r.pages)
	r.result.Details.PagesFound = n

	c.Points = PageCountPoints(n)
	switch c.Points {
	case 1:
		r.warn("Only %d pages generated (recommended: 5-8)", n)
	case 0:
		r.issue("Insufficient pages: %d (minimum: 3)", n)
	}
	return c
}

// PageCountPoints is 2 for five or more pages, 1 for three or four, else 0.
func PageCountPoints(n int) int {
	switch {
	case n >= 5:
		return 2
	case n >= 3:
		return 1
	default:
		return 0
	}
}

func (r *run) checkAccessibility() CheckResult {
	c := CheckResult{Name: CheckAccessibility, MaxPoints: 2}

	// tenths of a point
	tenths := 0
	for _, page := range r.sampled {
		content, err := r.read(page)
		if err != nil {
			c.ReadErrors = append(c.ReadErrors, err.Error())
			continue
		}
		tenths += accessibilityTenths(content)
	}
	r.result.Details.AccessibilityScore = float64(tenths) / 10

	switch {
	case tenths >= 15:
		c.Points = 2
	case tenths >= 8:
		c.Points = 1
		r.warn("Limited accessibility features found")
	default:
		r.issue("Insufficient accessibility features")
	}
	return c
}

func accessibilityTenths(content string) int {
	tenths := 0
	if strings.Contains(content, "aria-label") || strings.Contains(content, "role=") {
		tenths += 3
	}
	if strings.Contains(content, "<nav") && strings.Contains(content, "<main") {
		tenths += 3
	}
	if strings.Contains(content, "alt=") || strings.Contains(content, "aria-describedby") {
		tenths += 4
	}
	return tenths
}

func (r *run) checkInteractive() CheckResult {
	c := CheckResult{Name: CheckInteractive, MaxPoints: 2}

	found := 0
	for _, name := range storage.InteractiveFiles {
		path := storage.InteractivePath(name)
		if !r.fs.Exists(r.ctx, path) {
			continue
		}
		content, err := r.read(path)
		if err != nil {
			c.ReadErrors = append(c.ReadErrors, err.Error())
			continue
		}
		if utf8.RuneCountInString(strings.TrimSpace(content)) > minScriptChars {
			found++
		}
	}
	r.result.Details.InteractiveElements = found

	total := len(storage.InteractiveFiles)
	switch {
	case found >= total:
		c.Points = 2
	case found == total-1:
		c.Points = 1
		r.warn("Only %d/%d interactive elements found", found, total)
	default:
		r.issue("Insufficient interactive elements: %d/%d", found, total)
	}
	return c
}

func (r *run) checkAudio() CheckResult {
	c := CheckResult{Name: CheckAudio, MaxPoints: 2}

	files, _ := r.fs.List(r.ctx, filepath.Join(storage.AudioDir, "page-*.mp3"))
	audio, pages := len(files), len(r.pages)
	r.result.Details.AudioFiles = audio

	switch {
	case pages > 0 && audio*10 >= pages*9:
		c.Points = 2
	case pages > 0 && audio*2 >= pages:
		c.Points = 1
		r.warn("Incomplete audio: %d/%d pages", audio, pages)
	default:
		r.issue("Insufficient audio files: %d/%d pages", audio, pages)
	}
	return c
}

var navigationMarkers = []string{"<nav", "page-nav", "btn-next", "btn-prev", "navigation"}

func (r *run) checkNavigation() CheckResult {
	c := CheckResult{Name: CheckNavigation, MaxPoints: 1}

	content, err := r.read(storage.IndexFile)
	if err != nil && r.fs.Exists(r.ctx, storage.IndexFile) {
		c.ReadErrors = append(c.ReadErrors, err.Error())
	}

	if err == nil {
		for _, marker := range navigationMarkers {
			if strings.Contains(content, marker) {
				c.Points = 1
				break
			}
		}
	}

	r.result.Details.HasNavigation = c.Points == 1
	if c.Points == 0 {
		r.warn("No navigation elements found in index.html")
	}
	return c
}

func (r *run) checkPrintCSS() CheckResult {
	c := CheckResult{Name: CheckPrintCSS, MaxPoints: 1}

	if len(r.sampled) > 0 {
		content, err := r.read(r.sampled[0])
		switch {
		case err != nil:
			c.ReadErrors = append(c.ReadErrors, err.Error())
		case strings.Contains(content, "@media print") || strings.Contains(content, "print.css"):
			c.Points = 1
		}
	}

	r.result.Details.HasPrintCSS = c.Points == 1
	if c.Points == 0 {
		r.warn("No print-friendly CSS detected")
	}
	return c
}

func outcomeOf(points, maxPoints int) Outcome {
	switch {
	case points >= maxPoints:
		return OutcomePass
	case points > 0:
		return OutcomePartial
	default:
		return OutcomeFail
	}
}
