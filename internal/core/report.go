package core

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/socialstory/internal/domain/story"
	"github.com/dotcommander/socialstory/internal/quality"
)

const bannerWidth = 60

// Reporter prints the human-readable progress of a run. Colour is only
// emitted when out is a terminal.
type Reporter struct {
	out     io.Writer
	title   lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
	divider string
}

// NewReporter writes to out, or stdout when out is nil.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	renderer := lipgloss.NewRenderer(out)

	return &Reporter{
		out:     out,
		title:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		ok:      renderer.NewStyle().Foreground(lipgloss.Color("#04B575")),
		warn:    renderer.NewStyle().Foreground(lipgloss.Color("#FFB86C")),
		fail:    renderer.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
		muted:   renderer.NewStyle().Foreground(lipgloss.Color("#626262")),
		divider: strings.Repeat("=", bannerWidth),
	}
}

func (r *Reporter) print(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(r.out, style.Render(fmt.Sprintf(format, args...)))
}

// Line prints an unstyled line.
func (r *Reporter) Line(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *Reporter) Success(format string, args ...any) {
	r.print(r.ok, "  ✅ "+format, args...)
}

func (r *Reporter) Warn(format string, args ...any) {
	r.print(r.warn, "  ⚠️  "+format, args...)
}

func (r *Reporter) Fail(format string, args ...any) {
	r.print(r.fail, "  ❌ "+format, args...)
}

// Banner prints a stage heading between two rules.
func (r *Reporter) Banner(title string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.muted.Render(r.divider))
	fmt.Fprintln(r.out, r.title.Render(title))
	fmt.Fprintln(r.out, r.muted.Render(r.divider))
}

// Header opens a generation run.
func (r *Reporter) Header(topic, model string) {
	r.Banner("AI SOCIAL STORY GENERATOR")
	r.Line("Topic: %s", topic)
	r.Line("Model: %s", model)
	fmt.Fprintln(r.out, r.muted.Render(r.divider))
}

func (r *Reporter) Structure(s *story.Structure, tokens int) {
	r.print(r.ok, "✅ Story structure generated: %s", s.Title)
	r.Line("   - Characters: %d", len(s.Characters))
	r.Line("   - Settings: %d", len(s.Settings))
	r.Line("   - Pages: %d", len(s.Pages))
	r.Line("   - Tokens used: %d", tokens)
}

func (r *Reporter) Page(res PageResult, total int) {
	switch {
	case res.Written():
		r.Success("Page %d/%d generated (%d chars, %d tokens)", res.Number, total, len(res.HTML), res.Tokens)
	case res.Err != nil:
		r.Fail("Page %d/%d not saved: %v", res.Number, total, res.Err)
	default:
		r.Fail("Page %d/%d generation failed, skipping", res.Number, total)
	}
}

func (r *Reporter) Audio(res AudioResult) {
	r.Line("")
	r.Line("🔊 Audio Generation Complete:")
	r.print(r.ok, "   ✅ Success: %d/%d", res.Success, res.Total)
	style := r.muted
	if res.Failed > 0 {
		style = r.fail
	}
	r.print(style, "   ❌ Failed: %d/%d", res.Failed, res.Total)
}

// Validation prints every rubric outcome followed by the score.
func (r *Reporter) Validation(res quality.Result) {
	r.Line("")
	r.Line("🔍 Validating story: %s...", res.Story)
	for _, issue := range res.Issues {
		r.Fail("%s", issue)
	}
	for _, warning := range res.Warnings {
		r.Warn("%s", warning)
	}
	r.Line("")
	r.Line("🔍 Validation Score: %d/%d (%.1f%%)", res.Score, res.MaxScore, res.Percentage)
	if res.Passing {
		r.print(r.ok, "Status: ✅ PASSING")
	} else {
		r.print(r.fail, "Status: ❌ FAILING")
	}
}

// Summary closes a generation run.
func (r *Reporter) Summary(res *RunResult, threshold float64) {
	r.Banner("GENERATION COMPLETE")
	status := "FAILING"
	if res.Passing() {
		status = "PASSING"
	}
	r.print(r.ok, "✅ Story: %s", res.Structure.Title)
	r.print(r.ok, "✅ Location: %s", res.StoryDir)
	r.print(r.ok, "✅ Pages: %d", res.PagesWritten)
	r.print(r.ok, "✅ Audio files: %d/%d", res.Audio.Success, res.Audio.Total)
	r.print(r.ok, "✅ Total tokens: %s", FormatNumber(res.TokensUsed))
	r.print(r.ok, "✅ Validation: %.1f%% (%s)", res.Validation.Percentage, status)
	fmt.Fprintln(r.out, r.muted.Render(r.divider))

	if !res.Passing() {
		r.Line("")
		r.print(r.warn, "⚠️  Warning: Story did not pass validation threshold (%s%%)", formatThreshold(threshold))
		r.Line("Issues: %s", strings.Join(res.Validation.Issues, ", "))
	}
}

// BatchSummary closes a validate-stories run.
func (r *Reporter) BatchSummary(sum quality.Summary, threshold float64) {
	divider := strings.Repeat("=", 50)
	r.Line("")
	fmt.Fprintln(r.out, r.muted.Render(divider))
	fmt.Fprintln(r.out, r.title.Render("VALIDATION SUMMARY"))
	fmt.Fprintln(r.out, r.muted.Render(divider))
	r.Line("Total stories validated: %d", sum.Total)
	r.Line("Stories passing (≥%s%%): %d", formatThreshold(threshold), sum.Passing)
	r.Line("Stories failing: %d", sum.Failing)
	r.Line("Average score: %.1f%%", sum.AverageScore)

	r.Line("")
	switch {
	case sum.Total == 0:
		r.print(r.fail, "❌ No story directories found!")
	case sum.AllPassing:
		r.print(r.ok, "✅ All stories pass validation!")
	default:
		r.print(r.fail, "❌ %d stories are failing validation!", sum.Failing)
	}
}

// Error prints a fatal run error.
func (r *Reporter) Error(err error) {
	r.Line("")
	r.print(r.fail, "❌ Error during generation: %v", err)
}

// FormatNumber renders n with thousands separators: 12345 -> "12,345".
func FormatNumber(n int) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return result.String()
}

func formatThreshold(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
