package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const maxSlugLength = 50

// Fixed names inside a story directory.
const (
	IndexFile        = "index.html"
	StoryJSONFile    = "story.json"
	StoryMDFile      = "story.md"
	PagesDir         = "pages"
	AudioDir         = "audio"
	InteractiveDir   = "interactive"
	QuizFile         = "quiz.js"
	ChoicesFile      = "choices.js"
	GamesFile        = "games.js"
	StoriesIndexFile = "index.json"
)

// RequiredFiles and RequiredDirs make up a structurally complete story.
var (
	RequiredFiles    = []string{IndexFile, StoryJSONFile, StoryMDFile}
	RequiredDirs     = []string{PagesDir, AudioDir, InteractiveDir}
	InteractiveFiles = []string{QuizFile, ChoicesFile, GamesFile}
)

// PageFileName returns the page-relative name of an HTML page, e.g. page-03.html.
func PageFileName(pageNumber int) string {
	return fmt.Sprintf("page-%02d.html", pageNumber)
}

// AudioFileName returns the audio-relative name of a narration file, e.g. page-03.mp3.
func AudioFileName(pageNumber int) string {
	return fmt.Sprintf("page-%02d.mp3", pageNumber)
}

// PagePath is the story-relative path of a page.
func PagePath(pageNumber int) string {
	return filepath.Join(PagesDir, PageFileName(pageNumber))
}

// AudioPath is the story-relative path of a page's narration.
func AudioPath(pageNumber int) string {
	return filepath.Join(AudioDir, AudioFileName(pageNumber))
}

// InteractivePath is the story-relative path of an interactive module.
func InteractivePath(name string) string {
	return filepath.Join(InteractiveDir, name)
}

// StoryDirName names a story directory: 2025-07-16-first-day-at-school
func StoryDirName(date time.Time, slug string) string {
	return fmt.Sprintf("%s-%s", date.Format("2006-01-02"), slug)
}

// CreateStoryPath joins the stories root with the dated slug directory.
func CreateStoryPath(storiesDir string, date time.Time, topic string) (path, slug string) {
	slug = Slugify(topic)
	return filepath.Join(storiesDir, StoryDirName(date, slug)), slug
}

// Slugify converts a topic to a directory-safe slug. Characters outside
// [a-z0-9], whitespace and '-' are dropped, whitespace runs become one '-',
// the result is trimmed of '-' and cut to 50 characters.
func Slugify(text string) string {
	text = strings.ToLower(text)

	var b strings.Builder
	inSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			// dropped characters do not end a whitespace run
			continue
		}
		inSpace = false
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	// a cut can expose a trailing hyphen
	return strings.TrimRight(slug, "-")
}
