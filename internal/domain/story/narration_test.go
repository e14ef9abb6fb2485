package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNarrationText(t *testing.T) {
	assert.Equal(t, "read me", Page{Narrative: "story text", Narration: " read me "}.NarrationText())
	assert.Equal(t, "story text", Page{Narrative: " story text "}.NarrationText())
	assert.Equal(t, "", Page{}.NarrationText())
}

func TestNarrationFromHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "narration block wins",
			html: `<main><p>Ignored paragraph</p><div class="narration-text" aria-live="polite">
				Sam <strong>waves</strong>
				to   Ms. Lee.
			</div><div class="narration-text">Second block</div></main>`,
			want: "Sam waves to Ms. Lee.",
		},
		{
			name: "paragraph fallback",
			html: `<body><p>Sam arrives.</p><section><p class="lead">He feels <em>calm</em>.</p></section></body>`,
			want: "Sam arrives. He feels calm.",
		},
		{
			name: "empty narration block falls back to paragraphs",
			html: `<div class="narration-text">   </div><p>Backup text</p>`,
			want: "Backup text",
		},
		{
			name: "nothing to read",
			html: `<div>Just a div</div>`,
			want: "",
		},
		{
			name: "empty document",
			html: ``,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NarrationFromHTML(tt.html))
		})
	}
}

func TestResolveNarration(t *testing.T) {
	newStructure := func() *Structure {
		return &Structure{Pages: []Page{
			{PageNumber: 1, Narrative: "First narrative."},
			{PageNumber: 2, Narrative: "Second narrative.", Narration: "Given narration."},
			{PageNumber: 3, Narrative: "Third narrative."},
		}}
	}
	pageHTML := map[int]string{
		1: `<div class="narration-text">From the page.</div>`,
		3: `<div>no text here</div>`,
	}

	t.Run("structure source", func(t *testing.T) {
		s := newStructure()
		s.ResolveNarration(pageHTML, false)

		assert.Equal(t, "First narrative.", s.Pages[0].Narration)
		assert.Equal(t, "Given narration.", s.Pages[1].Narration)
		assert.Equal(t, "Third narrative.", s.Pages[2].Narration)
	})

	t.Run("html source with fallback", func(t *testing.T) {
		s := newStructure()
		s.ResolveNarration(pageHTML, true)

		assert.Equal(t, "From the page.", s.Pages[0].Narration)
		assert.Equal(t, "Given narration.", s.Pages[1].Narration)
		assert.Equal(t, "Third narrative.", s.Pages[2].Narration)
	})
}
