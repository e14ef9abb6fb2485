package story

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NarrationText is the structure-provided narration: the narration field
// when present, otherwise the narrative.
func (p Page) NarrationText() string {
	if n := strings.TrimSpace(p.Narration); n != "" {
		return n
	}
	return strings.TrimSpace(p.Narrative)
}

// NarrationFromHTML extracts read-aloud text from a rendered page: the first
// .narration-text element, otherwise the text of every <p>. Tags are dropped
// and whitespace collapsed. It returns "" when neither is present or the
// document cannot be parsed.
func NarrationFromHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if sel := doc.Find(".narration-text").First(); sel.Length() > 0 {
		if text := collapseSpace(sel.Text()); text != "" {
			return text
		}
	}

	parts := doc.Find("p").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	return collapseSpace(strings.Join(parts, " "))
}

// ResolveNarration fills Narration on every page. With fromHTML set, the
// page HTML (keyed by page number) is preferred when it yields text.
func (s *Structure) ResolveNarration(pageHTML map[int]string, fromHTML bool) {
	for i := range s.Pages {
		p := &s.Pages[i]
		if fromHTML {
			if text := NarrationFromHTML(pageHTML[p.PageNumber]); text != "" {
				p.Narration = text
				continue
			}
		}
		p.Narration = p.NarrationText()
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
