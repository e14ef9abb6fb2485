// Package story holds the typed story structure produced by the structure
// stage and consumed by every later stage.
package story

const (
	RoleMain       = "main"
	RoleSupporting = "supporting"
)

// Structure is the validated outline of one social story.
type Structure struct {
	Title              string      `json:"title" validate:"required"`
	Characters         []Character `json:"characters" validate:"dive"`
	Settings           []Setting   `json:"settings" validate:"dive"`
	LearningObjectives []string    `json:"learning_objectives" validate:"required,min=1,dive,required"`
	EmotionalTone      string      `json:"emotional_tone"`
	Pages              []Page      `json:"pages" validate:"required,min=1,dive"`
}

type Character struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Role        string `json:"role" validate:"oneof=main supporting"`
}

type Setting struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Page is one page of the story. Narration is the text read aloud; it may
// be empty until Resolve fills it.
type Page struct {
	PageNumber        int      `json:"page_number" validate:"min=1"`
	Setting           string   `json:"setting"`
	CharactersPresent []string `json:"characters_present"`
	Narrative         string   `json:"narrative" validate:"required"`
	VisualDescription string   `json:"visual_description"`
	TeachingPoint     string   `json:"teaching_point"`
	Narration         string   `json:"narration,omitempty"`
}

func (s *Structure) CharacterNames() []string {
	names := make([]string, len(s.Characters))
	for i, c := range s.Characters {
		names[i] = c.Name
	}
	return names
}

func (s *Structure) SettingNames() []string {
	names := make([]string, len(s.Settings))
	for i, st := range s.Settings {
		names[i] = st.Name
	}
	return names
}

func (s *Structure) PageCount() int {
	return len(s.Pages)
}
