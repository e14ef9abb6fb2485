package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validStructure = `{
  "title": "Sam's First Day",
  "characters": [
    {"name": "Sam", "description": "A curious seven year old", "role": "main"},
    {"name": "Ms. Lee", "description": "A kind teacher", "role": "Supporting character"}
  ],
  "settings": [
    {"name": "Classroom", "description": "Bright room with tables"},
    {"name": "Playground", "description": "Sunny yard with swings"}
  ],
  "learning_objectives": ["Know what happens at school", " ", "Feel calm when arriving"],
  "emotional_tone": " reassuring ",
  "pages": [
    {"page_number": 2, "setting": "Classroom", "characters_present": ["Sam", "Ms. Lee"], "narrative": "Ms. Lee says hello.", "visual_description": "Teacher waving", "teaching_point": "Greetings"},
    {"page_number": 1, "setting": "Playground", "characters_present": ["Sam"], "narrative": "Sam arrives at school.", "visual_description": "School gate", "teaching_point": "Arriving is okay", "narration": "Sam walks through the gate."}
  ]
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(validStructure))
	require.NoError(t, err)

	assert.Equal(t, "Sam's First Day", s.Title)
	assert.Equal(t, "reassuring", s.EmotionalTone)
	assert.Equal(t, []string{"Know what happens at school", "Feel calm when arriving"}, s.LearningObjectives)
	assert.Equal(t, []string{"Sam", "Ms. Lee"}, s.CharacterNames())
	assert.Equal(t, []string{"Classroom", "Playground"}, s.SettingNames())
	assert.Equal(t, RoleMain, s.Characters[0].Role)
	assert.Equal(t, RoleSupporting, s.Characters[1].Role)

	require.Equal(t, 2, s.PageCount())
	assert.Equal(t, 1, s.Pages[0].PageNumber)
	assert.Equal(t, "Sam arrives at school.", s.Pages[0].Narrative)
	assert.Equal(t, 2, s.Pages[1].PageNumber)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"not json", `{"title": `, ErrInvalidStructure},
		{"missing title", `{"learning_objectives": ["a"], "pages": [{"narrative": "x"}]}`, ErrInvalidStructure},
		{"no objectives", `{"title": "T", "learning_objectives": [], "pages": [{"narrative": "x"}]}`, ErrInvalidStructure},
		{"blank objectives only", `{"title": "T", "learning_objectives": ["  "], "pages": [{"narrative": "x"}]}`, ErrInvalidStructure},
		{"no pages", `{"title": "T", "learning_objectives": ["a"], "pages": []}`, ErrInvalidStructure},
		{"page without narrative", `{"title": "T", "learning_objectives": ["a"], "pages": [{"page_number": 1}]}`, ErrInvalidStructure},
		{"gap in pages", `{"title": "T", "learning_objectives": ["a"], "pages": [{"page_number": 1, "narrative": "x"}, {"page_number": 3, "narrative": "y"}]}`, ErrPageSequence},
		{"repeated page number", `{"title": "T", "learning_objectives": ["a"], "pages": [{"page_number": 1, "narrative": "x"}, {"page_number": 1, "narrative": "y"}]}`, ErrPageSequence},
		{"duplicate character", `{"title": "T", "learning_objectives": ["a"], "characters": [{"name": "Sam"}, {"name": "Sam"}], "pages": [{"narrative": "x"}]}`, ErrDuplicateName},
		{"duplicate setting", `{"title": "T", "learning_objectives": ["a"], "settings": [{"name": "Park"}, {"name": "Park"}], "pages": [{"narrative": "x"}]}`, ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseNumbersMissingPages(t *testing.T) {
	s, err := Parse([]byte(`{"title": "T", "learning_objectives": ["a"], "pages": [{"narrative": "one"}, {"narrative": "two"}, {"narrative": "three"}]}`))
	require.NoError(t, err)

	for i, p := range s.Pages {
		assert.Equal(t, i+1, p.PageNumber)
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := map[string]string{
		"main":            RoleMain,
		"MAIN":            RoleMain,
		"":                RoleMain,
		"protagonist":     RoleMain,
		"supporting":      RoleSupporting,
		"Supporting role": RoleSupporting,
		"main/supporting": RoleSupporting,
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeRole(in), "role %q", in)
	}
}

func TestInPageRange(t *testing.T) {
	s := &Structure{Pages: make([]Page, 4)}
	assert.False(t, s.InPageRange(5, 8))
	assert.True(t, s.InPageRange(3, 8))
}
