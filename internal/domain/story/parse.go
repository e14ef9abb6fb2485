package story

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidStructure = errors.New("invalid story structure")
	ErrPageSequence     = errors.New("pages are not numbered 1..N")
	ErrDuplicateName    = errors.New("duplicate name")
)

var validate = validator.New()

// Parse decodes a structure payload, normalises it and validates it.
func Parse(data []byte) (*Structure, error) {
	var s Structure
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Normalize trims text fields, maps free-form roles onto main/supporting and
// orders pages. Pages without a number take their 1-based position.
func (s *Structure) Normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.EmotionalTone = strings.TrimSpace(s.EmotionalTone)

	for i := range s.Characters {
		c := &s.Characters[i]
		c.Name = strings.TrimSpace(c.Name)
		c.Role = normalizeRole(c.Role)
	}
	for i := range s.Settings {
		s.Settings[i].Name = strings.TrimSpace(s.Settings[i].Name)
	}

	objectives := s.LearningObjectives[:0]
	for _, o := range s.LearningObjectives {
		if o = strings.TrimSpace(o); o != "" {
			objectives = append(objectives, o)
		}
	}
	s.LearningObjectives = objectives

	for i := range s.Pages {
		p := &s.Pages[i]
		if p.PageNumber == 0 {
			p.PageNumber = i + 1
		}
		p.Narrative = strings.TrimSpace(p.Narrative)
		p.Narration = strings.TrimSpace(p.Narration)
	}
	sort.SliceStable(s.Pages, func(i, j int) bool {
		return s.Pages[i].PageNumber < s.Pages[j].PageNumber
	})
}

// Validate checks required fields, page numbering and name uniqueness.
func (s *Structure) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}

	for i, p := range s.Pages {
		if p.PageNumber != i+1 {
			return fmt.Errorf("%w: position %d has page_number %d", ErrPageSequence, i+1, p.PageNumber)
		}
	}

	if name, dup := firstDuplicate(s.CharacterNames()); dup {
		return fmt.Errorf("%w: character %q", ErrDuplicateName, name)
	}
	if name, dup := firstDuplicate(s.SettingNames()); dup {
		return fmt.Errorf("%w: setting %q", ErrDuplicateName, name)
	}

	return nil
}

// InPageRange reports whether the page count falls inside [lo, hi].
func (s *Structure) InPageRange(lo, hi int) bool {
	n := len(s.Pages)
	return n >= lo && n <= hi
}

func normalizeRole(role string) string {
	if strings.Contains(strings.ToLower(role), "support") {
		return RoleSupporting
	}
	return RoleMain
}

func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return n, true
		}
		seen[n] = struct{}{}
	}
	return "", false
}
