package deck

import (
	"encoding/json"
	"fmt"
	"os"
)

// Slide type discriminators for the JSON deck spec.
const (
	SlideTitle     = "title"
	SlideBullets   = "bullets"
	SlideCards     = "cards"
	SlideTwoColumn = "twoColumn"
	SlideTable     = "table"
	SlideDiagram   = "diagram"
	SlideClosing   = "closing"
)

// DeckSpec is the structured deck description the analysis agent writes.
// It is validated at the parse boundary; FromSpec drives a Builder from it.
type DeckSpec struct {
	Title string      `json:"deck_title"`
	Date  string      `json:"date"`
	Org   string      `json:"org"`
	Slides []SlideSpec `json:"slides"`
}

// SlideSpec is one entry of the typed slide union. Type selects the
// variant; each variant reads its own fields and ignores the rest.
type SlideSpec struct {
	Type string `json:"type"`

	// Shared by content variants.
	Num         string `json:"num"`
	Section     string `json:"section"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// title / closing
	Subtitle   string `json:"subtitle"`
	Message    string `json:"message"`
	Submessage string `json:"submessage"`

	// bullets
	Bullets []string `json:"bullets"`

	// cards
	Cards []Card `json:"cards"`

	// twoColumn
	Left  Column `json:"left"`
	Right Column `json:"right"`

	// table
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`

	// diagram
	Nodes []Node `json:"nodes"`
}

// validate checks the variant-specific required fields.
func (s *SlideSpec) validate(i int) error {
	switch s.Type {
	case SlideTitle, SlideClosing:
		return nil
	case SlideBullets:
		if len(s.Bullets) == 0 {
			return fmt.Errorf("slide %d: bullets variant requires bullets", i)
		}
	case SlideCards:
		if len(s.Cards) == 0 {
			return fmt.Errorf("slide %d: cards variant requires cards", i)
		}
	case SlideTwoColumn:
		if len(s.Left.Bullets) == 0 && len(s.Right.Bullets) == 0 {
			return fmt.Errorf("slide %d: twoColumn variant requires bullets", i)
		}
	case SlideTable:
		if len(s.Headers) == 0 {
			return fmt.Errorf("slide %d: table variant requires headers", i)
		}
		for j, row := range s.Rows {
			if len(row) != len(s.Headers) {
				return fmt.Errorf("slide %d: row %d has %d cells, want %d", i, j, len(row), len(s.Headers))
			}
		}
	case SlideDiagram:
		if len(s.Nodes) == 0 {
			return fmt.Errorf("slide %d: diagram variant requires nodes", i)
		}
	case "":
		return fmt.Errorf("slide %d: missing type", i)
	default:
		return fmt.Errorf("slide %d: unknown type %q", i, s.Type)
	}
	return nil
}

// ParseSpec decodes and validates a JSON deck spec.
func ParseSpec(data []byte) (*DeckSpec, error) {
	var spec DeckSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("deck spec: %w", err)
	}
	if spec.Title == "" {
		return nil, fmt.Errorf("deck spec: missing deck_title")
	}
	for i := range spec.Slides {
		if err := spec.Slides[i].validate(i); err != nil {
			return nil, fmt.Errorf("deck spec: %w", err)
		}
	}
	return &spec, nil
}

// LoadSpec reads and parses a JSON deck spec file.
func LoadSpec(path string) (*DeckSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deck spec: read %s: %w", path, err)
	}
	return ParseSpec(data)
}

// FromSpec builds a deck from a validated spec.
func FromSpec(spec *DeckSpec) *Builder {
	b := NewBuilder(spec.Title, spec.Date, spec.Org)
	for _, s := range spec.Slides {
		switch s.Type {
		case SlideTitle:
			b.AddTitleSlide(s.Subtitle, s.Description)
		case SlideBullets:
			b.AddContentSlide(s.Num, s.Section, s.Title, s.Bullets, s.Description)
		case SlideCards:
			b.AddCardsSlide(s.Num, s.Section, s.Title, s.Cards, s.Description)
		case SlideTwoColumn:
			b.AddTwoColumnSlide(s.Num, s.Section, s.Title, s.Left, s.Right, s.Description)
		case SlideTable:
			b.AddTableSlide(s.Num, s.Section, s.Title, s.Headers, s.Rows)
		case SlideDiagram:
			b.AddDiagramSlide(s.Num, s.Section, s.Title, s.Nodes)
		case SlideClosing:
			b.AddClosingSlide(s.Message, s.Submessage)
		}
	}
	return b
}
