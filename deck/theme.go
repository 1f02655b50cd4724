// Package deck implements a declarative slide deck builder.
//
// A Builder accepts typed slide requests (title, bullets, cards, two-column,
// table, diagram, closing) and deterministically computes the positioned
// visual primitives for each slide. Save serializes the accumulated deck to
// a .pptx file readable by common presentation software.
//
// All coordinates are in EMU (English Metric Units, 914400 per inch) on a
// 16:9 canvas of 10" x 5.63".
package deck

// EMU is an English Metric Unit coordinate (914400 per inch).
type EMU int64

// Pt converts typographic points to EMU (12700 per point).
func Pt(points float64) EMU {
	return EMU(points * 12700)
}

// Canvas dimensions (16:9).
const (
	SlideWidth  EMU = 9144000 // 10"
	SlideHeight EMU = 5143500 // 5.63"
)

// Fixed layout offsets shared by all content slides.
const (
	MarginX      EMU = 640080  // left/right margin (0.7")
	ContentWidth EMU = 7863840 // SlideWidth - 2*MarginX (8.6")
	SectionY     EMU = 365760  // section indicator
	TitleY       EMU = 822960  // page title
	DescY        EMU = 1371600 // description line
	BodyY        EMU = 1920240 // body start
	FooterY      EMU = 4800600 // footer bar
	FooterHeight EMU = 342900
)

// Color is an RGB color as a six-digit uppercase hex string (no '#').
type Color string

// Theme is the immutable visual configuration shared by reference across
// all slides in one deck. Never mutated after deck construction begins.
type Theme struct {
	// Accent is the primary accent color (bars, section ticks, table headers).
	Accent Color
	// Accent2 is the secondary accent (cover subtitles, closing submessage).
	Accent2 Color
	// Highlight is reserved for emphasis elements.
	Highlight Color
	// BackgroundDark is the cover/closing slide background.
	BackgroundDark Color
	// BackgroundLight is the content slide background.
	BackgroundLight Color
	// Card is the card fill.
	Card Color
	// Text, Text2, Text3 are the three body text tones, darkest first.
	Text  Color
	Text2 Color
	Text3 Color
	// White is used for text on filled shapes.
	White Color
	// Footer is the footer bar fill.
	Footer Color
	// Divider is the divider line color.
	Divider Color
	// IconColors is the fixed rotation for icon circles, indexed by
	// position modulo its length.
	IconColors []Color
	// Font is the typeface applied to every text run.
	Font string
}

// DefaultTheme returns the standard consulting-style palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:          "0070C0",
		Accent2:         "00B4D8",
		Highlight:       "E63946",
		BackgroundDark:  "0A1628",
		BackgroundLight: "F0F4F8",
		Card:            "FFFFFF",
		Text:            "1E293B",
		Text2:           "475569",
		Text3:           "94A3B8",
		White:           "FFFFFF",
		Footer:          "0F1B2D",
		Divider:         "E2E8F0",
		IconColors: []Color{
			"0070C0", "00B4D8", "38A169", "DD6B20", "805AD5", "E53E3E",
		},
		Font: "Apple SD Gothic Neo",
	}
}

// IconColor returns the icon circle color for position i in the rotation.
func (t *Theme) IconColor(i int) Color {
	return t.IconColors[i%len(t.IconColors)]
}
