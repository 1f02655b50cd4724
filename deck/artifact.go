package deck

// Deck is an ordered sequence of slides plus the identity shown on the
// cover and footer. Immutable once built.
type Deck struct {
	Title  string
	Date   string
	Org    string
	Theme  *Theme
	Slides []*Slide
}

// Slide is an ordered sequence of positioned visual primitives.
type Slide struct {
	// Background is the slide background fill ("" for the default white).
	Background Color
	Shapes     []Shape
}

func (s *Slide) add(shape Shape) {
	s.Shapes = append(s.Shapes, shape)
}

// Shape is a positioned visual primitive: rectangle, oval, text box, or
// table. The concrete types below are the only implementations.
type Shape interface {
	isShape()
}

// Rect is a rectangle, optionally rounded, optionally carrying text.
type Rect struct {
	X, Y, W, H EMU
	// Fill is the solid fill color ("" for no fill).
	Fill    Color
	Rounded bool
	// Body is optional text rendered inside the shape.
	Body *TextBody
}

func (Rect) isShape() {}

// Oval is a circle of diameter D, optionally carrying centered text.
type Oval struct {
	X, Y, D EMU
	Fill    Color
	Body    *TextBody
}

func (Oval) isShape() {}

// TextBox is an unfilled, borderless text container.
type TextBox struct {
	X, Y, W, H EMU
	Body       TextBody
}

func (TextBox) isShape() {}

// Table is a grid of equally wide columns. Row heights divide H evenly.
type Table struct {
	X, Y, W, H EMU
	Rows       []TableRow
}

func (Table) isShape() {}

// TableRow is one table row.
type TableRow struct {
	Cells []TableCell
}

// TableCell is one table cell with its fill and text styling.
type TableCell struct {
	Text     string
	Fill     Color
	TextSize float64
	Bold     bool
	Color    Color
	Centered bool
}

// Anchor is the vertical anchoring of text within its container.
type Anchor int

const (
	// AnchorTop anchors text to the top (the default).
	AnchorTop Anchor = iota
	// AnchorMiddle centers text vertically.
	AnchorMiddle
)

// Align is the horizontal paragraph alignment.
type Align int

const (
	// AlignLeft aligns text to the left (the default).
	AlignLeft Align = iota
	// AlignCenter centers text.
	AlignCenter
	// AlignRight aligns text to the right.
	AlignRight
)

// TextBody is the text content of a shape or text box.
type TextBody struct {
	Wrap   bool
	Anchor Anchor
	// Margins are the text insets; zero values use the format defaults.
	MarginLeft  EMU
	MarginRight EMU
	MarginTop   EMU
	Paragraphs  []Paragraph
}

// Paragraph is one paragraph of runs.
type Paragraph struct {
	Align Align
	// SpaceAfter is trailing paragraph spacing in points (0 = none).
	SpaceAfter float64
	Runs       []Run
}

// Run is a styled span of text.
type Run struct {
	Text string
	// Size is the font size in points.
	Size float64
	Bold bool
	// Color is the font color ("" inherits).
	Color Color
	// Font is the typeface ("" inherits).
	Font string
}

// para builds a single-run paragraph.
func para(text string, size float64, color Color, bold bool, align Align, font string) Paragraph {
	return Paragraph{
		Align: align,
		Runs: []Run{{
			Text:  text,
			Size:  size,
			Bold:  bold,
			Color: color,
			Font:  font,
		}},
	}
}
