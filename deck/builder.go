package deck

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MaxCards is the number of cards rendered on a cards slide.
// Extra cards are silently dropped.
const MaxCards = 4

// Card is one entry on a cards slide.
type Card struct {
	// Icon is the text shown inside the icon circle (number, emoji,
	// abbreviation). Defaults to the 1-based card position.
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Column is one side of a two-column slide.
type Column struct {
	// Title is an optional sub-title paragraph above the bullets.
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// Node is one element of a diagram slide.
type Node struct {
	Name string `json:"name"`
	Desc string `json:"desc"`
	// Icon is the text inside the node's icon circle. Defaults to the
	// first two runes of Name.
	Icon string `json:"icon"`
}

// Builder accumulates slides for one deck. The only mutable state beyond
// the slide list is the running page counter; the theme is shared by
// reference and never mutated.
type Builder struct {
	theme *Theme
	title string
	date  string
	org   string

	slides []*Slide
	page   int
}

// NewBuilder creates a deck builder with the default theme.
func NewBuilder(title, date, org string) *Builder {
	return NewBuilderWithTheme(title, date, org, DefaultTheme())
}

// NewBuilderWithTheme creates a deck builder with a custom theme.
func NewBuilderWithTheme(title, date, org string, theme *Theme) *Builder {
	return &Builder{
		theme: theme,
		title: title,
		date:  date,
		org:   org,
	}
}

// Deck returns the accumulated deck artifact.
func (b *Builder) Deck() *Deck {
	return &Deck{
		Title:  b.title,
		Date:   b.date,
		Org:    b.org,
		Theme:  b.theme,
		Slides: b.slides,
	}
}

// Save serializes the deck to a .pptx file, creating parent directories
// as needed.
func (b *Builder) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("deck: create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("deck: create %s: %w", path, err)
	}
	if err := b.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("deck: close %s: %w", path, err)
	}
	return nil
}

// WriteTo serializes the deck as a .pptx container to w.
func (b *Builder) WriteTo(w io.Writer) error {
	return writePPTX(b.Deck(), w)
}

// low-level helpers

func (b *Builder) newSlide(bg Color) *Slide {
	s := &Slide{Background: bg}
	b.slides = append(b.slides, s)
	return s
}

func rect(s *Slide, x, y, w, h EMU, fill Color) *Rect {
	r := &Rect{X: x, Y: y, W: w, H: h, Fill: fill}
	s.add(r)
	return r
}

func rrect(s *Slide, x, y, w, h EMU, fill Color) *Rect {
	r := &Rect{X: x, Y: y, W: w, H: h, Fill: fill, Rounded: true}
	s.add(r)
	return r
}

func oval(s *Slide, x, y, d EMU, fill Color) *Oval {
	o := &Oval{X: x, Y: y, D: d, Fill: fill}
	s.add(o)
	return o
}

func (b *Builder) text(s *Slide, x, y, w, h EMU, str string, size float64, color Color, bold bool, align Align, anchor Anchor) *TextBox {
	tb := &TextBox{
		X: x, Y: y, W: w, H: h,
		Body: TextBody{
			Wrap:       true,
			Anchor:     anchor,
			Paragraphs: []Paragraph{para(str, size, color, bold, align, b.theme.Font)},
		},
	}
	s.add(tb)
	return tb
}

// centeredIconText fills a circle with a short centered label.
func (b *Builder) centeredIconText(o *Oval, str string, size float64) {
	o.Body = &TextBody{
		Wrap:       false,
		Anchor:     AnchorMiddle,
		Paragraphs: []Paragraph{para(str, size, b.theme.White, true, AlignCenter, b.theme.Font)},
	}
}

// shared slide elements

// accentBar draws the thin accent line across the top edge.
func (b *Builder) accentBar(s *Slide) {
	rect(s, 0, 0, SlideWidth, Pt(3), b.theme.Accent)
}

// footer draws the footer bar with the deck title and the next page
// number. The cover and closing slides use plainFooter instead.
func (b *Builder) footer(s *Slide) {
	b.page++
	rect(s, 0, FooterY, SlideWidth, FooterHeight, b.theme.Footer)
	b.text(s, MarginX, FooterY, 4572000, FooterHeight, b.title, 8, b.theme.Text3, false, AlignLeft, AnchorTop)
	b.text(s, SlideWidth-MarginX-640080, FooterY, 640080, FooterHeight,
		strconv.Itoa(b.page), 8, b.theme.Text3, false, AlignRight, AnchorTop)
}

// plainFooter draws the non-numbered footer used on cover and closing
// slides.
func (b *Builder) plainFooter(s *Slide, align Align) {
	rect(s, 0, FooterY, SlideWidth, FooterHeight, b.theme.Footer)
	parts := make([]string, 0, 3)
	for _, p := range []string{"Confidential", b.org, b.date} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	b.text(s, MarginX, FooterY, 7680960, FooterHeight,
		strings.Join(parts, " | "), 8.5, b.theme.Text3, false, align, AnchorTop)
}

// section draws the section indicator: a colored tick plus "NN  Name".
func (b *Builder) section(s *Slide, num, name string) {
	rect(s, MarginX, SectionY, 54864, 320040, b.theme.Accent)
	b.text(s, MarginX+182880, SectionY, 4572000, 320040,
		num+"  "+name, 11, b.theme.Accent, true, AlignLeft, AnchorTop)
}

// pageTitle draws the bold page title.
func (b *Builder) pageTitle(s *Slide, title string) {
	b.text(s, MarginX, TitleY, ContentWidth, 502920, title, 26, b.theme.Text, true, AlignLeft, AnchorTop)
}

// pageDesc draws the optional description line under the title.
func (b *Builder) pageDesc(s *Slide, desc string) {
	b.text(s, MarginX, DescY, ContentWidth, 365760, desc, 12, b.theme.Text2, false, AlignLeft, AnchorTop)
}

// contentTop computes where the content region starts, depending on
// whether a description line was rendered.
func contentTop(hasDesc bool) EMU {
	if hasDesc {
		return DescY + 457200
	}
	return TitleY + 594360
}

// slide variants

// AddTitleSlide adds the cover: dark background, large headline, optional
// subtitle and description, organization/date line, non-numbered footer.
func (b *Builder) AddTitleSlide(subtitle, description string) {
	s := b.newSlide(b.theme.BackgroundDark)
	b.accentBar(s)

	rect(s, MarginX, 1600200, 1828800, Pt(4), b.theme.Accent)
	b.text(s, MarginX, 1783080, ContentWidth, 960120, b.title, 44, b.theme.White, true, AlignLeft, AnchorTop)

	if subtitle != "" {
		b.text(s, MarginX, 2697480, ContentWidth, 594360, subtitle, 24, b.theme.Accent2, true, AlignLeft, AnchorTop)
	}
	if description != "" {
		b.text(s, MarginX, 3429000, 5943600, 731520, description, 13, b.theme.Text3, false, AlignLeft, AnchorTop)
	}

	infoParts := make([]string, 0, 2)
	for _, p := range []string{b.org, b.date} {
		if p != "" {
			infoParts = append(infoParts, p)
		}
	}
	if len(infoParts) > 0 {
		b.text(s, MarginX, 4114800, ContentWidth, 365760,
			strings.Join(infoParts, " | "), 11, b.theme.Text3, false, AlignLeft, AnchorTop)
	}

	b.plainFooter(s, AlignLeft)
}

// AddContentSlide adds a bullet list slide: one white card filling the
// content region with one bulleted paragraph per entry.
func (b *Builder) AddContentSlide(num, section, title string, bullets []string, description string) {
	s := b.newSlide(b.theme.BackgroundLight)
	b.accentBar(s)
	b.section(s, num, section)
	b.pageTitle(s, title)
	if description != "" {
		b.pageDesc(s, description)
	}

	cy := contentTop(description != "")
	ch := FooterY - cy - 137160
	card := rrect(s, MarginX, cy, ContentWidth, ch, b.theme.Card)

	body := &TextBody{
		Wrap:        true,
		MarginLeft:  274320,
		MarginRight: 274320,
		MarginTop:   228600,
	}
	for _, bullet := range bullets {
		p := para("•  "+bullet, 12, b.theme.Text2, false, AlignLeft, b.theme.Font)
		p.SpaceAfter = 10
		body.Paragraphs = append(body.Paragraphs, p)
	}
	card.Body = body

	b.footer(s)
}

// AddCardsSlide adds a grid of up to MaxCards equal-width cards, each with
// an icon circle from the theme rotation, a bold title, and body text.
func (b *Builder) AddCardsSlide(num, section, title string, cards []Card, description string) {
	s := b.newSlide(b.theme.BackgroundLight)
	b.accentBar(s)
	b.section(s, num, section)
	b.pageTitle(s, title)
	if description != "" {
		b.pageDesc(s, description)
	}

	n := len(cards)
	if n > MaxCards {
		n = MaxCards
	}
	if n == 0 {
		b.footer(s)
		return
	}

	const gap EMU = 228600
	cy := contentTop(description != "")
	ch := FooterY - cy - 137160
	cw := (ContentWidth - gap*EMU(n-1)) / EMU(n)

	for i, c := range cards[:n] {
		x := MarginX + EMU(i)*(cw+gap)
		iconColor := b.theme.IconColor(i)

		rrect(s, x, cy, cw, ch, b.theme.Card)

		const d EMU = 411480
		ox, oy := x+182880, cy+182880
		circle := oval(s, ox, oy, d, iconColor)

		icon := c.Icon
		if icon == "" {
			icon = strconv.Itoa(i + 1)
		}
		b.centeredIconText(circle, icon, 16)

		b.text(s, ox, oy+d+137160, cw-365760, 320040, c.Title, 14, b.theme.Text, true, AlignLeft, AnchorTop)

		bodyY := oy + d + 502920
		bodyH := ch - (bodyY - cy) - 137160
		b.text(s, ox, bodyY, cw-365760, bodyH, c.Body, 10, b.theme.Text2, false, AlignLeft, AnchorTop)
	}

	b.footer(s)
}

// AddTwoColumnSlide adds two equal-width cards side by side, each with an
// optional sub-title followed by bulleted lines.
func (b *Builder) AddTwoColumnSlide(num, section, title string, left, right Column, description string) {
	s := b.newSlide(b.theme.BackgroundLight)
	b.accentBar(s)
	b.section(s, num, section)
	b.pageTitle(s, title)
	if description != "" {
		b.pageDesc(s, description)
	}

	const gap EMU = 228600
	cy := contentTop(description != "")
	ch := FooterY - cy - 137160
	cw := (ContentWidth - gap) / 2

	for col, column := range []Column{left, right} {
		x := MarginX + EMU(col)*(cw+gap)
		card := rrect(s, x, cy, cw, ch, b.theme.Card)

		body := &TextBody{
			Wrap:        true,
			MarginLeft:  182880,
			MarginRight: 182880,
			MarginTop:   137160,
		}
		if column.Title != "" {
			p := para(column.Title, 14, b.theme.Text, true, AlignLeft, b.theme.Font)
			p.SpaceAfter = 12
			body.Paragraphs = append(body.Paragraphs, p)
		}
		for _, bullet := range column.Bullets {
			p := para("•  "+bullet, 11, b.theme.Text2, false, AlignLeft, b.theme.Font)
			p.SpaceAfter = 8
			body.Paragraphs = append(body.Paragraphs, p)
		}
		card.Body = body
	}

	b.footer(s)
}

// AddTableSlide adds a table with an accent-filled header row and
// zebra-striped data rows (card white / light background by row parity).
func (b *Builder) AddTableSlide(num, section, title string, headers []string, rows [][]string) {
	s := b.newSlide(b.theme.BackgroundLight)
	b.accentBar(s)
	b.section(s, num, section)
	b.pageTitle(s, title)

	ty := TitleY + 594360
	th := FooterY - ty - 137160

	table := &Table{X: MarginX, Y: ty, W: ContentWidth, H: th}

	header := TableRow{}
	for _, h := range headers {
		header.Cells = append(header.Cells, TableCell{
			Text:     h,
			Fill:     b.theme.Accent,
			TextSize: 10,
			Bold:     true,
			Color:    b.theme.White,
			Centered: true,
		})
	}
	table.Rows = append(table.Rows, header)

	for i, row := range rows {
		fill := b.theme.Card
		if i%2 == 1 {
			fill = b.theme.BackgroundLight
		}
		tr := TableRow{}
		for _, v := range row {
			tr.Cells = append(tr.Cells, TableCell{
				Text:     v,
				Fill:     fill,
				TextSize: 10,
				Color:    b.theme.Text2,
			})
		}
		table.Rows = append(table.Rows, tr)
	}

	s.add(table)
	b.footer(s)
}

// diagramBoxWidth returns the node box width tier for n nodes.
func diagramBoxWidth(n int) EMU {
	switch {
	case n <= 4:
		return 1371600
	case n <= 6:
		return 1143000
	default:
		return 914400
	}
}

// diagramGap returns the inter-node gap for n nodes.
func diagramGap(n int) EMU {
	if n <= 5 {
		return 365760
	}
	return 228600
}

// AddDiagramSlide adds a horizontal flow diagram: nodes centered as a
// group, each with an icon circle, name, and description, with an arrow
// glyph in every gap except after the last node.
func (b *Builder) AddDiagramSlide(num, section, title string, nodes []Node) {
	s := b.newSlide(b.theme.BackgroundLight)
	b.accentBar(s)
	b.section(s, num, section)
	b.pageTitle(s, title)

	n := len(nodes)
	if n == 0 {
		b.footer(s)
		return
	}

	ay := TitleY + 594360
	ah := FooterY - ay - 137160

	bw := diagramBoxWidth(n)
	const bh EMU = 1600200
	gap := diagramGap(n)

	tw := EMU(n)*bw + EMU(n-1)*gap
	sx := (SlideWidth - tw) / 2
	by := ay + (ah-bh)/2

	for i, node := range nodes {
		x := sx + EMU(i)*(bw+gap)
		iconColor := b.theme.IconColor(i)

		rrect(s, x, by, bw, bh, b.theme.Card)
		rect(s, x+4572, by, bw-9144, Pt(4), iconColor)

		const d EMU = 365760
		cx := x + (bw-d)/2
		circle := oval(s, cx, by+228600, d, iconColor)

		icon := node.Icon
		if icon == "" {
			runes := []rune(node.Name)
			if len(runes) > 2 {
				runes = runes[:2]
			}
			icon = string(runes)
		}
		b.centeredIconText(circle, icon, 13)

		b.text(s, x+45720, by+685800, bw-91440, 274320, node.Name, 13, b.theme.Text, true, AlignCenter, AnchorTop)
		b.text(s, x+91440, by+1005840, bw-182880, bh-1143000, node.Desc, 9, b.theme.Text2, false, AlignCenter, AnchorTop)

		if i < n-1 {
			b.text(s, x+bw, by+bh/2-137160, gap, 274320, "→", 28, b.theme.Accent, false, AlignCenter, AnchorMiddle)
		}
	}

	b.footer(s)
}

// AddClosingSlide adds the closing: dark background, large centered
// message, divider, optional submessage, non-numbered footer.
func (b *Builder) AddClosingSlide(message, submessage string) {
	if message == "" {
		message = "Thank You"
	}
	s := b.newSlide(b.theme.BackgroundDark)
	b.accentBar(s)

	b.text(s, MarginX, 1371600, ContentWidth, 914400, message, 50, b.theme.White, true, AlignCenter, AnchorTop)
	rect(s, 3200400, 2377440, 2743200, Pt(3), b.theme.Accent)

	if submessage != "" {
		b.text(s, 1371600, 2651760, 6400800, 822960, submessage, 16, b.theme.Accent2, false, AlignCenter, AnchorTop)
	}
	if b.org != "" {
		b.text(s, 1828800, 3657600, 5486400, 365760, b.org, 13, b.theme.Text3, true, AlignCenter, AnchorTop)
	}

	b.plainFooter(s, AlignCenter)
}
