package deck

import (
	"strings"
	"testing"
)

func shapesOf[T Shape](s *Slide) []T {
	var out []T
	for _, sh := range s.Shapes {
		if v, ok := sh.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func runText(body *TextBody) string {
	if body == nil {
		return ""
	}
	var parts []string
	for _, p := range body.Paragraphs {
		for _, r := range p.Runs {
			parts = append(parts, r.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestCardsSlideTruncatesToMax(t *testing.T) {
	b := NewBuilder("Q3 Review", "2026-08-29", "Acme")
	cards := make([]Card, 6)
	for i := range cards {
		cards[i] = Card{Title: "Card", Body: "body"}
	}
	b.AddCardsSlide("01", "Overview", "Six Cards", cards, "")

	s := b.Deck().Slides[0]
	ovals := shapesOf[*Oval](s)
	if len(ovals) != MaxCards {
		t.Fatalf("icon circles = %d, want %d", len(ovals), MaxCards)
	}

	theme := DefaultTheme()
	for i, o := range ovals {
		if o.Fill != theme.IconColor(i) {
			t.Errorf("icon %d fill = %s, want %s", i, o.Fill, theme.IconColor(i))
		}
	}
}

func TestCardsSlideDefaultIconIsPosition(t *testing.T) {
	b := NewBuilder("Deck", "", "")
	b.AddCardsSlide("01", "S", "T", []Card{
		{Title: "a"}, {Icon: "★", Title: "b"},
	}, "")

	ovals := shapesOf[*Oval](b.Deck().Slides[0])
	if got := runText(ovals[0].Body); got != "1" {
		t.Errorf("default icon = %q, want %q", got, "1")
	}
	if got := runText(ovals[1].Body); got != "★" {
		t.Errorf("explicit icon = %q, want %q", got, "★")
	}
}

func TestTableSlideZebraStriping(t *testing.T) {
	b := NewBuilder("Deck", "", "")
	b.AddTableSlide("02", "Data", "Numbers",
		[]string{"k", "v"},
		[][]string{{"a", "1"}, {"b", "2"}, {"c", "3"}})

	tables := shapesOf[*Table](b.Deck().Slides[0])
	if len(tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(tables))
	}
	rows := tables[0].Rows
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4 (header + 3)", len(rows))
	}

	theme := DefaultTheme()
	if rows[0].Cells[0].Fill != theme.Accent {
		t.Errorf("header fill = %s, want %s", rows[0].Cells[0].Fill, theme.Accent)
	}
	if rows[1].Cells[0].Fill != theme.Card {
		t.Errorf("row 1 fill = %s, want card", rows[1].Cells[0].Fill)
	}
	if rows[2].Cells[0].Fill != theme.BackgroundLight {
		t.Errorf("row 2 fill = %s, want light background", rows[2].Cells[0].Fill)
	}
	if rows[3].Cells[0].Fill != theme.Card {
		t.Errorf("row 3 fill = %s, want card", rows[3].Cells[0].Fill)
	}
}

func TestDiagramSizeTiers(t *testing.T) {
	tests := []struct {
		nodes int
		width EMU
		gap   EMU
	}{
		{3, 1371600, 365760},
		{4, 1371600, 365760},
		{5, 1143000, 365760},
		{6, 1143000, 228600},
		{7, 914400, 228600},
	}
	for _, tt := range tests {
		if got := diagramBoxWidth(tt.nodes); got != tt.width {
			t.Errorf("diagramBoxWidth(%d) = %d, want %d", tt.nodes, got, tt.width)
		}
		if got := diagramGap(tt.nodes); got != tt.gap {
			t.Errorf("diagramGap(%d) = %d, want %d", tt.nodes, got, tt.gap)
		}
	}
}

func TestDiagramGroupIsCentered(t *testing.T) {
	b := NewBuilder("Deck", "", "")
	nodes := []Node{{Name: "In"}, {Name: "Proc"}, {Name: "Out"}}
	b.AddDiagramSlide("03", "Flow", "Pipeline", nodes)

	s := b.Deck().Slides[0]
	var boxes []*Rect
	for _, r := range shapesOf[*Rect](s) {
		if r.Rounded {
			boxes = append(boxes, r)
		}
	}
	if len(boxes) != 3 {
		t.Fatalf("node boxes = %d, want 3", len(boxes))
	}

	left := boxes[0].X
	right := boxes[len(boxes)-1].X + boxes[len(boxes)-1].W
	if diff := left - (SlideWidth - right); diff < -1 || diff > 1 {
		t.Errorf("group not centered: left margin %d, right margin %d", left, SlideWidth-right)
	}
}

func TestDiagramArrowCount(t *testing.T) {
	b := NewBuilder("Deck", "", "")
	b.AddDiagramSlide("03", "Flow", "Pipeline",
		[]Node{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}})

	arrows := 0
	for _, tb := range shapesOf[*TextBox](b.Deck().Slides[0]) {
		if runText(&tb.Body) == "→" {
			arrows++
		}
	}
	if arrows != 3 {
		t.Errorf("arrows = %d, want 3", arrows)
	}
}

func TestDiagramDefaultIconFirstTwoRunes(t *testing.T) {
	b := NewBuilder("Deck", "", "")
	b.AddDiagramSlide("03", "Flow", "Pipeline",
		[]Node{{Name: "수집기"}, {Name: "DB"}})

	ovals := shapesOf[*Oval](b.Deck().Slides[0])
	if got := runText(ovals[0].Body); got != "수집" {
		t.Errorf("icon = %q, want %q", got, "수집")
	}
	if got := runText(ovals[1].Body); got != "DB" {
		t.Errorf("icon = %q, want %q", got, "DB")
	}
}

func TestFooterNumbersSkipCoverAndClosing(t *testing.T) {
	b := NewBuilder("Deck", "2026-08-29", "Acme")
	b.AddTitleSlide("sub", "")
	b.AddContentSlide("01", "S", "First", []string{"x"}, "")
	b.AddContentSlide("02", "S", "Second", []string{"y"}, "")
	b.AddClosingSlide("", "")

	d := b.Deck()
	pageOf := func(s *Slide) string {
		boxes := shapesOf[*TextBox](s)
		if len(boxes) == 0 {
			return ""
		}
		return runText(&boxes[len(boxes)-1].Body)
	}

	if got := pageOf(d.Slides[1]); got != "1" {
		t.Errorf("first content page number = %q, want %q", got, "1")
	}
	if got := pageOf(d.Slides[2]); got != "2" {
		t.Errorf("second content page number = %q, want %q", got, "2")
	}
	for _, i := range []int{0, 3} {
		for _, tb := range shapesOf[*TextBox](d.Slides[i]) {
			if tb.Body.Paragraphs[0].Align == AlignRight {
				t.Errorf("slide %d has a numbered footer", i)
			}
		}
	}
}

func TestClosingSlideDefaultMessage(t *testing.T) {
	b := NewBuilder("Deck", "", "Acme")
	b.AddClosingSlide("", "")

	boxes := shapesOf[*TextBox](b.Deck().Slides[0])
	if len(boxes) == 0 {
		t.Fatal("no text on closing slide")
	}
	if got := runText(&boxes[0].Body); got != "Thank You" {
		t.Errorf("message = %q, want %q", got, "Thank You")
	}
}

func TestContentSlideBullets(t *testing.T) {
	b := NewBuilder("Deck", "", "")
	b.AddContentSlide("01", "S", "T", []string{"alpha", "beta"}, "desc")

	s := b.Deck().Slides[0]
	var card *Rect
	for _, r := range shapesOf[*Rect](s) {
		if r.Rounded {
			card = r
		}
	}
	if card == nil || card.Body == nil {
		t.Fatal("no content card with text")
	}
	if len(card.Body.Paragraphs) != 2 {
		t.Fatalf("paragraphs = %d, want 2", len(card.Body.Paragraphs))
	}
	if got := card.Body.Paragraphs[0].Runs[0].Text; got != "•  alpha" {
		t.Errorf("bullet = %q", got)
	}
	if card.Y != contentTop(true) {
		t.Errorf("card y = %d, want %d (description shifts content down)", card.Y, contentTop(true))
	}
}
