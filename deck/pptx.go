package deck

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// The .pptx container is an OPC zip of DrawingML parts. Entry order and
// metadata are fixed so identical decks serialize to identical bytes.

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// writePPTX serializes the deck to w as a .pptx container.
func writePPTX(d *Deck, w io.Writer) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML(len(d.Slides))},
		{"_rels/.rels", rootRelsXML},
		{"ppt/presentation.xml", presentationXML(len(d.Slides))},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(len(d.Slides))},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML},
		{"ppt/theme/theme1.xml", themeXML(d.Theme)},
	}
	for i, slide := range d.Slides {
		parts = append(parts,
			struct {
				name    string
				content string
			}{fmt.Sprintf("ppt/slides/slide%d.xml", i+1), slideXML(slide)},
			struct {
				name    string
				content string
			}{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), slideRelsXML},
		)
	}

	for _, part := range parts {
		// Fixed header (no modification time) keeps output byte-stable.
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:   part.name,
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("deck: zip entry %s: %w", part.name, err)
		}
		if _, err := io.WriteString(fw, part.content); err != nil {
			return fmt.Errorf("deck: write %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("deck: finalize container: %w", err)
	}
	return nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string { return xmlEscaper.Replace(s) }

// centipoints converts a point size to the DrawingML sz attribute value.
func centipoints(pt float64) int { return int(pt*100 + 0.5) }

// fixed parts

func contentTypesXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

const rootRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>` +
	`</Relationships>`

func presentationXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:presentation xmlns:a=%q xmlns:r=%q xmlns:p=%q>`, nsA, nsR, nsP)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 255+i, i+1)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, SlideWidth, SlideHeight)
	b.WriteString(`<p:notesSz cx="6858000" cy="9144000"/>`)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func presentationRelsXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+1, i)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

const emptySpTree = `<p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

const slideMasterXML = xmlHeader +
	`<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
	`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>` +
	emptySpTree + `</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`<p:txStyles><p:titleStyle/><p:bodyStyle/><p:otherStyle/></p:txStyles>` +
	`</p:sldMaster>`

const slideMasterRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="../theme/theme1.xml"/>` +
	`</Relationships>`

const slideLayoutXML = xmlHeader +
	`<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" type="blank" preserve="1">` +
	`<p:cSld name="Blank">` + emptySpTree + `</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
	`</p:sldLayout>`

const slideLayoutRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>` +
	`</Relationships>`

const slideRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`</Relationships>`

// themeXML derives the document color scheme from the deck theme so
// presentation software shows matching theme colors.
func themeXML(t *Theme) string {
	accent := func(i int) Color {
		if i < len(t.IconColors) {
			return t.IconColors[i]
		}
		return t.Accent
	}
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<a:theme xmlns:a=%q name="Deckhand">`, nsA)
	b.WriteString(`<a:themeElements><a:clrScheme name="Deckhand">`)
	b.WriteString(`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>`)
	b.WriteString(`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>`)
	fmt.Fprintf(&b, `<a:dk2><a:srgbClr val="%s"/></a:dk2>`, t.BackgroundDark)
	fmt.Fprintf(&b, `<a:lt2><a:srgbClr val="%s"/></a:lt2>`, t.BackgroundLight)
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, `<a:accent%d><a:srgbClr val="%s"/></a:accent%d>`, i+1, accent(i), i+1)
	}
	fmt.Fprintf(&b, `<a:hlink><a:srgbClr val="%s"/></a:hlink>`, t.Accent)
	fmt.Fprintf(&b, `<a:folHlink><a:srgbClr val="%s"/></a:folHlink>`, t.Accent2)
	b.WriteString(`</a:clrScheme>`)
	font := esc(t.Font)
	fmt.Fprintf(&b, `<a:fontScheme name="Deckhand"><a:majorFont><a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont><a:minorFont><a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont></a:fontScheme>`, font, font)
	b.WriteString(`<a:fmtScheme name="Office">`)
	b.WriteString(`<a:fillStyleLst>` + strings.Repeat(`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`, 3) + `</a:fillStyleLst>`)
	b.WriteString(`<a:lnStyleLst>` + strings.Repeat(`<a:ln w="9525" cap="flat"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:prstDash val="solid"/></a:ln>`, 3) + `</a:lnStyleLst>`)
	b.WriteString(`<a:effectStyleLst>` + strings.Repeat(`<a:effectStyle><a:effectLst/></a:effectStyle>`, 3) + `</a:effectStyleLst>`)
	b.WriteString(`<a:bgFillStyleLst>` + strings.Repeat(`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`, 3) + `</a:bgFillStyleLst>`)
	b.WriteString(`</a:fmtScheme></a:themeElements></a:theme>`)
	return b.String()
}

// slide serialization

func slideXML(s *Slide) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sld xmlns:a=%q xmlns:r=%q xmlns:p=%q>`, nsA, nsR, nsP)
	b.WriteString(`<p:cSld>`)
	if s.Background != "" {
		fmt.Fprintf(&b, `<p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`, s.Background)
	}
	b.WriteString(emptySpTree)

	// Shape ids start at 2; id 1 is the group container.
	id := 2
	for _, shape := range s.Shapes {
		switch sh := shape.(type) {
		case *Rect:
			writeAutoShape(&b, id, sh.X, sh.Y, sh.W, sh.H, geomFor(sh.Rounded), sh.Fill, sh.Body)
		case *Oval:
			writeAutoShape(&b, id, sh.X, sh.Y, sh.D, sh.D, "ellipse", sh.Fill, sh.Body)
		case *TextBox:
			writeTextBox(&b, id, sh)
		case *Table:
			writeTable(&b, id, sh)
		}
		id++
	}

	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return b.String()
}

func geomFor(rounded bool) string {
	if rounded {
		return "roundRect"
	}
	return "rect"
}

func writeAutoShape(b *strings.Builder, id int, x, y, w, h EMU, geom string, fill Color, body *TextBody) {
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Shape %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`, id, id)
	b.WriteString(`<p:spPr>`)
	writeXfrm(b, x, y, w, h)
	fmt.Fprintf(b, `<a:prstGeom prst="%s"><a:avLst/></a:prstGeom>`, geom)
	if fill != "" {
		fmt.Fprintf(b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, fill)
	} else {
		b.WriteString(`<a:noFill/>`)
	}
	b.WriteString(`<a:ln><a:noFill/></a:ln></p:spPr>`)
	if body != nil {
		writeTextBody(b, body)
	}
	b.WriteString(`</p:sp>`)
}

func writeTextBox(b *strings.Builder, id int, tb *TextBox) {
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, id)
	b.WriteString(`<p:spPr>`)
	writeXfrm(b, tb.X, tb.Y, tb.W, tb.H)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/><a:ln><a:noFill/></a:ln></p:spPr>`)
	writeTextBody(b, &tb.Body)
	b.WriteString(`</p:sp>`)
}

func writeXfrm(b *strings.Builder, x, y, w, h EMU) {
	fmt.Fprintf(b, `<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, x, y, w, h)
}

func writeTextBody(b *strings.Builder, body *TextBody) {
	b.WriteString(`<p:txBody><a:bodyPr`)
	if body.Wrap {
		b.WriteString(` wrap="square"`)
	} else {
		b.WriteString(` wrap="none"`)
	}
	if body.MarginLeft != 0 {
		fmt.Fprintf(b, ` lIns="%d"`, body.MarginLeft)
	}
	if body.MarginTop != 0 {
		fmt.Fprintf(b, ` tIns="%d"`, body.MarginTop)
	}
	if body.MarginRight != 0 {
		fmt.Fprintf(b, ` rIns="%d"`, body.MarginRight)
	}
	if body.Anchor == AnchorMiddle {
		b.WriteString(` anchor="ctr"`)
	}
	b.WriteString(`/><a:lstStyle/>`)
	if len(body.Paragraphs) == 0 {
		b.WriteString(`<a:p/>`)
	}
	for _, p := range body.Paragraphs {
		writeParagraph(b, &p)
	}
	b.WriteString(`</p:txBody>`)
}

func writeParagraph(b *strings.Builder, p *Paragraph) {
	b.WriteString(`<a:p>`)
	if p.Align != AlignLeft || p.SpaceAfter > 0 {
		b.WriteString(`<a:pPr`)
		switch p.Align {
		case AlignCenter:
			b.WriteString(` algn="ctr"`)
		case AlignRight:
			b.WriteString(` algn="r"`)
		}
		b.WriteString(`>`)
		if p.SpaceAfter > 0 {
			fmt.Fprintf(b, `<a:spcAft><a:spcPts val="%d"/></a:spcAft>`, centipoints(p.SpaceAfter))
		}
		b.WriteString(`</a:pPr>`)
	}
	for _, r := range p.Runs {
		writeRun(b, &r)
	}
	b.WriteString(`</a:p>`)
}

func writeRun(b *strings.Builder, r *Run) {
	b.WriteString(`<a:r><a:rPr lang="en-US"`)
	if r.Size > 0 {
		fmt.Fprintf(b, ` sz="%d"`, centipoints(r.Size))
	}
	if r.Bold {
		b.WriteString(` b="1"`)
	}
	b.WriteString(` dirty="0">`)
	if r.Color != "" {
		fmt.Fprintf(b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, r.Color)
	}
	if r.Font != "" {
		fmt.Fprintf(b, `<a:latin typeface="%s"/>`, esc(r.Font))
	}
	fmt.Fprintf(b, `</a:rPr><a:t>%s</a:t></a:r>`, esc(r.Text))
}

func writeTable(b *strings.Builder, id int, t *Table) {
	if len(t.Rows) == 0 || len(t.Rows[0].Cells) == 0 {
		return
	}
	cols := len(t.Rows[0].Cells)
	rows := len(t.Rows)

	fmt.Fprintf(b, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="Table %d"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>`, id, id)
	fmt.Fprintf(b, `<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`, t.X, t.Y, t.W, t.H)
	b.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table">`)
	b.WriteString(`<a:tbl><a:tblPr/><a:tblGrid>`)

	// Even split; the last column absorbs the rounding remainder so
	// widths sum exactly to the table width.
	colW := t.W / EMU(cols)
	for c := 0; c < cols; c++ {
		w := colW
		if c == cols-1 {
			w = t.W - colW*EMU(cols-1)
		}
		fmt.Fprintf(b, `<a:gridCol w="%d"/>`, w)
	}
	b.WriteString(`</a:tblGrid>`)

	rowH := t.H / EMU(rows)
	for ri, row := range t.Rows {
		h := rowH
		if ri == rows-1 {
			h = t.H - rowH*EMU(rows-1)
		}
		fmt.Fprintf(b, `<a:tr h="%d">`, h)
		for _, cell := range row.Cells {
			b.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:lstStyle/><a:p>`)
			if cell.Centered {
				b.WriteString(`<a:pPr algn="ctr"/>`)
			}
			run := Run{Text: cell.Text, Size: cell.TextSize, Bold: cell.Bold, Color: cell.Color}
			writeRun(b, &run)
			b.WriteString(`</a:p></a:txBody><a:tcPr>`)
			if cell.Fill != "" {
				fmt.Fprintf(b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, cell.Fill)
			}
			b.WriteString(`</a:tcPr></a:tc>`)
		}
		b.WriteString(`</a:tr>`)
	}

	b.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
}
