package toolkit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlpaslanErdag/Orchestrator/artifact"
	"github.com/AlpaslanErdag/Orchestrator/tool"
)

// PDFOptions configure the report generator.
type PDFOptions struct {
	// HeaderTitle is printed centered at the top of every page.
	HeaderTitle string
	// Now supplies the footer timestamp, overridable for tests.
	Now func() time.Time
}

// NewPDFReportTool returns the generate_pdf_report tool. It renders a
// header, a titled body and a timestamp footer into a PDF and saves it in
// the artifact store; the stored path travels back to the caller as the
// result's artifact path.
func NewPDFReportTool(store artifact.Store, optFns ...func(o *PDFOptions)) *tool.FunctionTool {
	opts := PDFOptions{
		HeaderTitle: "AI Research Report",
		Now:         time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return tool.NewFunctionTool(
		"generate_pdf_report",
		"Generate a professional AI research PDF report with a header, body text, and "+
			"footer containing a timestamp. Use this to create human-readable summaries "+
			"of your analysis or research.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Title of the report content section (shown inside the PDF).",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "Main body of the report. Can include multiple paragraphs and should be plain text.",
				},
				"filename": map[string]any{
					"type":        "string",
					"description": "Output PDF filename (e.g., 'analysis.pdf'). Stored in the configured reports directory.",
				},
			},
			"required": []string{"title", "content", "filename"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			title, _ := args["title"].(string)
			content, _ := args["content"].(string)
			filename, _ := args["filename"].(string)

			data := renderReportPDF(opts.HeaderTitle, title, content, opts.Now().Format("2006-01-02 15:04:05"))
			name := artifact.EnsureExtension(filename, ".pdf")
			path, err := store.Save(name, data)
			if err != nil {
				return nil, fmt.Errorf("save report: %w", err)
			}
			return tool.ArtifactPayload{
				Message: fmt.Sprintf("PDF report generated at %s", path),
				Path:    path,
			}, nil
		},
	)
}

// Minimal PDF writer. A4 pages, core Helvetica fonts and a WinAnsi-ish text
// encoding are enough for plain-text reports, which keeps the module free of
// a PDF dependency.
const (
	pageWidth  = 595.0
	pageHeight = 842.0
	marginX    = 50.0
	marginTop  = 60.0
	marginBot  = 60.0
	bodySize   = 12.0
	bodyLead   = 16.0
)

type pdfPage struct {
	stream strings.Builder
	cursor float64
}

func renderReportPDF(headerTitle, title, content, timestamp string) []byte {
	var pages []*pdfPage
	newPage := func() *pdfPage {
		p := &pdfPage{cursor: pageHeight - marginTop}
		writeCentered(p, "F2", 14, pageHeight-40, headerTitle)
		writeCentered(p, "F3", 8, 30, "Generated: "+timestamp)
		pages = append(pages, p)
		return p
	}

	p := newPage()
	writeLine(p, "F2", 16, title)
	p.cursor -= 6

	for _, para := range strings.Split(content, "\n") {
		lines := wrapText(para, bodySize, pageWidth-2*marginX)
		if len(lines) == 0 {
			p.cursor -= bodyLead
			continue
		}
		for _, line := range lines {
			if p.cursor < marginBot {
				p = newPage()
			}
			writeLine(p, "F1", bodySize, line)
		}
	}

	return assemblePDF(pages)
}

func writeLine(p *pdfPage, font string, size float64, text string) {
	fmt.Fprintf(&p.stream, "BT /%s %.1f Tf %.1f %.1f Td (%s) Tj ET\n",
		font, size, marginX, p.cursor, escapePDFText(text))
	p.cursor -= size * 1.3
}

func writeCentered(p *pdfPage, font string, size float64, y float64, text string) {
	x := (pageWidth - approxTextWidth(text, size)) / 2
	if x < marginX {
		x = marginX
	}
	fmt.Fprintf(&p.stream, "BT /%s %.1f Tf %.1f %.1f Td (%s) Tj ET\n",
		font, size, x, y, escapePDFText(text))
}

// wrapText splits text into lines fitting maxWidth, using an average glyph
// width approximation good enough for Helvetica body text.
func wrapText(text string, size, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	var line string
	for _, w := range words {
		candidate := w
		if line != "" {
			candidate = line + " " + w
		}
		if approxTextWidth(candidate, size) > maxWidth && line != "" {
			lines = append(lines, line)
			line = w
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func approxTextWidth(text string, size float64) float64 {
	return float64(len(text)) * size * 0.5
}

// escapePDFText escapes string-literal delimiters and folds text to Latin-1,
// replacing glyphs the core fonts cannot carry.
func escapePDFText(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch r {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			if r > 0xFF {
				b.WriteByte('?')
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// assemblePDF lays out the cross-reference table and object tree around the
// page content streams.
func assemblePDF(pages []*pdfPage) []byte {
	var body strings.Builder
	var offsets []int

	addObj := func(content string) {
		offsets = append(offsets, body.Len())
		fmt.Fprintf(&body, "%d 0 obj\n%s\nendobj\n", len(offsets), content)
	}

	// Object layout: 1 catalog, 2 pages, 3-5 fonts, then per page one page
	// object followed by its content stream.
	pageObjIDs := make([]string, len(pages))
	firstPageID := 6
	for i := range pages {
		pageObjIDs[i] = fmt.Sprintf("%d 0 R", firstPageID+i*2)
	}

	header := "%PDF-1.4\n"
	addObj("<< /Type /Catalog /Pages 2 0 R >>")
	addObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(pageObjIDs, " "), len(pages)))
	addObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	addObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>")
	addObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Oblique /Encoding /WinAnsiEncoding >>")

	for i, p := range pages {
		contentID := firstPageID + i*2 + 1
		addObj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.0f %.0f] "+
			"/Resources << /Font << /F1 3 0 R /F2 4 0 R /F3 5 0 R >> >> /Contents %d 0 R >>",
			pageWidth, pageHeight, contentID))
		stream := p.stream.String()
		addObj(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	}

	var out strings.Builder
	out.WriteString(header)
	out.WriteString(body.String())

	xrefStart := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off+len(header))
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefStart)

	return []byte(out.String())
}
