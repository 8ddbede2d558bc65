package toolkit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlpaslanErdag/Orchestrator/artifact"
	"github.com/AlpaslanErdag/Orchestrator/tool"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestPDFReportTool_GeneratesArtifact(t *testing.T) {
	store := artifact.NewInMemoryStore()
	pdfTool := NewPDFReportTool(store, func(o *PDFOptions) { o.Now = fixedNow })

	out, err := pdfTool.Call(context.Background(), map[string]any{
		"title":    "Quarterly Summary",
		"content":  "Revenue grew.\n\nCosts were stable.",
		"filename": "summary",
	})
	require.NoError(t, err)

	payload, ok := out.(tool.ArtifactPayload)
	require.True(t, ok)
	assert.Equal(t, "mem://summary.pdf", payload.Path)
	assert.Contains(t, payload.Message, "PDF report generated at")

	data, err := store.Get("summary.pdf")
	require.NoError(t, err)
	doc := string(data)
	assert.True(t, strings.HasPrefix(doc, "%PDF-1.4"))
	assert.True(t, strings.HasSuffix(doc, "%%EOF\n"))
	assert.Contains(t, doc, "AI Research Report")
	assert.Contains(t, doc, "Quarterly Summary")
	assert.Contains(t, doc, "Generated: 2025-06-01 12:00:00")
	assert.Contains(t, doc, "/BaseFont /Helvetica")
}

func TestPDFReportTool_RequiresFields(t *testing.T) {
	pdfTool := NewPDFReportTool(artifact.NewInMemoryStore())
	_, err := pdfTool.Call(context.Background(), map[string]any{"title": "t"})
	var toolErr *tool.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, tool.CodeValidation, toolErr.Code)
}

func TestRenderReportPDF_Paginates(t *testing.T) {
	long := strings.Repeat("An unreasonably long paragraph that will wrap over many lines. ", 200)
	data := renderReportPDF("Header", "Title", long, "2025-06-01 12:00:00")
	doc := string(data)

	pages := strings.Count(doc, "/Type /Page ")
	assert.Greater(t, pages, 1, "long content spills onto additional pages")

	// Every page carries the header and the footer timestamp.
	assert.Equal(t, pages, strings.Count(doc, "Header"))
	assert.Equal(t, pages, strings.Count(doc, "Generated: 2025-06-01 12:00:00"))
}

func TestWrapText(t *testing.T) {
	lines := wrapText("aaaa bbbb cccc dddd", 12, 60)
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.LessOrEqual(t, approxTextWidth(line, 12), 60.0)
	}
	assert.Equal(t, "aaaa bbbb cccc dddd", strings.Join(lines, " "))

	assert.Nil(t, wrapText("   ", 12, 60))

	// A single oversized word still produces a line.
	lines = wrapText("supercalifragilistic", 12, 10)
	assert.Equal(t, []string{"supercalifragilistic"}, lines)
}

func TestEscapePDFText(t *testing.T) {
	assert.Equal(t, `\(a\) \\ b`, escapePDFText(`(a) \ b`))
	assert.Equal(t, "café ?", escapePDFText("café 🚀"))
}
