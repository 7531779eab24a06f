// Package report composes the final PDF artifact of a workflow run: the
// question, the generated query, validation status, analysis, result data,
// charts and the process log.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/datasage-ai/datasage/internal/pipeline"
	"github.com/datasage-ai/datasage/internal/types"
)

// Error codes for report composition.
const (
	ErrComposeFailed types.ErrorCode = "REPORT_COMPOSE_FAILED"
)

const (
	// maxTableRows and maxTableCols bound the inlined result table so wide or
	// deep results stay printable.
	maxTableRows = 20
	maxTableCols = 8

	pageWidth  = 190.0
	lineHeight = 6.0
)

// Config controls where reports are written.
type Config struct {
	OutputDir string
}

// PDFComposer builds report PDFs. It implements pipeline.Composer.
type PDFComposer struct {
	dir    string
	logger *slog.Logger
}

// NewPDFComposer creates a composer writing into cfg.OutputDir.
func NewPDFComposer(cfg Config, logger *slog.Logger) *PDFComposer {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "reports"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFComposer{dir: cfg.OutputDir, logger: logger}
}

// Compose renders the state into a PDF and returns its path. It always
// produces a document, including for runs that failed partway: the error and
// the process log are part of the report.
func (c *PDFComposer) Compose(ctx context.Context, st pipeline.State) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", types.WrapError(ErrComposeFailed, "failed to create report directory", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	c.writeHeader(pdf, st)
	c.writeQuery(pdf, st)
	c.writeValidation(pdf, st)
	c.writeAnalysis(pdf, st)
	c.writeResultTable(pdf, st)
	c.writeCharts(pdf, st)
	c.writeProcessLog(pdf, st)

	name := fmt.Sprintf("report_%s_%s.pdf",
		time.Now().Format("20060102_150405"), uuid.New().String()[:8])
	path := filepath.Join(c.dir, name)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", types.WrapError(ErrComposeFailed, "failed to write report", err)
	}

	c.logger.DebugContext(ctx, "report written", "path", path)
	return path, nil
}

func (c *PDFComposer) writeHeader(pdf *fpdf.Fpdf, st pipeline.State) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(pageWidth, 10, "Data Analysis Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(pageWidth, 5,
		fmt.Sprintf("Generated %s | Store: %s",
			time.Now().Format("2006-01-02 15:04"), st.StoreKind),
		"", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	c.sectionTitle(pdf, "Question")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(pageWidth, lineHeight, sanitize(st.Question), "", "L", false)
	pdf.Ln(2)
}

func (c *PDFComposer) writeQuery(pdf *fpdf.Fpdf, st pipeline.State) {
	if st.SQLQuery == "" {
		return
	}
	c.sectionTitle(pdf, "Generated SQL")
	pdf.SetFont("Courier", "", 9)
	pdf.SetFillColor(245, 245, 245)
	pdf.MultiCell(pageWidth, 5, sanitize(st.SQLQuery), "", "L", true)
	pdf.Ln(2)
}

func (c *PDFComposer) writeValidation(pdf *fpdf.Fpdf, st pipeline.State) {
	c.sectionTitle(pdf, "Validation")
	pdf.SetFont("Helvetica", "", 10)

	status := "PASSED"
	if !st.Verdict.SafeToExecute {
		status = "FAILED"
	}
	pdf.MultiCell(pageWidth, lineHeight,
		fmt.Sprintf("Status: %s   Severity: %s", status, orDash(st.Verdict.Severity)),
		"", "L", false)

	for _, issue := range st.Verdict.Issues {
		pdf.MultiCell(pageWidth, lineHeight, "- "+sanitize(issue), "", "L", false)
	}
	if st.Failed() {
		pdf.SetTextColor(180, 30, 30)
		pdf.MultiCell(pageWidth, lineHeight, "Error: "+sanitize(st.Err), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(2)
}

func (c *PDFComposer) writeAnalysis(pdf *fpdf.Fpdf, st pipeline.State) {
	if st.Analysis.Summary == "" && len(st.Analysis.KeyMetrics) == 0 && len(st.Analysis.Insights) == 0 {
		return
	}
	c.sectionTitle(pdf, "Analysis")
	pdf.SetFont("Helvetica", "", 10)

	if st.Analysis.Summary != "" {
		pdf.MultiCell(pageWidth, lineHeight, sanitize(st.Analysis.Summary), "", "L", false)
		pdf.Ln(1)
	}

	if len(st.Analysis.KeyMetrics) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(pageWidth, lineHeight, "Key Metrics", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, m := range st.Analysis.KeyMetrics {
			line := fmt.Sprintf("- %s: %s", m.Metric, m.Value)
			if m.Unit != "" {
				line += " " + m.Unit
			}
			pdf.MultiCell(pageWidth, lineHeight, sanitize(line), "", "L", false)
		}
		pdf.Ln(1)
	}

	for _, insight := range st.Analysis.Insights {
		pdf.MultiCell(pageWidth, lineHeight, "- "+sanitize(insight), "", "L", false)
	}
	pdf.Ln(2)
}

func (c *PDFComposer) writeResultTable(pdf *fpdf.Fpdf, st pipeline.State) {
	if st.Results.Empty() {
		return
	}
	c.sectionTitle(pdf, "Result Data")

	cols := st.Results.Columns
	if len(cols) > maxTableCols {
		cols = cols[:maxTableCols]
	}
	colWidth := pageWidth / float64(len(cols))

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range cols {
		pdf.CellFormat(colWidth, lineHeight, clip(sanitize(col), 24), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	rows := st.Results.Rows
	truncated := false
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
		truncated = true
	}
	for _, row := range rows {
		for i := range cols {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(colWidth, lineHeight, clip(sanitize(cell), 24), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if truncated {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(pageWidth, lineHeight,
			fmt.Sprintf("Showing %d of %d rows", maxTableRows, len(st.Results.Rows)),
			"", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
}

func (c *PDFComposer) writeCharts(pdf *fpdf.Fpdf, st pipeline.State) {
	if len(st.Charts) == 0 {
		return
	}
	c.sectionTitle(pdf, "Visualizations")

	for _, artifact := range st.Charts {
		if _, err := os.Stat(artifact.Path); err != nil {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(pageWidth, lineHeight, sanitize(artifact.Spec.Title), "", 1, "L", false, 0, "")
		pdf.ImageOptions(artifact.Path, pdf.GetX(), pdf.GetY(), 160, 0, true,
			fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		if artifact.Spec.Description != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(pageWidth, 5, sanitize(artifact.Spec.Description), "", "L", false)
		}
		pdf.Ln(3)
	}
}

func (c *PDFComposer) writeProcessLog(pdf *fpdf.Fpdf, st pipeline.State) {
	if len(st.Log) == 0 {
		return
	}
	c.sectionTitle(pdf, "Process Log")
	pdf.SetFont("Courier", "", 8)
	for _, entry := range st.Log {
		pdf.MultiCell(pageWidth, 4.5, sanitize(entry), "", "L", false)
	}
}

func (c *PDFComposer) sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(pageWidth, 8, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	x, y := pdf.GetX(), pdf.GetY()
	pdf.Line(x, y, x+pageWidth, y)
	pdf.Ln(2)
}

// sanitize maps text to the printable ASCII the core PDF fonts can encode.
func sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r < 32 || r > 126:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
