package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 190.0
	headerFill  = 230
	labelWidth  = 45.0
	rowHeight   = 7.0
	titleHeight = 10.0
)

// Report is a single page-flow document: a title, labelled header fields, a
// table and labelled summary fields.
type Report struct {
	Title    string
	Subtitle string
	Header   []Field
	Data     Dataset
	Summary  []Field
}

// PDFExporter renders reports such as the KHS into A4 portrait PDFs.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the PDF document for report.
func (e *PDFExporter) Render(report Report) ([]byte, error) {
	if len(report.Data.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetTitle(report.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if report.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, titleHeight, tr(report.Title), "", 1, "C", false, 0, "")
	}
	if report.Subtitle != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, rowHeight, tr(report.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	writeFields(pdf, tr, report.Header)
	if len(report.Header) > 0 {
		pdf.Ln(3)
	}

	widths := columnWidths(report.Data.Columns)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(headerFill, headerFill, headerFill)
	for i, col := range report.Data.Columns {
		pdf.CellFormat(widths[i], 8, tr(col.Title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range report.Data.Rows {
		for i, col := range report.Data.Columns {
			pdf.CellFormat(widths[i], rowHeight, tr(row[col.Key]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(report.Summary) > 0 {
		pdf.Ln(4)
		writeFields(pdf, tr, report.Summary)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFields(pdf *gofpdf.Fpdf, tr func(string) string, fields []Field) {
	for _, f := range fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(labelWidth, rowHeight, tr(f.Label), "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, rowHeight, tr(": "+f.Value), "", 1, "", false, 0, "")
	}
}

func columnWidths(cols []Column) []float64 {
	widths := make([]float64, len(cols))
	fixed, flexible := 0.0, 0
	for i, col := range cols {
		widths[i] = col.Width
		if col.Width > 0 {
			fixed += col.Width
		} else {
			flexible++
		}
	}
	if flexible == 0 {
		return widths
	}
	share := (pageWidth - fixed) / float64(flexible)
	if share < 10 {
		share = 10
	}
	for i := range widths {
		if widths[i] <= 0 {
			widths[i] = share
		}
	}
	return widths
}
