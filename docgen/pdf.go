// Package docgen renders the augmentation catalogue into downloadable
// documents. Currently only PDF output is supported.
package docgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// CatalogueEntry is one augmentation row in the generated document.
// The package defines its own row type so it stays independent of the
// persistence model.
type CatalogueEntry struct {
	Name        string
	Type        string
	Area        string
	Activation  string
	EnergyRate  string
	Description string
}

// PDFGenerator produces PDF documents.
type PDFGenerator struct {
	title string
}

// NewPDFGenerator creates a PDFGenerator. title appears as the
// document heading.
func NewPDFGenerator(title string) *PDFGenerator {
	return &PDFGenerator{title: title}
}

// Catalogue renders the entries as a landscape A4 table and returns
// the PDF bytes.
func (g *PDFGenerator) Catalogue(entries []CatalogueEntry) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(g.title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, g.title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", time.Now().UTC().Format(time.RFC1123)))
	pdf.Ln(10)

	headers := []string{"Name", "Type", "Area", "Activation", "Energy Rate", "Description"}
	widths := []float64{45, 30, 30, 28, 28, 110}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, e := range entries {
		row := []string{e.Name, e.Type, e.Area, e.Activation, e.EnergyRate, truncate(e.Description, 90)}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
