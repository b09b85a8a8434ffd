package infra

// pdf.go renders a lot label with go-pdf/fpdf. Layout (62mm wide, continuous
// label roll):
//   - Company header
//   - Product name and lot code
//   - Ingredient list (allergen carriers marked with *)
//   - Allergen line in bold
//   - Conservation text
//   - Production / expiry dates and net weight
//
// The printer transport is not handled here; callers get the PDF bytes.

import (
	"bytes"
	"fmt"
	"strings"

	"trazabilidad/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerateEtiquetaPDF renders the flattened label of a lot.
func GenerateEtiquetaPDF(e *dto.EtiquetaResponse, empresa string) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 62, Ht: 100},
	})
	pdf.SetMargins(3, 3, 3)
	pdf.SetAutoPageBreak(true, 3)
	pdf.AddPage()

	// core fonts are cp1252: accents and "ñ" need translating
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 6

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 6)
	pdf.CellFormat(contentW, 3, tr(empresa), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.MultiCell(contentW, 5, tr(e.Elaborado), "", "C", false)

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(contentW, 4, "Lote: "+e.Codigo, "", 1, "C", false, 0, "")
	pdf.Ln(1)

	pdf.Line(3, pdf.GetY(), pageW-3, pdf.GetY())
	pdf.Ln(1)

	// ── Ingredients ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 6)
	pdf.CellFormat(contentW, 3, "Ingredientes:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 6)
	pdf.MultiCell(contentW, 2.8, tr(e.Texto), "", "L", false)
	pdf.Ln(1)

	if len(e.Alergenos) > 0 {
		pdf.SetFont("Helvetica", "B", 6)
		pdf.MultiCell(contentW, 2.8, tr("* Contiene: "+strings.Join(e.Alergenos, ", ")), "", "L", false)
		pdf.Ln(1)
	}

	if e.Conservacion != "" {
		pdf.SetFont("Helvetica", "I", 6)
		pdf.MultiCell(contentW, 2.8, tr(e.Conservacion), "", "L", false)
		pdf.Ln(1)
	}

	pdf.Line(3, pdf.GetY(), pageW-3, pdf.GetY())
	pdf.Ln(1)

	// ── Dates / weight ───────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW/2, 4, tr("Elaboración: "+e.FechaProduccion), "", 0, "L", false, 0, "")
	if e.FechaCaducidad != "" {
		pdf.CellFormat(contentW/2, 4, "Cad.: "+e.FechaCaducidad, "", 1, "R", false, 0, "")
	} else {
		pdf.Ln(4)
	}
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(contentW, 4, tr(fmt.Sprintf("Peso neto: %s %s", e.PesoTotal.String(), e.UnidadPeso)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render etiqueta: %w", err)
	}
	return buf.Bytes(), nil
}
