package infra

import (
	"fmt"
	"strings"

	"trazabilidad/internal/dto"
)

// EtiquetaTexto renders the label as plain text, one field per line, for
// printers driven in text mode and for the CLI. Same sections as the PDF;
// empty sections are left out.
func EtiquetaTexto(e *dto.EtiquetaResponse, empresa string) string {
	var b strings.Builder
	linea := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	if empresa != "" {
		linea("%s", empresa)
	}
	linea("%s", e.Elaborado)
	linea("Lote: %s", e.Codigo)
	b.WriteByte('\n')

	if e.Texto != "" {
		linea("Ingredientes: %s", e.Texto)
	}
	if len(e.Alergenos) > 0 {
		linea("* Contiene: %s", strings.Join(e.Alergenos, ", "))
	}
	if e.Conservacion != "" {
		linea("%s", e.Conservacion)
	}
	b.WriteByte('\n')

	linea("Elaboración: %s", e.FechaProduccion)
	if e.FechaCaducidad != "" {
		linea("Caducidad: %s", e.FechaCaducidad)
	}
	peso := e.PesoTotal.String()
	if e.UnidadPeso != "" {
		peso += " " + e.UnidadPeso
	}
	linea("Peso neto: %s", peso)
	return b.String()
}
