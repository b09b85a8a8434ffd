package dto

import "github.com/shopspring/decimal"

// EtiquetaResponse is the flattened label projection of a lot, consumed by
// the JSON endpoint, the PDF renderer and external label printers.
type EtiquetaResponse struct {
	LoteID          string          `json:"lote_id"`
	Codigo          string          `json:"codigo"`
	Elaborado       string          `json:"elaborado"`
	Ingredientes    []string        `json:"ingredientes"` // one rendered entry per consumed line, weight desc
	Texto           string          `json:"texto"`        // "Salsa* (Tomate, Sal*), Pasta."
	Alergenos       []string        `json:"alergenos"`
	Conservacion    string          `json:"conservacion"`
	FechaProduccion string          `json:"fecha_produccion"` // 02/01/2006
	FechaCaducidad  string          `json:"fecha_caducidad"`
	PesoTotal       decimal.Decimal `json:"peso_total"`
	UnidadPeso      string          `json:"unidad_peso"`
}
