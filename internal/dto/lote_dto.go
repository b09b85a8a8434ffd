package dto

import "github.com/shopspring/decimal"

// FormatoFecha is the wire format for calendar dates (production, expiry).
const FormatoFecha = "2006-01-02"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LineaLoteRequest carries the provenance of one consumed ingredient. The
// weight is never sent: it is scaled from the recipe.
type LineaLoteRequest struct {
	IngredienteID  string  `json:"ingrediente_id"  validate:"required,uuid"`
	Proveedor      *string `json:"proveedor"       validate:"omitempty,max=120"`
	LoteProveedor  *string `json:"lote_proveedor"  validate:"omitempty,max=60"`
	FechaCaducidad *string `json:"fecha_caducidad" validate:"omitempty,datetime=2006-01-02"`
}

type CrearLoteRequest struct {
	ElaboradoID     string             `json:"elaborado_id"     validate:"required,uuid"`
	LotePadreID     *string            `json:"lote_padre_id"    validate:"omitempty,uuid"`
	FechaProduccion string             `json:"fecha_produccion" validate:"required,datetime=2006-01-02"`
	PesoTotal       decimal.Decimal    `json:"peso_total"`
	UnidadPesoID    *string            `json:"unidad_peso_id"   validate:"omitempty,uuid"`
	TempInicio      *decimal.Decimal   `json:"temp_inicio"`
	TempFin         *decimal.Decimal   `json:"temp_fin"`
	Lineas          []LineaLoteRequest `json:"lineas"           validate:"dive"`
}

type CerrarLoteRequest struct {
	Modo             string           `json:"modo"              validate:"required,oneof=manual parcial final"`
	GramosConsumidos decimal.Decimal  `json:"gramos_consumidos" validate:"min=0"`
	Etiquetas        int              `json:"etiquetas"         validate:"min=0"`
	GramosPorEnvase  *decimal.Decimal `json:"gramos_por_envase"`
	Unidades         *int             `json:"unidades"          validate:"omitempty,min=0"`
	Operador         string           `json:"operador"          validate:"required,max=120"`
	Metadatos        map[string]any   `json:"metadatos"`
}

// ActualizarLoteRequest edits the temperature log. Numero is accepted only to
// reject callers that try to renumber a lot.
type ActualizarLoteRequest struct {
	Numero     *int             `json:"numero"`
	TempInicio *decimal.Decimal `json:"temp_inicio"`
	TempFin    *decimal.Decimal `json:"temp_fin"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type LoteFilter struct {
	ElaboradoID string `form:"elaborado_id" validate:"omitempty,uuid"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaLoteResponse struct {
	ID                    string           `json:"id"`
	IngredienteResultante string           `json:"ingrediente_resultante"`
	IngredienteID         *string          `json:"ingrediente_id"`
	Peso                  decimal.Decimal  `json:"peso"`
	PorcentajeOrigen      *decimal.Decimal `json:"porcentaje_origen"`
	Proveedor             *string          `json:"proveedor"`
	LoteProveedor         *string          `json:"lote_proveedor"`
	FechaCaducidad        *string          `json:"fecha_caducidad"`
	EsOrigen              bool             `json:"es_origen"` // raw material of a split batch, not printed
	Alergenos             []string         `json:"alergenos"` // as recorded at production time
}

type SiguienteLoteResponse struct {
	ElaboradoID string `json:"elaborado_id"`
	Numero      int    `json:"numero"`
}

type CierreResponse struct {
	ID               string           `json:"id"`
	Modo             string           `json:"modo"`
	GramosConsumidos decimal.Decimal  `json:"gramos_consumidos"`
	Etiquetas        int              `json:"etiquetas"`
	GramosPorEnvase  *decimal.Decimal `json:"gramos_por_envase"`
	Unidades         *int             `json:"unidades"`
	Operador         string           `json:"operador"`
	Metadatos        map[string]any   `json:"metadatos"`
	CreatedAt        string           `json:"created_at"`
}

type LoteResponse struct {
	ID              string              `json:"id"`
	Codigo          string              `json:"codigo"`
	ElaboradoID     string              `json:"elaborado_id"`
	Elaborado       string              `json:"elaborado"`
	Numero          int                 `json:"numero"`
	FechaProduccion string              `json:"fecha_produccion"`
	FechaCaducidad  *string             `json:"fecha_caducidad"`
	PesoTotal       decimal.Decimal     `json:"peso_total"`
	UnidadPeso      string              `json:"unidad_peso"`
	TempInicio      *decimal.Decimal    `json:"temp_inicio"`
	TempFin         *decimal.Decimal    `json:"temp_fin"`
	LotePadreID     *string             `json:"lote_padre_id"`
	Derivado        bool                `json:"derivado"`
	Estado          string              `json:"estado"` // abierto | parcial | cerrado
	Caducado        bool                `json:"caducado"`
	Lineas          []LineaLoteResponse `json:"lineas"`
	Cierres         []CierreResponse    `json:"cierres"`
}

type LoteListResponse struct {
	Data  []LoteResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
