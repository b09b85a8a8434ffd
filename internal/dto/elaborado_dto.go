package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LineaCombinadoRequest struct {
	IngredienteID string          `json:"ingrediente_id" validate:"required,uuid"`
	Cantidad      decimal.Decimal `json:"cantidad"       validate:"min=0"`
	UnidadID      *string         `json:"unidad_id"      validate:"omitempty,uuid"`
}

type CrearCombinadoRequest struct {
	Nombre               string                  `json:"nombre"                validate:"required,min=1,max=120"`
	Descripcion          string                  `json:"descripcion"`
	PesoObtenido         decimal.Decimal         `json:"peso_obtenido"`
	DiasConservacion     int                     `json:"dias_conservacion"     validate:"min=0"`
	TipoID               *string                 `json:"tipo_id"               validate:"omitempty,uuid"`
	Lineas               []LineaCombinadoRequest `json:"lineas"                validate:"dive"`
	RegistrarIngrediente bool                    `json:"registrar_ingrediente"`
}

// SalidaEscandalloRequest is one portion of a split recipe. On update, ID is
// the id of an existing output ingredient; nil creates a new output.
type SalidaEscandalloRequest struct {
	ID       *string         `json:"id"        validate:"omitempty,uuid"`
	Nombre   string          `json:"nombre"    validate:"max=120"`
	Cantidad decimal.Decimal `json:"cantidad"`
	UnidadID *string         `json:"unidad_id" validate:"omitempty,uuid"`
}

type CrearEscandalloRequest struct {
	Nombre           string                    `json:"nombre"            validate:"max=120"`
	Descripcion      string                    `json:"descripcion"`
	OrigenID         string                    `json:"origen_id"         validate:"required,uuid"`
	PesoInicial      decimal.Decimal           `json:"peso_inicial"`
	UnidadID         *string                   `json:"unidad_id"         validate:"omitempty,uuid"`
	DiasConservacion int                       `json:"dias_conservacion" validate:"min=0"`
	TipoID           *string                   `json:"tipo_id"           validate:"omitempty,uuid"`
	Salidas          []SalidaEscandalloRequest `json:"salidas"           validate:"dive"`
}

// ActualizarEscandalloRequest carries the version the caller read; a stale
// version is rejected. OrigenID, when sent, must match the current origin.
type ActualizarEscandalloRequest struct {
	Version          int                       `json:"version"           validate:"required,min=1"`
	OrigenID         *string                   `json:"origen_id"         validate:"omitempty,uuid"`
	PesoInicial      decimal.Decimal           `json:"peso_inicial"`
	Descripcion      string                    `json:"descripcion"`
	DiasConservacion int                       `json:"dias_conservacion" validate:"min=0"`
	Salidas          []SalidaEscandalloRequest `json:"salidas"           validate:"dive"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ElaboradoFilter struct {
	Nombre string `form:"nombre"`
	TipoID string `form:"tipo_id"`
	Forma  string `form:"forma"  validate:"omitempty,oneof=combinar escandallo"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaElaboradoResponse struct {
	ID            string          `json:"id"`
	IngredienteID string          `json:"ingrediente_id"`
	Ingrediente   string          `json:"ingrediente"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	UnidadID      *string         `json:"unidad_id"`
	Unidad        string          `json:"unidad"`
	EsOrigen      bool            `json:"es_origen"`
	Alergenos     []string        `json:"alergenos"`
}

type ElaboradoResponse struct {
	ID               string                   `json:"id"`
	Nombre           string                   `json:"nombre"`
	Descripcion      string                   `json:"descripcion"`
	PesoObtenido     decimal.Decimal          `json:"peso_obtenido"`
	DiasConservacion int                      `json:"dias_conservacion"`
	TipoID           *string                  `json:"tipo_id"`
	Tipo             string                   `json:"tipo"`
	Forma            string                   `json:"forma"`
	Version          int                      `json:"version"`
	Origen           *LineaElaboradoResponse  `json:"origen"`
	Lineas           []LineaElaboradoResponse `json:"lineas"`
	Alergenos        []string                 `json:"alergenos"`
	Restos           *decimal.Decimal         `json:"restos,omitempty"` // split recipes only
	CreatedAt        string                   `json:"created_at"`
}

type ElaboradoListResponse struct {
	Data  []ElaboradoResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
