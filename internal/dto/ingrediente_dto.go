package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearIngredienteRequest struct {
	Nombre       string   `json:"nombre"       validate:"required,min=1,max=120"`
	Conservacion string   `json:"conservacion" validate:"max=2000"`
	AlergenoIDs  []string `json:"alergeno_ids" validate:"dive,uuid"`
}

// ActualizarIngredienteRequest: nil fields are left untouched. A non-nil
// AlergenoIDs replaces the whole allergen set (empty slice clears it).
type ActualizarIngredienteRequest struct {
	Nombre       *string   `json:"nombre"       validate:"omitempty,min=1,max=120"`
	Conservacion *string   `json:"conservacion" validate:"omitempty,max=2000"`
	AlergenoIDs  *[]string `json:"alergeno_ids" validate:"omitempty,dive,uuid"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type IngredienteFilter struct {
	Nombre    string `form:"nombre"`
	Derivados string `form:"derivados"` // "true" = only recipe outputs, "false" = only catalog, "" = all
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type IngredienteResponse struct {
	ID                string             `json:"id"`
	Nombre            string             `json:"nombre"`
	Conservacion      string             `json:"conservacion"`
	Alergenos         []AlergenoResponse `json:"alergenos"`
	ElaboradoOrigenID *string            `json:"elaborado_origen_id"`
}

type IngredienteListResponse struct {
	Data  []IngredienteResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
