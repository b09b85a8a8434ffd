package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Lote is a dated production batch instantiating an Elaborado.
// Numero is a per-recipe counter, assigned once; a DB trigger rejects any later change.
type Lote struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	ElaboradoID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_lote_elaborado_numero"`
	Numero          int              `gorm:"not null;uniqueIndex:idx_lote_elaborado_numero"`
	FechaProduccion time.Time        `gorm:"not null"`
	FechaCaducidad  *time.Time       // nil when the recipe has no shelf life
	PesoTotal       decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	UnidadPesoID    *uuid.UUID       `gorm:"type:uuid"`
	TempInicio      *decimal.Decimal `gorm:"type:decimal(5,1)"`
	TempFin         *decimal.Decimal `gorm:"type:decimal(5,1)"`
	LotePadreID     *uuid.UUID       `gorm:"type:uuid;index"`
	Derivado        bool             `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Elaborado  *Elaborado        `gorm:"foreignKey:ElaboradoID;constraint:OnDelete:RESTRICT"`
	UnidadPeso *Unidad           `gorm:"foreignKey:UnidadPesoID;constraint:OnDelete:RESTRICT"`
	Lineas     []LoteIngrediente `gorm:"foreignKey:LoteID;constraint:OnDelete:CASCADE"`
	Cierres    []LoteCierre      `gorm:"foreignKey:LoteID;constraint:OnDelete:CASCADE"`
}

func (Lote) TableName() string { return "lotes" }

func (l *Lote) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LoteIngrediente records the actual consumption of one ingredient in a batch,
// scaled from the recipe's planned quantity. In a split batch the origin line
// is the raw material being portioned; it carries provenance but is not
// printed, since every output already expands into it.
type LoteIngrediente struct {
	ID                    uuid.UUID        `gorm:"type:uuid;primaryKey"`
	LoteID                uuid.UUID        `gorm:"type:uuid;not null;index"`
	IngredienteResultante string           `gorm:"not null"` // name snapshot at production time
	IngredienteID         *uuid.UUID       `gorm:"type:uuid;index"`
	Peso                  decimal.Decimal  `gorm:"type:decimal(12,3);not null;default:0"`
	PorcentajeOrigen      *decimal.Decimal `gorm:"type:decimal(6,2)"`
	Proveedor             *string
	LoteProveedor         *string
	FechaCaducidad        *time.Time
	EsOrigen              bool `gorm:"not null;default:false"`
	// Alergenos is the allergen set at production time. nil only on rows
	// written before the snapshot existed.
	Alergenos []AlergenoLote `gorm:"type:text;serializer:json"`

	Ingrediente *Ingrediente `gorm:"foreignKey:IngredienteID;constraint:OnDelete:SET NULL"`
}

type AlergenoLote struct {
	ID     uuid.UUID `json:"id"`
	Nombre string    `json:"nombre"`
}

// SnapshotAlergenos copies the allergens of i. Never nil.
func SnapshotAlergenos(i *Ingrediente) []AlergenoLote {
	out := make([]AlergenoLote, 0)
	if i == nil {
		return out
	}
	for _, a := range i.Alergenos {
		out = append(out, AlergenoLote{ID: a.ID, Nombre: a.Nombre})
	}
	return out
}

func (LoteIngrediente) TableName() string { return "lotes_ingredientes" }

func (l *LoteIngrediente) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Modo de cierre
const (
	CierreManual  = "manual"
	CierreParcial = "parcial"
	CierreFinal   = "final"
)

// LoteCierre is an append-only closure record. Never modified or deleted.
type LoteCierre struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey"`
	LoteID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	GramosConsumidos decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	Etiquetas        int              `gorm:"not null;default:0"`
	Modo             string           `gorm:"type:varchar(10);not null"`
	GramosPorEnvase  *decimal.Decimal `gorm:"type:decimal(12,3)"`
	Unidades         *int
	Operador         string         `gorm:"not null"`
	Metadatos        map[string]any `gorm:"type:text;serializer:json"`
	CreatedAt        time.Time
}

func (LoteCierre) TableName() string { return "lotes_cierres" }

func (c *LoteCierre) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
