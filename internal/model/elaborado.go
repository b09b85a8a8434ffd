package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Forma distinguishes the two derivation shapes sharing the elaborados table.
const (
	FormaCombinar   = "combinar"   // N inputs -> one output
	FormaEscandallo = "escandallo" // one origin portioned into N outputs
)

// Elaborado is a recipe definition.
// A split recipe ("escandallo") always has exactly one origin line; a combine
// recipe has none unless it registered itself as an ingredient, in which case a
// synthetic origin line of quantity 0 points at that ingredient.
type Elaborado struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nombre           string          `gorm:"index;not null"`
	Descripcion      string          `gorm:"type:text;not null;default:''"`
	PesoObtenido     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	DiasConservacion int             `gorm:"not null;default:0"`
	TipoID           *uuid.UUID      `gorm:"type:uuid;index"`
	Forma            string          `gorm:"type:varchar(12);not null;default:'combinar'"`
	// Version is bumped on every update; stale writers are rejected.
	Version   int `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tipo   *TipoElaborado         `gorm:"foreignKey:TipoID;constraint:OnDelete:RESTRICT"`
	Lineas []ElaboradoIngrediente `gorm:"foreignKey:ElaboradoID;constraint:OnDelete:CASCADE"`
}

func (Elaborado) TableName() string { return "elaborados" }

func (e *Elaborado) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Elaborado) EsEscandallo() bool { return e.Forma == FormaEscandallo }

// LineasOrigen returns every line flagged as origin.
func (e *Elaborado) LineasOrigen() []ElaboradoIngrediente {
	var out []ElaboradoIngrediente
	for _, l := range e.Lineas {
		if l.EsOrigen {
			out = append(out, l)
		}
	}
	return out
}

// LineasSalida returns the non-origin lines: inputs of a combine recipe,
// outputs of a split recipe.
func (e *Elaborado) LineasSalida() []ElaboradoIngrediente {
	var out []ElaboradoIngrediente
	for _, l := range e.Lineas {
		if !l.EsOrigen {
			out = append(out, l)
		}
	}
	return out
}

// LineasConsumo returns the lines a batch consumes: the inputs of a combine
// recipe, or the origin plus every output of a split recipe. The synthetic
// origin of a combine recipe is its own product and is never consumed.
func (e *Elaborado) LineasConsumo() []ElaboradoIngrediente {
	if e.EsEscandallo() {
		return e.Lineas
	}
	return e.LineasSalida()
}

// ElaboradoIngrediente is one recipe line. (elaborado_id, ingrediente_id) is unique.
type ElaboradoIngrediente struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ElaboradoID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_elaborado_ingrediente"`
	IngredienteID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_elaborado_ingrediente;index"`
	Cantidad      decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	UnidadID      *uuid.UUID      `gorm:"type:uuid"`
	EsOrigen      bool            `gorm:"not null;default:false"`

	Ingrediente *Ingrediente `gorm:"foreignKey:IngredienteID;constraint:OnDelete:RESTRICT"`
	Unidad      *Unidad      `gorm:"foreignKey:UnidadID;constraint:OnDelete:RESTRICT"`
}

func (ElaboradoIngrediente) TableName() string { return "elaborados_ingredientes" }

func (l *ElaboradoIngrediente) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
