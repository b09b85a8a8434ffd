package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingrediente is either catalog reference data (ElaboradoOrigenID == nil) or a
// derived output created by a recipe (split portion or self-registered combine
// result). The owner reference only gates safe deletion; it never transfers
// ownership.
type Ingrediente struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre       string    `gorm:"not null"`
	NombreClave  string    `gorm:"uniqueIndex;not null"` // normalized Nombre, see ClaveNombre
	Conservacion string    `gorm:"type:text;not null;default:''"`
	// ElaboradoOrigenID is the recipe that created this ingredient, if any.
	ElaboradoOrigenID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Alergenos []Alergeno `gorm:"many2many:ingredients_allergens;"`
}

func (Ingrediente) TableName() string { return "ingredients" }

func (i *Ingrediente) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *Ingrediente) BeforeSave(_ *gorm.DB) error {
	i.NombreClave = ClaveNombre(i.Nombre)
	return nil
}

// EsDerivadoDe reports whether the ingredient was created by the given recipe.
func (i *Ingrediente) EsDerivadoDe(elaboradoID uuid.UUID) bool {
	return i.ElaboradoOrigenID != nil && *i.ElaboradoOrigenID == elaboradoID
}
