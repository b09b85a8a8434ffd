package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Alergeno is one of the 14 EU-mandated allergens. Seeded, never edited at runtime.
type Alergeno struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre string    `gorm:"uniqueIndex;not null"`
}

func (Alergeno) TableName() string { return "allergens" }

func (a *Alergeno) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Unidad is a unit of measure. SinEspecificar marks the sentinel used when a
// recipe line's quantity is intentionally unmeasured.
type Unidad struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre         string    `gorm:"not null"`
	Abreviatura    string    `gorm:"uniqueIndex;not null"`
	SinEspecificar bool      `gorm:"not null;default:false"`
}

func (Unidad) TableName() string { return "units" }

func (u *Unidad) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TipoElaborado classifies recipes ("Receta", "Escandallo", "Envasado", ...).
// Names are rename-protected: historical lots reference the type by identity.
type TipoElaborado struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre string    `gorm:"uniqueIndex;not null"`
}

func (TipoElaborado) TableName() string { return "recipe_types" }

func (t *TipoElaborado) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
