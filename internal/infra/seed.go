package infra

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"trazabilidad/internal/model"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed catalogo.yaml
var catalogoPorDefecto []byte

// Catalogo is the reference data every installation starts with.
type Catalogo struct {
	Alergenos []string         `yaml:"alergenos"`
	Unidades  []UnidadCatalogo `yaml:"unidades"`
	Tipos     []string         `yaml:"tipos"`
}

type UnidadCatalogo struct {
	Nombre         string `yaml:"nombre"`
	Abreviatura    string `yaml:"abreviatura"`
	SinEspecificar bool   `yaml:"sin_especificar"`
}

// CatalogoPorDefecto returns the embedded catalog (the 14 EU allergens,
// common units and recipe types).
func CatalogoPorDefecto() (*Catalogo, error) {
	return LeerCatalogo(bytes.NewReader(catalogoPorDefecto))
}

// LeerCatalogo parses a YAML catalog. Unknown keys are rejected so a typo
// does not silently drop a section.
func LeerCatalogo(r io.Reader) (*Catalogo, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalogo
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalogo: documento vacío")
		}
		return nil, fmt.Errorf("catalogo: %w", err)
	}
	if err := c.validar(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalogo) validar() error {
	sentinelas := 0
	for i, u := range c.Unidades {
		if strings.TrimSpace(u.Nombre) == "" || strings.TrimSpace(u.Abreviatura) == "" {
			return fmt.Errorf("catalogo: unidad %d sin nombre o abreviatura", i+1)
		}
		if u.SinEspecificar {
			sentinelas++
		}
	}
	if sentinelas > 1 {
		return fmt.Errorf("catalogo: %d unidades marcadas sin_especificar, máximo una", sentinelas)
	}
	for _, n := range append(append([]string{}, c.Alergenos...), c.Tipos...) {
		if strings.TrimSpace(n) == "" {
			return errors.New("catalogo: nombre vacío")
		}
	}
	return nil
}

// SeedCatalogo inserts the embedded reference catalog.
func SeedCatalogo(db *gorm.DB) error {
	c, err := CatalogoPorDefecto()
	if err != nil {
		return err
	}
	return CargarCatalogo(db, c)
}

// CargarCatalogo inserts c into db.
// Idempotent: existing rows are matched by their unique column and left alone.
func CargarCatalogo(db *gorm.DB, c *Catalogo) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, nombre := range c.Alergenos {
			if err := firstOrCreate(tx, &model.Alergeno{}, "nombre = ?", nombre, &model.Alergeno{Nombre: nombre}); err != nil {
				return err
			}
		}

		for _, uc := range c.Unidades {
			u := model.Unidad{Nombre: uc.Nombre, Abreviatura: uc.Abreviatura, SinEspecificar: uc.SinEspecificar}
			if err := firstOrCreate(tx, &model.Unidad{}, "abreviatura = ?", u.Abreviatura, &u); err != nil {
				return err
			}
		}

		for _, nombre := range c.Tipos {
			if err := firstOrCreate(tx, &model.TipoElaborado{}, "nombre = ?", nombre, &model.TipoElaborado{Nombre: nombre}); err != nil {
				return err
			}
		}
		return nil
	})
}

func firstOrCreate(tx *gorm.DB, existente any, where string, arg any, row any) error {
	err := tx.Where(where, arg).First(existente).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(row).Error
}
