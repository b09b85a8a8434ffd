package repository

import (
	"context"
	"strings"

	"trazabilidad/internal/dto"
	"trazabilidad/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngredienteRepository is the data access contract for ingredients and their
// allergen associations. It does not gate deletion: callers check
// ContarReferenciasTx first.
type IngredienteRepository interface {
	CreateTx(tx *gorm.DB, i *model.Ingrediente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ingrediente, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Ingrediente, error)
	FindByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Ingrediente, error)
	// ExisteNombreTx reports whether another ingredient already uses the
	// normalized name. excluir skips one id (the row being renamed).
	ExisteNombreTx(tx *gorm.DB, nombre string, excluir *uuid.UUID) (bool, error)
	List(ctx context.Context, filter dto.IngredienteFilter) ([]model.Ingrediente, int64, error)

	RenombrarTx(tx *gorm.DB, id uuid.UUID, nombre string) error
	UpdateConservacionTx(tx *gorm.DB, id uuid.UUID, conservacion string) error
	ReemplazarAlergenosTx(tx *gorm.DB, i *model.Ingrediente, alergenos []model.Alergeno) error
	// AlergenosUnionTx returns the distinct allergens carried by any of ids.
	AlergenosUnionTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Alergeno, error)

	// ContarReferenciasTx counts recipe lines pointing at the ingredient,
	// optionally ignoring the lines of one recipe.
	ContarReferenciasTx(tx *gorm.DB, id uuid.UUID, excluirElaborado *uuid.UUID) (int64, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	DB() *gorm.DB
}

type ingredienteRepo struct{ db *gorm.DB }

func NewIngredienteRepository(db *gorm.DB) IngredienteRepository {
	return &ingredienteRepo{db: db}
}

func (r *ingredienteRepo) DB() *gorm.DB { return r.db }

// CreateTx inserts the ingredient and its join rows; allergens themselves are
// catalog rows and are never upserted.
func (r *ingredienteRepo) CreateTx(tx *gorm.DB, i *model.Ingrediente) error {
	return tx.Omit("Alergenos.*").Create(i).Error
}

func (r *ingredienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Ingrediente, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *ingredienteRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Ingrediente, error) {
	var i model.Ingrediente
	err := tx.Preload("Alergenos", func(db *gorm.DB) *gorm.DB {
		return db.Order("allergens.nombre ASC")
	}).First(&i, "id = ?", id).Error
	return &i, err
}

func (r *ingredienteRepo) FindByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Ingrediente, error) {
	var list []model.Ingrediente
	if len(ids) == 0 {
		return list, nil
	}
	err := tx.Preload("Alergenos", func(db *gorm.DB) *gorm.DB {
		return db.Order("allergens.nombre ASC")
	}).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *ingredienteRepo) ExisteNombreTx(tx *gorm.DB, nombre string, excluir *uuid.UUID) (bool, error) {
	var n int64
	q := tx.Model(&model.Ingrediente{}).Where("nombre_clave = ?", model.ClaveNombre(nombre))
	if excluir != nil {
		q = q.Where("id <> ?", *excluir)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *ingredienteRepo) List(ctx context.Context, filter dto.IngredienteFilter) ([]model.Ingrediente, int64, error) {
	var list []model.Ingrediente
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Ingrediente{})

	if filter.Nombre != "" {
		// nombre_clave is already lower-cased, so LIKE works on both stores
		q = q.Where("nombre_clave LIKE ?", "%"+strings.ToLower(model.ClaveNombre(filter.Nombre))+"%")
	}
	switch filter.Derivados {
	case "true":
		q = q.Where("elaborado_origen_id IS NOT NULL")
	case "false":
		q = q.Where("elaborado_origen_id IS NULL")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Alergenos", func(db *gorm.DB) *gorm.DB {
		return db.Order("allergens.nombre ASC")
	}).Order("nombre_clave ASC").Limit(filter.Limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// RenombrarTx updates nombre and its normalized key together; a map update
// skips the BeforeSave hook.
func (r *ingredienteRepo) RenombrarTx(tx *gorm.DB, id uuid.UUID, nombre string) error {
	return tx.Model(&model.Ingrediente{}).Where("id = ?", id).Updates(map[string]interface{}{
		"nombre":       nombre,
		"nombre_clave": model.ClaveNombre(nombre),
	}).Error
}

func (r *ingredienteRepo) UpdateConservacionTx(tx *gorm.DB, id uuid.UUID, conservacion string) error {
	return tx.Model(&model.Ingrediente{}).Where("id = ?", id).Update("conservacion", conservacion).Error
}

func (r *ingredienteRepo) ReemplazarAlergenosTx(tx *gorm.DB, i *model.Ingrediente, alergenos []model.Alergeno) error {
	return tx.Model(i).Association("Alergenos").Replace(alergenos)
}

func (r *ingredienteRepo) AlergenosUnionTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Alergeno, error) {
	var list []model.Alergeno
	if len(ids) == 0 {
		return list, nil
	}
	err := tx.Table("allergens").
		Select("DISTINCT allergens.id, allergens.nombre").
		Joins("JOIN ingredients_allergens ia ON ia.alergeno_id = allergens.id").
		Where("ia.ingrediente_id IN ?", ids).
		Order("allergens.nombre ASC").
		Scan(&list).Error
	return list, err
}

func (r *ingredienteRepo) ContarReferenciasTx(tx *gorm.DB, id uuid.UUID, excluirElaborado *uuid.UUID) (int64, error) {
	var n int64
	q := tx.Model(&model.ElaboradoIngrediente{}).Where("ingrediente_id = ?", id)
	if excluirElaborado != nil {
		q = q.Where("elaborado_id <> ?", *excluirElaborado)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *ingredienteRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	i := model.Ingrediente{ID: id}
	if err := tx.Model(&i).Association("Alergenos").Clear(); err != nil {
		return err
	}
	return tx.Delete(&model.Ingrediente{}, "id = ?", id).Error
}
