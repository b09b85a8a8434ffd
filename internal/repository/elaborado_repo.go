package repository

import (
	"context"

	"trazabilidad/internal/dto"
	"trazabilidad/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ElaboradoRepository is the data access contract for recipes and their lines.
// Every mutation takes the caller's transaction.
type ElaboradoRepository interface {
	CreateTx(tx *gorm.DB, e *model.Elaborado) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Elaborado, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Elaborado, error)
	List(ctx context.Context, filter dto.ElaboradoFilter) ([]model.Elaborado, int64, error)

	// ActualizarConVersionTx writes the header fields and bumps the version
	// only if the stored version still equals version. Returns false when stale.
	ActualizarConVersionTx(tx *gorm.DB, e *model.Elaborado, version int) (bool, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	CreateLineaTx(tx *gorm.DB, l *model.ElaboradoIngrediente) error
	UpdateLineaTx(tx *gorm.DB, id uuid.UUID, cantidad decimal.Decimal, unidadID *uuid.UUID) error
	DeleteLineaTx(tx *gorm.DB, id uuid.UUID) error
	DeleteLineasTx(tx *gorm.DB, elaboradoID uuid.UUID) error
	ContarLineasOrigenTx(tx *gorm.DB, elaboradoID uuid.UUID) (int64, error)

	DB() *gorm.DB
}

type elaboradoRepo struct{ db *gorm.DB }

func NewElaboradoRepository(db *gorm.DB) ElaboradoRepository { return &elaboradoRepo{db: db} }

func (r *elaboradoRepo) DB() *gorm.DB { return r.db }

// CreateTx inserts the recipe row only; lines are inserted one by one so the
// origin line can be written after its ingredient exists.
func (r *elaboradoRepo) CreateTx(tx *gorm.DB, e *model.Elaborado) error {
	return tx.Omit(clause.Associations).Create(e).Error
}

func (r *elaboradoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Elaborado, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *elaboradoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Elaborado, error) {
	var e model.Elaborado
	err := preloadElaborado(tx).First(&e, "id = ?", id).Error
	return &e, err
}

func preloadElaborado(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Tipo").
		Preload("Lineas", func(db *gorm.DB) *gorm.DB {
			return db.Order("es_origen DESC, cantidad DESC")
		}).
		Preload("Lineas.Unidad").
		Preload("Lineas.Ingrediente").
		Preload("Lineas.Ingrediente.Alergenos", func(db *gorm.DB) *gorm.DB {
			return db.Order("allergens.nombre ASC")
		})
}

func (r *elaboradoRepo) List(ctx context.Context, filter dto.ElaboradoFilter) ([]model.Elaborado, int64, error) {
	var list []model.Elaborado
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Elaborado{})

	if filter.Nombre != "" {
		q = q.Where("LOWER(nombre) LIKE ?", "%"+model.ClaveNombre(filter.Nombre)+"%")
	}
	if filter.TipoID != "" {
		q = q.Where("tipo_id = ?", filter.TipoID)
	}
	if filter.Forma != "" {
		q = q.Where("forma = ?", filter.Forma)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := preloadElaborado(q).Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *elaboradoRepo) ActualizarConVersionTx(tx *gorm.DB, e *model.Elaborado, version int) (bool, error) {
	res := tx.Model(&model.Elaborado{}).
		Where("id = ? AND version = ?", e.ID, version).
		Updates(map[string]interface{}{
			"descripcion":       e.Descripcion,
			"peso_obtenido":     e.PesoObtenido,
			"dias_conservacion": e.DiasConservacion,
			"version":           gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *elaboradoRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Elaborado{}, "id = ?", id).Error
}

func (r *elaboradoRepo) CreateLineaTx(tx *gorm.DB, l *model.ElaboradoIngrediente) error {
	return tx.Omit(clause.Associations).Create(l).Error
}

func (r *elaboradoRepo) UpdateLineaTx(tx *gorm.DB, id uuid.UUID, cantidad decimal.Decimal, unidadID *uuid.UUID) error {
	return tx.Model(&model.ElaboradoIngrediente{}).Where("id = ?", id).Updates(map[string]interface{}{
		"cantidad":  cantidad,
		"unidad_id": unidadID,
	}).Error
}

func (r *elaboradoRepo) DeleteLineaTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.ElaboradoIngrediente{}, "id = ?", id).Error
}

func (r *elaboradoRepo) DeleteLineasTx(tx *gorm.DB, elaboradoID uuid.UUID) error {
	return tx.Where("elaborado_id = ?", elaboradoID).Delete(&model.ElaboradoIngrediente{}).Error
}

func (r *elaboradoRepo) ContarLineasOrigenTx(tx *gorm.DB, elaboradoID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.ElaboradoIngrediente{}).
		Where("elaborado_id = ? AND es_origen = ?", elaboradoID, true).
		Count(&n).Error
	return n, err
}
