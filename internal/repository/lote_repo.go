package repository

import (
	"context"

	"trazabilidad/internal/dto"
	"trazabilidad/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LoteRepository is the data access contract for production batches, their
// consumption lines and closures.
type LoteRepository interface {
	// SiguienteNumeroTx returns MAX(numero)+1 scoped to one recipe.
	SiguienteNumeroTx(tx *gorm.DB, elaboradoID uuid.UUID) (int, error)
	// CreateTx inserts the lot and its lines.
	CreateTx(tx *gorm.DB, l *model.Lote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Lote, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Lote, error)
	List(ctx context.Context, filter dto.LoteFilter) ([]model.Lote, int64, error)
	UpdateTemperaturasTx(tx *gorm.DB, id uuid.UUID, inicio, fin *decimal.Decimal) error
	ContarPorElaboradoTx(tx *gorm.DB, elaboradoID uuid.UUID) (int64, error)

	CreateCierreTx(tx *gorm.DB, c *model.LoteCierre) error
	TieneCierreFinalTx(tx *gorm.DB, loteID uuid.UUID) (bool, error)

	DB() *gorm.DB
}

type loteRepo struct{ db *gorm.DB }

func NewLoteRepository(db *gorm.DB) LoteRepository { return &loteRepo{db: db} }

func (r *loteRepo) DB() *gorm.DB { return r.db }

func (r *loteRepo) SiguienteNumeroTx(tx *gorm.DB, elaboradoID uuid.UUID) (int, error) {
	var max int
	err := tx.Model(&model.Lote{}).
		Where("elaborado_id = ?", elaboradoID).
		Select("COALESCE(MAX(numero), 0)").
		Scan(&max).Error
	return max + 1, err
}

func (r *loteRepo) CreateTx(tx *gorm.DB, l *model.Lote) error {
	return tx.Omit("Elaborado", "UnidadPeso", "Lineas.Ingrediente", "Cierres").Create(l).Error
}

func (r *loteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Lote, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *loteRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Lote, error) {
	var l model.Lote
	err := preloadLote(tx).First(&l, "id = ?", id).Error
	return &l, err
}

func preloadLote(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Elaborado").
		Preload("UnidadPeso").
		Preload("Lineas", func(db *gorm.DB) *gorm.DB {
			return db.Order("es_origen DESC, peso DESC, ingrediente_resultante ASC")
		}).
		Preload("Cierres", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (r *loteRepo) List(ctx context.Context, filter dto.LoteFilter) ([]model.Lote, int64, error) {
	var list []model.Lote
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Lote{})
	if filter.ElaboradoID != "" {
		q = q.Where("elaborado_id = ?", filter.ElaboradoID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := preloadLote(q).
		Order("fecha_produccion DESC, numero DESC").
		Limit(filter.Limit).Offset(offset).
		Find(&list).Error
	return list, total, err
}

func (r *loteRepo) UpdateTemperaturasTx(tx *gorm.DB, id uuid.UUID, inicio, fin *decimal.Decimal) error {
	return tx.Model(&model.Lote{}).Where("id = ?", id).Updates(map[string]interface{}{
		"temp_inicio": inicio,
		"temp_fin":    fin,
	}).Error
}

func (r *loteRepo) ContarPorElaboradoTx(tx *gorm.DB, elaboradoID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.Lote{}).Where("elaborado_id = ?", elaboradoID).Count(&n).Error
	return n, err
}

func (r *loteRepo) CreateCierreTx(tx *gorm.DB, c *model.LoteCierre) error {
	return tx.Create(c).Error
}

func (r *loteRepo) TieneCierreFinalTx(tx *gorm.DB, loteID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.LoteCierre{}).
		Where("lote_id = ? AND modo = ?", loteID, model.CierreFinal).
		Count(&n).Error
	return n > 0, err
}
