package repository

import (
	"context"

	"trazabilidad/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogoRepository reads the seeded reference data (allergens, units) and
// manages recipe types.
type CatalogoRepository interface {
	ListAlergenos(ctx context.Context) ([]model.Alergeno, error)
	FindAlergenosByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Alergeno, error)

	ListUnidades(ctx context.Context) ([]model.Unidad, error)
	FindUnidadByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Unidad, error)
	// FindUnidadSinEspecificarTx returns the sentinel "unspecified" unit.
	FindUnidadSinEspecificarTx(tx *gorm.DB) (*model.Unidad, error)

	ListTipos(ctx context.Context) ([]model.TipoElaborado, error)
	FindTipoByID(ctx context.Context, id uuid.UUID) (*model.TipoElaborado, error)
	FindTipoByIDTx(tx *gorm.DB, id uuid.UUID) (*model.TipoElaborado, error)
	FindTipoByNombre(ctx context.Context, nombre string) (*model.TipoElaborado, error)
	CreateTipo(ctx context.Context, t *model.TipoElaborado) error

	DB() *gorm.DB
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) DB() *gorm.DB { return r.db }

func (r *catalogoRepo) ListAlergenos(ctx context.Context) ([]model.Alergeno, error) {
	var list []model.Alergeno
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&list).Error
	return list, err
}

func (r *catalogoRepo) FindAlergenosByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Alergeno, error) {
	var list []model.Alergeno
	if len(ids) == 0 {
		return list, nil
	}
	err := tx.Where("id IN ?", ids).Order("nombre ASC").Find(&list).Error
	return list, err
}

func (r *catalogoRepo) ListUnidades(ctx context.Context) ([]model.Unidad, error) {
	var list []model.Unidad
	err := r.db.WithContext(ctx).Order("sin_especificar ASC, nombre ASC").Find(&list).Error
	return list, err
}

func (r *catalogoRepo) FindUnidadByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Unidad, error) {
	var u model.Unidad
	err := tx.First(&u, "id = ?", id).Error
	return &u, err
}

func (r *catalogoRepo) FindUnidadSinEspecificarTx(tx *gorm.DB) (*model.Unidad, error) {
	var u model.Unidad
	err := tx.Where("sin_especificar = ?", true).First(&u).Error
	return &u, err
}

func (r *catalogoRepo) ListTipos(ctx context.Context) ([]model.TipoElaborado, error) {
	var list []model.TipoElaborado
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&list).Error
	return list, err
}

func (r *catalogoRepo) FindTipoByID(ctx context.Context, id uuid.UUID) (*model.TipoElaborado, error) {
	return r.FindTipoByIDTx(r.db.WithContext(ctx), id)
}

func (r *catalogoRepo) FindTipoByIDTx(tx *gorm.DB, id uuid.UUID) (*model.TipoElaborado, error) {
	var t model.TipoElaborado
	err := tx.First(&t, "id = ?", id).Error
	return &t, err
}

func (r *catalogoRepo) FindTipoByNombre(ctx context.Context, nombre string) (*model.TipoElaborado, error) {
	var t model.TipoElaborado
	err := r.db.WithContext(ctx).Where("LOWER(nombre) = LOWER(?)", nombre).First(&t).Error
	return &t, err
}

func (r *catalogoRepo) CreateTipo(ctx context.Context, t *model.TipoElaborado) error {
	return r.db.WithContext(ctx).Create(t).Error
}
