package service

import (
	"context"
	"errors"
	"strings"

	"trazabilidad/internal/apierror"
	"trazabilidad/internal/dto"
	"trazabilidad/internal/model"
	"trazabilidad/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogoService exposes the reference catalog. Allergens and units are
// read-only at runtime; recipe types can be added but never renamed.
type CatalogoService interface {
	ListarAlergenos(ctx context.Context) ([]dto.AlergenoResponse, error)
	ListarUnidades(ctx context.Context) ([]dto.UnidadResponse, error)
	ListarTipos(ctx context.Context) ([]dto.TipoResponse, error)
	CrearTipo(ctx context.Context, req dto.CrearTipoRequest) (*dto.TipoResponse, error)
	RenombrarTipo(ctx context.Context, id uuid.UUID, req dto.RenombrarTipoRequest) error
}

type catalogoService struct {
	repo repository.CatalogoRepository
}

func NewCatalogoService(repo repository.CatalogoRepository) CatalogoService {
	return &catalogoService{repo: repo}
}

func (s *catalogoService) ListarAlergenos(ctx context.Context) ([]dto.AlergenoResponse, error) {
	list, err := s.repo.ListAlergenos(ctx)
	if err != nil {
		return nil, fallo("listar alergenos", err)
	}
	return alergenosToResponse(list), nil
}

func (s *catalogoService) ListarUnidades(ctx context.Context) ([]dto.UnidadResponse, error) {
	list, err := s.repo.ListUnidades(ctx)
	if err != nil {
		return nil, fallo("listar unidades", err)
	}
	out := make([]dto.UnidadResponse, 0, len(list))
	for _, u := range list {
		out = append(out, dto.UnidadResponse{
			ID:             u.ID.String(),
			Nombre:         u.Nombre,
			Abreviatura:    u.Abreviatura,
			SinEspecificar: u.SinEspecificar,
		})
	}
	return out, nil
}

func (s *catalogoService) ListarTipos(ctx context.Context) ([]dto.TipoResponse, error) {
	list, err := s.repo.ListTipos(ctx)
	if err != nil {
		return nil, fallo("listar tipos", err)
	}
	out := make([]dto.TipoResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.TipoResponse{ID: t.ID.String(), Nombre: t.Nombre})
	}
	return out, nil
}

func (s *catalogoService) CrearTipo(ctx context.Context, req dto.CrearTipoRequest) (*dto.TipoResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, apierror.Validation("el tipo necesita un nombre").WithField("nombre", "required")
	}

	_, err := s.repo.FindTipoByNombre(ctx, nombre)
	if err == nil {
		return nil, apierror.Validationf("ya existe un tipo llamado %q", nombre).WithField("nombre", "unique")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fallo("crear tipo", err)
	}

	t := &model.TipoElaborado{Nombre: nombre}
	if err := s.repo.CreateTipo(ctx, t); err != nil {
		return nil, fallo("crear tipo", err)
	}
	return &dto.TipoResponse{ID: t.ID.String(), Nombre: t.Nombre}, nil
}

// RenombrarTipo always fails once the type exists: lots reference types by
// identity, so the label must never change under them.
func (s *catalogoService) RenombrarTipo(ctx context.Context, id uuid.UUID, _ dto.RenombrarTipoRequest) error {
	if _, err := s.repo.FindTipoByID(ctx, id); err != nil {
		return fallo("renombrar tipo", noEncontrado(err, "tipo de elaborado no encontrado"))
	}
	return apierror.Integrity("los tipos de elaborado no se pueden renombrar", id.String())
}

func alergenosToResponse(list []model.Alergeno) []dto.AlergenoResponse {
	out := make([]dto.AlergenoResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.AlergenoResponse{ID: a.ID.String(), Nombre: a.Nombre})
	}
	return out
}
