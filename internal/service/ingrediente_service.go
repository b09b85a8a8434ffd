package service

import (
	"context"
	"errors"
	"strings"

	"trazabilidad/internal/apierror"
	"trazabilidad/internal/dto"
	"trazabilidad/internal/infra"
	"trazabilidad/internal/model"
	"trazabilidad/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// IngredienteService manages catalog ingredients and their allergens.
type IngredienteService interface {
	Crear(ctx context.Context, req dto.CrearIngredienteRequest) (*dto.IngredienteResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarIngredienteRequest) (*dto.IngredienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.IngredienteResponse, error)
	Listar(ctx context.Context, filter dto.IngredienteFilter) (*dto.IngredienteListResponse, error)
	// Eliminar refuses while any recipe line references the ingredient.
	Eliminar(ctx context.Context, id uuid.UUID) error
	// AlergenosDe is the union of allergens over ids, deduplicated, by name.
	AlergenosDe(ctx context.Context, ids []uuid.UUID) ([]dto.AlergenoResponse, error)
}

type ingredienteService struct {
	repo     repository.IngredienteRepository
	catalogo repository.CatalogoRepository
	cache    *infra.EtiquetaCache
}

func NewIngredienteService(repo repository.IngredienteRepository, catalogo repository.CatalogoRepository, cache *infra.EtiquetaCache) IngredienteService {
	return &ingredienteService{repo: repo, catalogo: catalogo, cache: cache}
}

func (s *ingredienteService) Crear(ctx context.Context, req dto.CrearIngredienteRequest) (*dto.IngredienteResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, apierror.Validation("el ingrediente necesita un nombre").WithField("nombre", "required")
	}
	alergenoIDs, err := parseIDs("alergeno_ids", req.AlergenoIDs)
	if err != nil {
		return nil, err
	}

	var ing model.Ingrediente
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := nombreLibre(tx, s.repo, nombre, nil); err != nil {
			return err
		}
		alergenos, err := s.resolverAlergenos(tx, alergenoIDs)
		if err != nil {
			return err
		}
		ing = model.Ingrediente{
			Nombre:       nombre,
			Conservacion: strings.TrimSpace(req.Conservacion),
			Alergenos:    alergenos,
		}
		return s.repo.CreateTx(tx, &ing)
	})
	if err != nil {
		return nil, fallo("crear ingrediente", traducirDuplicado(err, nombre))
	}
	return ingredienteToResponse(&ing), nil
}

func (s *ingredienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarIngredienteRequest) (*dto.IngredienteResponse, error) {
	var nombre string
	if req.Nombre != nil {
		nombre = strings.TrimSpace(*req.Nombre)
		if nombre == "" {
			return nil, apierror.Validation("el ingrediente necesita un nombre").WithField("nombre", "required")
		}
	}
	var alergenoIDs []uuid.UUID
	if req.AlergenoIDs != nil {
		ids, err := parseIDs("alergeno_ids", *req.AlergenoIDs)
		if err != nil {
			return nil, err
		}
		alergenoIDs = ids
	}

	var ing *model.Ingrediente
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		actual, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return noEncontrado(err, "ingrediente no encontrado")
		}
		if nombre != "" && nombre != actual.Nombre {
			if err := nombreLibre(tx, s.repo, nombre, &id); err != nil {
				return err
			}
			if err := s.repo.RenombrarTx(tx, id, nombre); err != nil {
				return err
			}
		}
		if req.Conservacion != nil {
			if err := s.repo.UpdateConservacionTx(tx, id, strings.TrimSpace(*req.Conservacion)); err != nil {
				return err
			}
		}
		if req.AlergenoIDs != nil {
			alergenos, err := s.resolverAlergenos(tx, alergenoIDs)
			if err != nil {
				return err
			}
			if err := s.repo.ReemplazarAlergenosTx(tx, actual, alergenos); err != nil {
				return err
			}
		}
		ing, err = s.repo.FindByIDTx(tx, id)
		return err
	})
	if err != nil {
		return nil, fallo("actualizar ingrediente", traducirDuplicado(err, nombre))
	}
	invalidarEtiquetas(ctx, s.cache)
	return ingredienteToResponse(ing), nil
}

func (s *ingredienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.IngredienteResponse, error) {
	ing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fallo("obtener ingrediente", noEncontrado(err, "ingrediente no encontrado"))
	}
	return ingredienteToResponse(ing), nil
}

func (s *ingredienteService) Listar(ctx context.Context, filter dto.IngredienteFilter) (*dto.IngredienteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fallo("listar ingredientes", err)
	}
	data := make([]dto.IngredienteResponse, 0, len(list))
	for i := range list {
		data = append(data, *ingredienteToResponse(&list[i]))
	}
	return &dto.IngredienteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *ingredienteService) Eliminar(ctx context.Context, id uuid.UUID) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.repo.FindByIDTx(tx, id); err != nil {
			return noEncontrado(err, "ingrediente no encontrado")
		}
		n, err := s.repo.ContarReferenciasTx(tx, id, nil)
		if err != nil {
			return err
		}
		if n > 0 {
			return apierror.Integrity("el ingrediente está en uso por uno o más elaborados", id.String())
		}
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return fallo("eliminar ingrediente", err)
	}
	invalidarEtiquetas(ctx, s.cache)
	return nil
}

func (s *ingredienteService) AlergenosDe(ctx context.Context, ids []uuid.UUID) ([]dto.AlergenoResponse, error) {
	list, err := s.repo.AlergenosUnionTx(s.repo.DB().WithContext(ctx), ids)
	if err != nil {
		return nil, fallo("alergenos de ingredientes", err)
	}
	return alergenosToResponse(list), nil
}

// resolverAlergenos loads the allergens by id; every id must exist.
func (s *ingredienteService) resolverAlergenos(tx *gorm.DB, ids []uuid.UUID) ([]model.Alergeno, error) {
	list, err := s.catalogo.FindAlergenosByIDsTx(tx, ids)
	if err != nil {
		return nil, err
	}
	if len(list) != len(ids) {
		return nil, apierror.Validation("uno o más alérgenos no existen").WithField("alergeno_ids", "exists")
	}
	return list, nil
}

// nombreLibre fails with a ValidationError if the normalized name is taken.
func nombreLibre(tx *gorm.DB, repo repository.IngredienteRepository, nombre string, excluir *uuid.UUID) error {
	existe, err := repo.ExisteNombreTx(tx, nombre, excluir)
	if err != nil {
		return err
	}
	if existe {
		return apierror.Validationf("ya existe un ingrediente llamado %q", nombre).WithField("nombre", "unique")
	}
	return nil
}

// traducirDuplicado covers the race where two writers pass nombreLibre with
// the same name; the unique index on nombre_clave rejects the second one.
func traducirDuplicado(err error, nombre string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierror.Validationf("ya existe un ingrediente llamado %q", nombre).WithField("nombre", "unique")
	}
	return err
}

// parseIDs parses and deduplicates a list of ids.
func parseIDs(campo string, valores []string) ([]uuid.UUID, error) {
	vistos := make(map[uuid.UUID]bool, len(valores))
	out := make([]uuid.UUID, 0, len(valores))
	for _, v := range valores {
		id, err := parseID(campo, v)
		if err != nil {
			return nil, err
		}
		if !vistos[id] {
			vistos[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

func invalidarEtiquetas(ctx context.Context, cache *infra.EtiquetaCache) {
	if err := cache.Invalidar(ctx); err != nil {
		log.Warn().Err(err).Msg("etiqueta_cache: no se pudo invalidar")
	}
}

func ingredienteToResponse(i *model.Ingrediente) *dto.IngredienteResponse {
	return &dto.IngredienteResponse{
		ID:                i.ID.String(),
		Nombre:            i.Nombre,
		Conservacion:      i.Conservacion,
		Alergenos:         alergenosToResponse(i.Alergenos),
		ElaboradoOrigenID: strPtr(i.ElaboradoOrigenID),
	}
}
