package service

import (
	"context"
	"errors"
	"strings"

	"trazabilidad/internal/apierror"
	"trazabilidad/internal/dto"
	"trazabilidad/internal/graph"
	"trazabilidad/internal/infra"
	"trazabilidad/internal/model"
	"trazabilidad/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const formatoEtiqueta = "02/01/2006"

// EtiquetaService projects a lot into its printable label. Read only.
type EtiquetaService interface {
	Aplanar(ctx context.Context, loteID uuid.UUID) (*dto.EtiquetaResponse, error)
	PDF(ctx context.Context, loteID uuid.UUID) ([]byte, error)
	Texto(ctx context.Context, loteID uuid.UUID) (string, error)
}

type etiquetaService struct {
	lotes          repository.LoteRepository
	cache          *infra.EtiquetaCache
	maxProfundidad int
	empresa        string
}

func NewEtiquetaService(lotes repository.LoteRepository, cache *infra.EtiquetaCache, maxProfundidad int, empresa string) EtiquetaService {
	return &etiquetaService{lotes: lotes, cache: cache, maxProfundidad: maxProfundidad, empresa: empresa}
}

// Aplanar lists the lot's ingredients heaviest first, marks allergen carriers
// with "*" and expands every ingredient produced by another recipe in
// parentheses, recursively. Allergens are the union over all levels.
func (s *etiquetaService) Aplanar(ctx context.Context, loteID uuid.UUID) (*dto.EtiquetaResponse, error) {
	gen, usarCache := s.cache.Generacion(ctx)
	var cached dto.EtiquetaResponse
	if usarCache && s.cache.Get(ctx, loteID, gen, &cached) {
		return &cached, nil
	}

	var resp *dto.EtiquetaResponse
	err := runTx(ctx, s.lotes.DB(), func(tx *gorm.DB) error {
		l, err := s.lotes.FindByIDTx(tx, loteID)
		if err != nil {
			return noEncontrado(err, "lote no encontrado")
		}

		g := graph.New(repository.NewGrafoFuente(tx), s.maxProfundidad)
		nodos := make([]*graph.Nodo, 0, len(l.Lineas))
		for _, li := range l.Lineas {
			if li.EsOrigen {
				continue
			}
			var nodo *graph.Nodo
			if li.IngredienteID != nil {
				n, err := g.Expandir(ctx, *li.IngredienteID)
				if err != nil {
					return errorGrafo(err)
				}
				nodo = n
			}
			if nodo == nil {
				nodo = &graph.Nodo{}
			}
			// the label keeps the name and allergens recorded at production time
			top := *nodo
			top.Nombre = li.IngredienteResultante
			if li.Alergenos != nil {
				top.Alergenos = alergenosGrafo(li.Alergenos)
			}
			nodos = append(nodos, &top)
		}

		resp = &dto.EtiquetaResponse{
			LoteID:          l.ID.String(),
			Codigo:          CodigoLote(l),
			Ingredientes:    make([]string, 0, len(nodos)),
			Alergenos:       []string{},
			FechaProduccion: l.FechaProduccion.Format(formatoEtiqueta),
			PesoTotal:       l.PesoTotal,
		}
		if l.Elaborado != nil {
			resp.Elaborado = l.Elaborado.Nombre
			resp.Conservacion = l.Elaborado.Descripcion
		}
		if l.FechaCaducidad != nil {
			resp.FechaCaducidad = l.FechaCaducidad.Format(formatoEtiqueta)
		}
		if l.UnidadPeso != nil {
			resp.UnidadPeso = l.UnidadPeso.Abreviatura
		}
		for _, n := range nodos {
			resp.Ingredientes = append(resp.Ingredientes, n.Texto())
		}
		if len(resp.Ingredientes) > 0 {
			resp.Texto = strings.Join(resp.Ingredientes, ", ") + "."
		}
		for _, a := range graph.AlergenosDe(nodos) {
			resp.Alergenos = append(resp.Alergenos, a.Nombre)
		}
		return nil
	})
	if err != nil {
		return nil, fallo("aplanar etiqueta", err)
	}

	if usarCache {
		s.cache.Set(ctx, loteID, gen, resp)
	}
	return resp, nil
}

func (s *etiquetaService) PDF(ctx context.Context, loteID uuid.UUID) ([]byte, error) {
	e, err := s.Aplanar(ctx, loteID)
	if err != nil {
		return nil, err
	}
	b, err := infra.GenerateEtiquetaPDF(e, s.empresa)
	if err != nil {
		return nil, fallo("generar etiqueta pdf", err)
	}
	return b, nil
}

func (s *etiquetaService) Texto(ctx context.Context, loteID uuid.UUID) (string, error) {
	e, err := s.Aplanar(ctx, loteID)
	if err != nil {
		return "", err
	}
	return infra.EtiquetaTexto(e, s.empresa), nil
}

func alergenosGrafo(as []model.AlergenoLote) []graph.Alergeno {
	out := make([]graph.Alergeno, 0, len(as))
	for _, a := range as {
		out = append(out, graph.Alergeno{ID: a.ID, Nombre: a.Nombre})
	}
	return out
}

func errorGrafo(err error) error {
	var ciclo *graph.CicloError
	if errors.As(err, &ciclo) {
		return apierror.Integrity("la composición del elaborado contiene un ciclo", idsString(ciclo.Ruta)...)
	}
	if errors.Is(err, graph.ErrProfundidad) {
		return apierror.Integrity("la composición del elaborado supera la profundidad máxima de anidamiento")
	}
	return err
}
