package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"trazabilidad/internal/apierror"
	"trazabilidad/internal/dto"
	"trazabilidad/internal/infra"
	"trazabilidad/internal/model"
	"trazabilidad/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ElaboradoService owns recipes, their lines and the ingredients recipes
// create as outputs.
type ElaboradoService interface {
	CrearCombinado(ctx context.Context, req dto.CrearCombinadoRequest) (*dto.ElaboradoResponse, error)
	CrearEscandallo(ctx context.Context, req dto.CrearEscandalloRequest) (*dto.ElaboradoResponse, error)
	ActualizarEscandallo(ctx context.Context, id uuid.UUID, req dto.ActualizarEscandalloRequest) (*dto.ElaboradoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ElaboradoResponse, error)
	Listar(ctx context.Context, filter dto.ElaboradoFilter) (*dto.ElaboradoListResponse, error)
}

type elaboradoService struct {
	repo         repository.ElaboradoRepository
	ingredientes repository.IngredienteRepository
	catalogo     repository.CatalogoRepository
	lotes        repository.LoteRepository
	cache        *infra.EtiquetaCache
}

func NewElaboradoService(
	repo repository.ElaboradoRepository,
	ingredientes repository.IngredienteRepository,
	catalogo repository.CatalogoRepository,
	lotes repository.LoteRepository,
	cache *infra.EtiquetaCache,
) ElaboradoService {
	return &elaboradoService{
		repo:         repo,
		ingredientes: ingredientes,
		catalogo:     catalogo,
		lotes:        lotes,
		cache:        cache,
	}
}

// ── CrearCombinado ────────────────────────────────────────────────────────────
// N inputs -> one output. With RegistrarIngrediente the output also becomes an
// ingredient carrying the union of the inputs' allergens, linked back through
// a synthetic origin line of quantity 0.

func (s *elaboradoService) CrearCombinado(ctx context.Context, req dto.CrearCombinadoRequest) (*dto.ElaboradoResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, apierror.Validation("el elaborado necesita un nombre").WithField("nombre", "required")
	}
	if len(req.Lineas) == 0 {
		return nil, apierror.Validation("el elaborado necesita al menos un ingrediente").WithField("lineas", "required")
	}
	if req.PesoObtenido.IsNegative() {
		return nil, apierror.Validation("el peso obtenido no puede ser negativo").WithField("peso_obtenido", "min")
	}
	if req.DiasConservacion < 0 {
		return nil, apierror.Validation("los días de conservación no pueden ser negativos").WithField("dias_conservacion", "min")
	}
	tipoID, err := parseIDOpcional("tipo_id", req.TipoID)
	if err != nil {
		return nil, err
	}

	type lineaPlan struct {
		ingredienteID uuid.UUID
		cantidad      decimal.Decimal
		unidadID      *uuid.UUID
	}
	plan := make([]lineaPlan, 0, len(req.Lineas))
	vistos := make(map[uuid.UUID]bool, len(req.Lineas))
	for i, l := range req.Lineas {
		id, err := parseID("ingrediente_id", l.IngredienteID)
		if err != nil {
			return nil, err
		}
		if vistos[id] {
			return nil, apierror.Validationf("el ingrediente de la línea %d está repetido", i+1).WithField("lineas", "unique")
		}
		vistos[id] = true
		if l.Cantidad.IsNegative() {
			return nil, apierror.Validationf("la cantidad de la línea %d no puede ser negativa", i+1).WithField("cantidad", "min")
		}
		unidadID, err := parseIDOpcional("unidad_id", l.UnidadID)
		if err != nil {
			return nil, err
		}
		plan = append(plan, lineaPlan{ingredienteID: id, cantidad: l.Cantidad, unidadID: unidadID})
	}

	var e model.Elaborado
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.verificarTipo(tx, tipoID); err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(plan))
		for i, p := range plan {
			ids[i] = p.ingredienteID
		}
		if err := s.verificarIngredientes(tx, ids); err != nil {
			return err
		}
		sinUnidad, err := s.unidadSinEspecificar(tx)
		if err != nil {
			return err
		}

		e = model.Elaborado{
			Nombre:           nombre,
			Descripcion:      strings.TrimSpace(req.Descripcion),
			PesoObtenido:     req.PesoObtenido,
			DiasConservacion: req.DiasConservacion,
			TipoID:           tipoID,
			Forma:            model.FormaCombinar,
			Version:          1,
		}
		if err := s.repo.CreateTx(tx, &e); err != nil {
			return err
		}

		for _, p := range plan {
			unidadID, err := s.resolverUnidad(tx, p.unidadID, sinUnidad)
			if err != nil {
				return err
			}
			linea := &model.ElaboradoIngrediente{
				ElaboradoID:   e.ID,
				IngredienteID: p.ingredienteID,
				Cantidad:      p.cantidad,
				UnidadID:      unidadID,
			}
			if err := s.repo.CreateLineaTx(tx, linea); err != nil {
				return err
			}
		}

		if !req.RegistrarIngrediente {
			return nil
		}
		if err := nombreLibre(tx, s.ingredientes, nombre, nil); err != nil {
			return err
		}
		alergenos, err := s.ingredientes.AlergenosUnionTx(tx, ids)
		if err != nil {
			return err
		}
		producido := &model.Ingrediente{
			Nombre:            nombre,
			Conservacion:      e.Descripcion,
			ElaboradoOrigenID: &e.ID,
			Alergenos:         alergenos,
		}
		if err := s.ingredientes.CreateTx(tx, producido); err != nil {
			return err
		}
		return s.repo.CreateLineaTx(tx, &model.ElaboradoIngrediente{
			ElaboradoID:   e.ID,
			IngredienteID: producido.ID,
			Cantidad:      decimal.Zero,
			UnidadID:      sinUnidad,
			EsOrigen:      true,
		})
	})
	if err != nil {
		return nil, fallo("crear elaborado combinado", traducirDuplicado(err, nombre))
	}
	invalidarEtiquetas(ctx, s.cache)
	return s.ObtenerPorID(ctx, e.ID)
}

// ── CrearEscandallo ───────────────────────────────────────────────────────────
// One origin portioned into N outputs. The origin's care text and allergen
// set are read once and copied by value into every new output.

func (s *elaboradoService) CrearEscandallo(ctx context.Context, req dto.CrearEscandalloRequest) (*dto.ElaboradoResponse, error) {
	origenID, err := parseID("origen_id", req.OrigenID)
	if err != nil {
		return nil, err
	}
	if !req.PesoInicial.IsPositive() {
		return nil, apierror.Validation("el peso inicial debe ser mayor que cero").WithField("peso_inicial", "gt")
	}
	if req.DiasConservacion < 0 {
		return nil, apierror.Validation("los días de conservación no pueden ser negativos").WithField("dias_conservacion", "min")
	}
	if len(req.Salidas) == 0 {
		return nil, apierror.Validation("el escandallo necesita al menos una salida").WithField("salidas", "required")
	}
	if err := validarSalidas(req.Salidas); err != nil {
		return nil, err
	}
	tipoID, err := parseIDOpcional("tipo_id", req.TipoID)
	if err != nil {
		return nil, err
	}
	unidadReq, err := parseIDOpcional("unidad_id", req.UnidadID)
	if err != nil {
		return nil, err
	}

	var e model.Elaborado
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		origen, err := s.ingredientes.FindByIDTx(tx, origenID)
		if err != nil {
			return noEncontrado(err, "ingrediente de origen no encontrado")
		}
		if err := s.verificarTipo(tx, tipoID); err != nil {
			return err
		}
		sinUnidad, err := s.unidadSinEspecificar(tx)
		if err != nil {
			return err
		}
		unidadID, err := s.resolverUnidad(tx, unidadReq, sinUnidad)
		if err != nil {
			return err
		}

		nombre := strings.TrimSpace(req.Nombre)
		if nombre == "" {
			nombre = "Escandallo " + origen.Nombre
		}
		e = model.Elaborado{
			Nombre:           nombre,
			Descripcion:      strings.TrimSpace(req.Descripcion),
			PesoObtenido:     req.PesoInicial,
			DiasConservacion: req.DiasConservacion,
			TipoID:           tipoID,
			Forma:            model.FormaEscandallo,
			Version:          1,
		}
		if err := s.repo.CreateTx(tx, &e); err != nil {
			return err
		}
		if err := s.repo.CreateLineaTx(tx, &model.ElaboradoIngrediente{
			ElaboradoID:   e.ID,
			IngredienteID: origen.ID,
			Cantidad:      req.PesoInicial,
			UnidadID:      unidadID,
			EsOrigen:      true,
		}); err != nil {
			return err
		}

		herencia := heredar(origen)
		for _, sal := range req.Salidas {
			salUnidad, err := parseIDOpcional("unidad_id", sal.UnidadID)
			if err != nil {
				return err
			}
			if salUnidad == nil {
				salUnidad = unidadID
			} else if salUnidad, err = s.resolverUnidad(tx, salUnidad, sinUnidad); err != nil {
				return err
			}
			if err := s.crearSalida(tx, &e, herencia, sal, salUnidad); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fallo("crear escandallo", err)
	}
	invalidarEtiquetas(ctx, s.cache)
	return s.ObtenerPorID(ctx, e.ID)
}

// ── ActualizarEscandallo ──────────────────────────────────────────────────────
// Submitted outputs with an id update an existing output; outputs without id
// are created; existing outputs missing from the submission are removed, and
// their ingredient deleted only if this recipe created it and nothing else
// references it. Removals run first so a replacement may reuse a name.

func (s *elaboradoService) ActualizarEscandallo(ctx context.Context, id uuid.UUID, req dto.ActualizarEscandalloRequest) (*dto.ElaboradoResponse, error) {
	if req.Version < 1 {
		return nil, apierror.Validation("falta la versión del elaborado").WithField("version", "required")
	}
	if !req.PesoInicial.IsPositive() {
		return nil, apierror.Validation("el peso inicial debe ser mayor que cero").WithField("peso_inicial", "gt")
	}
	if req.DiasConservacion < 0 {
		return nil, apierror.Validation("los días de conservación no pueden ser negativos").WithField("dias_conservacion", "min")
	}
	if err := validarSalidas(req.Salidas); err != nil {
		return nil, err
	}
	algunaPositiva := false
	for _, sal := range req.Salidas {
		if sal.Cantidad.IsPositive() {
			algunaPositiva = true
			break
		}
	}
	if !algunaPositiva {
		return nil, apierror.Validation("el escandallo debe producir al menos una salida con cantidad").WithField("salidas", "gt")
	}
	origenReq, err := parseIDOpcional("origen_id", req.OrigenID)
	if err != nil {
		return nil, err
	}

	// Submitted ids, parsed up front.
	salidaIDs := make([]*uuid.UUID, len(req.Salidas))
	vistos := make(map[uuid.UUID]bool)
	for i, sal := range req.Salidas {
		sid, err := parseIDOpcional("salidas.id", sal.ID)
		if err != nil {
			return nil, err
		}
		if sid != nil {
			if vistos[*sid] {
				return nil, apierror.Validationf("la salida %s está repetida", sid).WithField("salidas", "unique")
			}
			vistos[*sid] = true
		}
		salidaIDs[i] = sid
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		e, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return noEncontrado(err, "elaborado no encontrado")
		}
		if !e.EsEscandallo() {
			return apierror.Validation("el elaborado no es un escandallo")
		}
		origenes := e.LineasOrigen()
		if len(origenes) != 1 {
			return apierror.Integrity(
				fmt.Sprintf("el escandallo tiene %d líneas de origen; debe tener exactamente una", len(origenes)),
				e.ID.String())
		}
		origen := origenes[0]
		if origenReq != nil && *origenReq != origen.IngredienteID {
			return apierror.Integrity("no se puede cambiar el ingrediente de origen de un escandallo", origen.IngredienteID.String())
		}

		e.PesoObtenido = req.PesoInicial
		e.Descripcion = strings.TrimSpace(req.Descripcion)
		e.DiasConservacion = req.DiasConservacion
		ok, err := s.repo.ActualizarConVersionTx(tx, e, req.Version)
		if err != nil {
			return err
		}
		if !ok {
			return apierror.Conflict("el elaborado fue modificado por otra persona; recargue y vuelva a intentarlo")
		}
		if err := s.repo.UpdateLineaTx(tx, origen.ID, req.PesoInicial, origen.UnidadID); err != nil {
			return err
		}

		actuales := make(map[uuid.UUID]model.ElaboradoIngrediente)
		for _, l := range e.LineasSalida() {
			actuales[l.IngredienteID] = l
		}
		for _, sid := range salidaIDs {
			if sid == nil {
				continue
			}
			if _, ok := actuales[*sid]; !ok {
				return apierror.Validation("la salida no pertenece a este escandallo").WithField("salidas", sid.String())
			}
		}

		// Removals
		for ingID, l := range actuales {
			if vistos[ingID] {
				continue
			}
			if err := s.repo.DeleteLineaTx(tx, l.ID); err != nil {
				return err
			}
			if l.Ingrediente == nil || !l.Ingrediente.EsDerivadoDe(e.ID) {
				continue
			}
			n, err := s.ingredientes.ContarReferenciasTx(tx, ingID, nil)
			if err != nil {
				return err
			}
			if n == 0 {
				if err := s.ingredientes.DeleteTx(tx, ingID); err != nil {
					return err
				}
			}
		}

		sinUnidad, err := s.unidadSinEspecificar(tx)
		if err != nil {
			return err
		}
		var herencia *model.Ingrediente
		if origen.Ingrediente != nil {
			herencia = heredar(origen.Ingrediente)
		} else {
			if herencia, err = s.ingredientes.FindByIDTx(tx, origen.IngredienteID); err != nil {
				return err
			}
			herencia = heredar(herencia)
		}

		for i, sal := range req.Salidas {
			unidadID, err := parseIDOpcional("unidad_id", sal.UnidadID)
			if err != nil {
				return err
			}

			sid := salidaIDs[i]
			if sid == nil {
				if unidadID == nil {
					unidadID = origen.UnidadID
				} else if unidadID, err = s.resolverUnidad(tx, unidadID, sinUnidad); err != nil {
					return err
				}
				if err := s.crearSalida(tx, e, herencia, sal, unidadID); err != nil {
					return err
				}
				continue
			}

			// Update path
			l := actuales[*sid]
			nombre := strings.TrimSpace(sal.Nombre)
			if l.Ingrediente != nil && nombre != l.Ingrediente.Nombre {
				if err := nombreLibre(tx, s.ingredientes, nombre, sid); err != nil {
					return err
				}
				if err := s.ingredientes.RenombrarTx(tx, *sid, nombre); err != nil {
					return traducirDuplicado(err, nombre)
				}
			}
			if unidadID == nil {
				unidadID = l.UnidadID
			} else if unidadID, err = s.resolverUnidad(tx, unidadID, sinUnidad); err != nil {
				return err
			}
			if err := s.repo.UpdateLineaTx(tx, l.ID, sal.Cantidad, unidadID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fallo("actualizar escandallo", err)
	}
	invalidarEtiquetas(ctx, s.cache)
	return s.ObtenerPorID(ctx, id)
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func (s *elaboradoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		e, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return noEncontrado(err, "elaborado no encontrado")
		}
		n, err := s.lotes.ContarPorElaboradoTx(tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apierror.Integrity(fmt.Sprintf("el elaborado tiene %d lotes registrados y no se puede eliminar", n), id.String())
		}
		if e.EsEscandallo() {
			return s.eliminarEscandallo(tx, e)
		}
		return s.eliminarCombinado(tx, e)
	})
	if err != nil {
		return fallo("eliminar elaborado", err)
	}
	invalidarEtiquetas(ctx, s.cache)
	return nil
}

// eliminarEscandallo refuses, before touching anything, if any output is used
// by another recipe; otherwise deletes lines, outputs and the recipe.
func (s *elaboradoService) eliminarEscandallo(tx *gorm.DB, e *model.Elaborado) error {
	salidas := e.LineasSalida()
	var enUso []uuid.UUID
	for _, l := range salidas {
		n, err := s.ingredientes.ContarReferenciasTx(tx, l.IngredienteID, &e.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			enUso = append(enUso, l.IngredienteID)
		}
	}
	if len(enUso) > 0 {
		return apierror.Integrity("hay salidas del escandallo en uso por otros elaborados", idsString(enUso)...)
	}

	if err := s.repo.DeleteLineasTx(tx, e.ID); err != nil {
		return err
	}
	for _, l := range salidas {
		if l.Ingrediente == nil || !l.Ingrediente.EsDerivadoDe(e.ID) {
			continue
		}
		if err := s.ingredientes.DeleteTx(tx, l.IngredienteID); err != nil {
			return err
		}
	}
	return s.repo.DeleteTx(tx, e.ID)
}

// eliminarCombinado leaves input ingredients alone. The recipe's own
// registered ingredient goes with it unless another recipe uses it.
func (s *elaboradoService) eliminarCombinado(tx *gorm.DB, e *model.Elaborado) error {
	var propios []uuid.UUID
	var enUso []uuid.UUID
	for _, l := range e.LineasOrigen() {
		if l.Ingrediente == nil || !l.Ingrediente.EsDerivadoDe(e.ID) {
			continue
		}
		n, err := s.ingredientes.ContarReferenciasTx(tx, l.IngredienteID, &e.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			enUso = append(enUso, l.IngredienteID)
		}
		propios = append(propios, l.IngredienteID)
	}
	if len(enUso) > 0 {
		return apierror.Integrity("el ingrediente producido por este elaborado está en uso por otros elaborados", idsString(enUso)...)
	}

	if err := s.repo.DeleteLineasTx(tx, e.ID); err != nil {
		return err
	}
	for _, ingID := range propios {
		if err := s.ingredientes.DeleteTx(tx, ingID); err != nil {
			return err
		}
	}
	return s.repo.DeleteTx(tx, e.ID)
}

// ── Read models ───────────────────────────────────────────────────────────────

func (s *elaboradoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ElaboradoResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fallo("obtener elaborado", noEncontrado(err, "elaborado no encontrado"))
	}
	return elaboradoToResponse(e), nil
}

func (s *elaboradoService) Listar(ctx context.Context, filter dto.ElaboradoFilter) (*dto.ElaboradoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fallo("listar elaborados", err)
	}
	data := make([]dto.ElaboradoResponse, 0, len(list))
	for i := range list {
		data = append(data, *elaboradoToResponse(&list[i]))
	}
	return &dto.ElaboradoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// validarSalidas checks output names and quantities. Outputs may weigh more
// than the initial weight; Restos then reads negative.
func validarSalidas(salidas []dto.SalidaEscandalloRequest) error {
	nombres := make(map[string]bool, len(salidas))
	for i, sal := range salidas {
		nombre := strings.TrimSpace(sal.Nombre)
		if nombre == "" {
			return apierror.Validationf("cada salida necesita un nombre (salida %d)", i+1).WithField("salidas.nombre", "required")
		}
		clave := model.ClaveNombre(nombre)
		if nombres[clave] {
			return apierror.Validationf("la salida %q está repetida", nombre).WithField("salidas.nombre", "unique")
		}
		nombres[clave] = true
		if sal.Cantidad.IsNegative() {
			return apierror.Validationf("la cantidad de %q no puede ser negativa", nombre).WithField("salidas.cantidad", "min")
		}
	}
	return nil
}

// heredar snapshots what an output copies from its origin.
func heredar(origen *model.Ingrediente) *model.Ingrediente {
	al := make([]model.Alergeno, len(origen.Alergenos))
	copy(al, origen.Alergenos)
	return &model.Ingrediente{Conservacion: origen.Conservacion, Alergenos: al}
}

// crearSalida creates the output ingredient, marked as produced by e, and its line.
func (s *elaboradoService) crearSalida(tx *gorm.DB, e *model.Elaborado, herencia *model.Ingrediente, sal dto.SalidaEscandalloRequest, unidadID *uuid.UUID) error {
	nombre := strings.TrimSpace(sal.Nombre)
	if err := nombreLibre(tx, s.ingredientes, nombre, nil); err != nil {
		return err
	}
	al := make([]model.Alergeno, len(herencia.Alergenos))
	copy(al, herencia.Alergenos)
	ing := &model.Ingrediente{
		Nombre:            nombre,
		Conservacion:      herencia.Conservacion,
		ElaboradoOrigenID: &e.ID,
		Alergenos:         al,
	}
	if err := s.ingredientes.CreateTx(tx, ing); err != nil {
		return traducirDuplicado(err, nombre)
	}
	return s.repo.CreateLineaTx(tx, &model.ElaboradoIngrediente{
		ElaboradoID:   e.ID,
		IngredienteID: ing.ID,
		Cantidad:      sal.Cantidad,
		UnidadID:      unidadID,
	})
}

func (s *elaboradoService) verificarTipo(tx *gorm.DB, tipoID *uuid.UUID) error {
	if tipoID == nil {
		return nil
	}
	if _, err := s.catalogo.FindTipoByIDTx(tx, *tipoID); err != nil {
		return noEncontrado(err, "tipo de elaborado no encontrado")
	}
	return nil
}

// verificarIngredientes fails with NotFound naming every missing id.
func (s *elaboradoService) verificarIngredientes(tx *gorm.DB, ids []uuid.UUID) error {
	list, err := s.ingredientes.FindByIDsTx(tx, ids)
	if err != nil {
		return err
	}
	if len(list) == len(ids) {
		return nil
	}
	hay := make(map[uuid.UUID]bool, len(list))
	for _, i := range list {
		hay[i.ID] = true
	}
	var faltan []string
	for _, id := range ids {
		if !hay[id] {
			faltan = append(faltan, id.String())
		}
	}
	return &apierror.Error{Kind: apierror.KindNotFound, Detail: "ingredientes no encontrados", IDs: faltan}
}

// unidadSinEspecificar returns the sentinel unit id, or nil when the catalog
// has not been seeded.
func (s *elaboradoService) unidadSinEspecificar(tx *gorm.DB) (*uuid.UUID, error) {
	u, err := s.catalogo.FindUnidadSinEspecificarTx(tx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u.ID, nil
}

func (s *elaboradoService) resolverUnidad(tx *gorm.DB, id, porDefecto *uuid.UUID) (*uuid.UUID, error) {
	if id == nil {
		return porDefecto, nil
	}
	if _, err := s.catalogo.FindUnidadByIDTx(tx, *id); err != nil {
		return nil, noEncontrado(err, "unidad no encontrada")
	}
	return id, nil
}

func elaboradoToResponse(e *model.Elaborado) *dto.ElaboradoResponse {
	resp := &dto.ElaboradoResponse{
		ID:               e.ID.String(),
		Nombre:           e.Nombre,
		Descripcion:      e.Descripcion,
		PesoObtenido:     e.PesoObtenido,
		DiasConservacion: e.DiasConservacion,
		TipoID:           strPtr(e.TipoID),
		Forma:            e.Forma,
		Version:          e.Version,
		Lineas:           []dto.LineaElaboradoResponse{},
		Alergenos:        []string{},
		CreatedAt:        e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if e.Tipo != nil {
		resp.Tipo = e.Tipo.Nombre
	}

	alergenos := make(map[uuid.UUID]string)
	suma := decimal.Zero
	for _, l := range e.Lineas {
		lr := lineaToResponse(l)
		if l.Ingrediente != nil {
			for _, a := range l.Ingrediente.Alergenos {
				alergenos[a.ID] = a.Nombre
			}
		}
		if l.EsOrigen {
			if resp.Origen == nil {
				resp.Origen = &lr
			}
			continue
		}
		suma = suma.Add(l.Cantidad)
		resp.Lineas = append(resp.Lineas, lr)
	}
	for _, nombre := range alergenos {
		resp.Alergenos = append(resp.Alergenos, nombre)
	}
	sort.Strings(resp.Alergenos)

	if e.EsEscandallo() && resp.Origen != nil {
		restos := resp.Origen.Cantidad.Sub(suma)
		resp.Restos = &restos
	}
	return resp
}

func lineaToResponse(l model.ElaboradoIngrediente) dto.LineaElaboradoResponse {
	lr := dto.LineaElaboradoResponse{
		ID:            l.ID.String(),
		IngredienteID: l.IngredienteID.String(),
		Cantidad:      l.Cantidad,
		UnidadID:      strPtr(l.UnidadID),
		EsOrigen:      l.EsOrigen,
		Alergenos:     []string{},
	}
	if l.Unidad != nil {
		lr.Unidad = l.Unidad.Abreviatura
	}
	if l.Ingrediente != nil {
		lr.Ingrediente = l.Ingrediente.Nombre
		for _, a := range l.Ingrediente.Alergenos {
			lr.Alergenos = append(lr.Alergenos, a.Nombre)
		}
	}
	return lr
}
