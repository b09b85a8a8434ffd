package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"trazabilidad/internal/apierror"
	"trazabilidad/internal/dto"
	"trazabilidad/internal/model"
	"trazabilidad/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados derivados de un lote
const (
	EstadoAbierto = "abierto"
	EstadoParcial = "parcial"
	EstadoCerrado = "cerrado"
)

var cien = decimal.NewFromInt(100)

// LoteService owns production batches. It only reads recipes.
type LoteService interface {
	SiguienteNumero(ctx context.Context, elaboradoID uuid.UUID) (int, error)
	CrearLote(ctx context.Context, req dto.CrearLoteRequest) (*dto.LoteResponse, error)
	CerrarLote(ctx context.Context, loteID uuid.UUID, req dto.CerrarLoteRequest) (*dto.CierreResponse, error)
	ActualizarLote(ctx context.Context, id uuid.UUID, req dto.ActualizarLoteRequest) (*dto.LoteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.LoteResponse, error)
	Listar(ctx context.Context, filter dto.LoteFilter) (*dto.LoteListResponse, error)
}

type loteService struct {
	repo       repository.LoteRepository
	elaborados repository.ElaboradoRepository
	catalogo   repository.CatalogoRepository
	now        func() time.Time
}

// NewLoteService builds the service. now may be nil (time.Now).
func NewLoteService(
	repo repository.LoteRepository,
	elaborados repository.ElaboradoRepository,
	catalogo repository.CatalogoRepository,
	now func() time.Time,
) LoteService {
	if now == nil {
		now = time.Now
	}
	return &loteService{repo: repo, elaborados: elaborados, catalogo: catalogo, now: now}
}

func (s *loteService) SiguienteNumero(ctx context.Context, elaboradoID uuid.UUID) (int, error) {
	var numero int
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.elaborados.FindByIDTx(tx, elaboradoID); err != nil {
			return noEncontrado(err, "elaborado no encontrado")
		}
		n, err := s.repo.SiguienteNumeroTx(tx, elaboradoID)
		numero = n
		return err
	})
	if err != nil {
		return 0, fallo("siguiente numero de lote", err)
	}
	return numero, nil
}

// ── CrearLote ─────────────────────────────────────────────────────────────────
// Every consumed recipe line becomes a lot line with its planned quantity
// scaled by peso_total / referencia, where referencia is the recipe's
// obtained weight or, if that is 0, the sum of the planned outputs. A split
// batch also consumes its origin, which scales to the full batch weight.

type provenancia struct {
	proveedor      *string
	loteProveedor  *string
	fechaCaducidad *time.Time
}

func (s *loteService) CrearLote(ctx context.Context, req dto.CrearLoteRequest) (*dto.LoteResponse, error) {
	elaboradoID, err := parseID("elaborado_id", req.ElaboradoID)
	if err != nil {
		return nil, err
	}
	padreID, err := parseIDOpcional("lote_padre_id", req.LotePadreID)
	if err != nil {
		return nil, err
	}
	unidadID, err := parseIDOpcional("unidad_peso_id", req.UnidadPesoID)
	if err != nil {
		return nil, err
	}
	produccion, err := parseFecha("fecha_produccion", req.FechaProduccion)
	if err != nil {
		return nil, err
	}
	if !req.PesoTotal.IsPositive() {
		return nil, apierror.Validation("el peso total debe ser mayor que cero").WithField("peso_total", "gt")
	}

	provs := make(map[uuid.UUID]provenancia, len(req.Lineas))
	for _, l := range req.Lineas {
		id, err := parseID("ingrediente_id", l.IngredienteID)
		if err != nil {
			return nil, err
		}
		if _, dup := provs[id]; dup {
			return nil, apierror.Validationf("el ingrediente %s está repetido", id).WithField("lineas", "unique")
		}
		p := provenancia{proveedor: textoOpcional(l.Proveedor), loteProveedor: textoOpcional(l.LoteProveedor)}
		if l.FechaCaducidad != nil && strings.TrimSpace(*l.FechaCaducidad) != "" {
			f, err := parseFecha("fecha_caducidad", *l.FechaCaducidad)
			if err != nil {
				return nil, err
			}
			p.fechaCaducidad = &f
		}
		provs[id] = p
	}

	var lote model.Lote
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		e, err := s.elaborados.FindByIDTx(tx, elaboradoID)
		if err != nil {
			return noEncontrado(err, "elaborado no encontrado")
		}
		if padreID != nil {
			if !e.EsEscandallo() {
				return apierror.Validation("un elaborado combinado no admite lote padre").WithField("lote_padre_id", "excluded")
			}
			if _, err := s.repo.FindByIDTx(tx, *padreID); err != nil {
				return noEncontrado(err, "lote padre no encontrado")
			}
		}
		if unidadID != nil {
			if _, err := s.catalogo.FindUnidadByIDTx(tx, *unidadID); err != nil {
				return noEncontrado(err, "unidad no encontrada")
			}
		}

		consumibles := e.LineasConsumo()
		enReceta := make(map[uuid.UUID]bool, len(consumibles))
		for _, l := range consumibles {
			enReceta[l.IngredienteID] = true
		}
		for id := range provs {
			if !enReceta[id] {
				return apierror.Validationf("el ingrediente %s no forma parte del elaborado", id).WithField("lineas", "in_recipe")
			}
		}

		factor := FactorEscala(e, req.PesoTotal)
		var origenCantidad decimal.Decimal
		if origenes := e.LineasOrigen(); e.EsEscandallo() && len(origenes) == 1 {
			origenCantidad = origenes[0].Cantidad
		}

		lineas := make([]model.LoteIngrediente, 0, len(consumibles))
		for _, l := range consumibles {
			nombre := ""
			if l.Ingrediente != nil {
				nombre = l.Ingrediente.Nombre
			}
			peso := l.Cantidad.Mul(factor).Round(3)
			p := provs[l.IngredienteID]
			if peso.IsPositive() {
				if p.loteProveedor == nil || p.fechaCaducidad == nil {
					return apierror.Validationf("%s necesita lote de proveedor y fecha de caducidad", nombre).
						WithField("lineas", l.IngredienteID.String())
				}
				if p.fechaCaducidad.Before(produccion) {
					return apierror.Validationf("la caducidad de %s es anterior a la fecha de producción", nombre).
						WithField("fecha_caducidad", l.IngredienteID.String())
				}
			}

			ingID := l.IngredienteID
			linea := model.LoteIngrediente{
				IngredienteResultante: nombre,
				IngredienteID:         &ingID,
				Peso:                  peso,
				Proveedor:             p.proveedor,
				LoteProveedor:         p.loteProveedor,
				FechaCaducidad:        p.fechaCaducidad,
				EsOrigen:              l.EsOrigen,
				Alergenos:             model.SnapshotAlergenos(l.Ingrediente),
			}
			if origenCantidad.IsPositive() && !l.EsOrigen {
				pct := l.Cantidad.Div(origenCantidad).Mul(cien).Round(2)
				linea.PorcentajeOrigen = &pct
			}
			lineas = append(lineas, linea)
		}

		numero, err := s.repo.SiguienteNumeroTx(tx, e.ID)
		if err != nil {
			return err
		}
		lote = model.Lote{
			ElaboradoID:     e.ID,
			Numero:          numero,
			FechaProduccion: produccion,
			PesoTotal:       req.PesoTotal,
			UnidadPesoID:    unidadID,
			TempInicio:      req.TempInicio,
			TempFin:         req.TempFin,
			LotePadreID:     padreID,
			Derivado:        padreID != nil,
			Lineas:          lineas,
		}
		if e.DiasConservacion > 0 {
			cad := produccion.AddDate(0, 0, e.DiasConservacion)
			lote.FechaCaducidad = &cad
		}
		return s.repo.CreateTx(tx, &lote)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// concurrent CrearLote took the same number
		return nil, apierror.Conflict("otro lote tomó el mismo número; vuelva a intentarlo")
	}
	if err != nil {
		return nil, fallo("crear lote", err)
	}
	return s.ObtenerPorID(ctx, lote.ID)
}

// FactorEscala is peso / referencia; 0 when the recipe has no reference weight.
func FactorEscala(e *model.Elaborado, peso decimal.Decimal) decimal.Decimal {
	ref := e.PesoObtenido
	if !ref.IsPositive() {
		ref = decimal.Zero
		for _, l := range e.LineasSalida() {
			ref = ref.Add(l.Cantidad)
		}
	}
	if !ref.IsPositive() {
		return decimal.Zero
	}
	return peso.Div(ref)
}

// ── CerrarLote ────────────────────────────────────────────────────────────────

func (s *loteService) CerrarLote(ctx context.Context, loteID uuid.UUID, req dto.CerrarLoteRequest) (*dto.CierreResponse, error) {
	switch req.Modo {
	case model.CierreManual, model.CierreParcial, model.CierreFinal:
	default:
		return nil, apierror.Validationf("modo de cierre %q no válido", req.Modo).WithField("modo", "oneof")
	}
	operador := strings.TrimSpace(req.Operador)
	if operador == "" {
		return nil, apierror.Validation("el cierre necesita un operador").WithField("operador", "required")
	}
	if req.GramosConsumidos.IsNegative() {
		return nil, apierror.Validation("los gramos consumidos no pueden ser negativos").WithField("gramos_consumidos", "min")
	}
	if req.Etiquetas < 0 {
		return nil, apierror.Validation("el número de etiquetas no puede ser negativo").WithField("etiquetas", "min")
	}

	var cierre model.LoteCierre
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.repo.FindByIDTx(tx, loteID); err != nil {
			return noEncontrado(err, "lote no encontrado")
		}
		cerrado, err := s.repo.TieneCierreFinalTx(tx, loteID)
		if err != nil {
			return err
		}
		if cerrado {
			return apierror.Integrity("el lote ya tiene un cierre final", loteID.String())
		}
		cierre = model.LoteCierre{
			LoteID:           loteID,
			GramosConsumidos: req.GramosConsumidos,
			Etiquetas:        req.Etiquetas,
			Modo:             req.Modo,
			GramosPorEnvase:  req.GramosPorEnvase,
			Unidades:         req.Unidades,
			Operador:         operador,
			Metadatos:        req.Metadatos,
		}
		return s.repo.CreateCierreTx(tx, &cierre)
	})
	if err != nil {
		return nil, fallo("cerrar lote", err)
	}
	resp := cierreToResponse(cierre)
	return &resp, nil
}

// ActualizarLote edits the temperature log; the lot number never changes.
func (s *loteService) ActualizarLote(ctx context.Context, id uuid.UUID, req dto.ActualizarLoteRequest) (*dto.LoteResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		l, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return noEncontrado(err, "lote no encontrado")
		}
		if req.Numero != nil && *req.Numero != l.Numero {
			return apierror.Integrity("el número de lote es inmutable", id.String())
		}
		inicio, fin := l.TempInicio, l.TempFin
		if req.TempInicio != nil {
			inicio = req.TempInicio
		}
		if req.TempFin != nil {
			fin = req.TempFin
		}
		return s.repo.UpdateTemperaturasTx(tx, id, inicio, fin)
	})
	if err != nil {
		return nil, fallo("actualizar lote", err)
	}
	return s.ObtenerPorID(ctx, id)
}

// ── Read models ───────────────────────────────────────────────────────────────

func (s *loteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.LoteResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fallo("obtener lote", noEncontrado(err, "lote no encontrado"))
	}
	return loteToResponse(l, s.now()), nil
}

func (s *loteService) Listar(ctx context.Context, filter dto.LoteFilter) (*dto.LoteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fallo("listar lotes", err)
	}
	now := s.now()
	data := make([]dto.LoteResponse, 0, len(list))
	for i := range list {
		data = append(data, *loteToResponse(&list[i], now))
	}
	return &dto.LoteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// EstadoLote derives the lot state. Expiry reads as closed even without a
// closure record.
func EstadoLote(l *model.Lote, now time.Time) (estado string, caducado bool) {
	caducado = l.FechaCaducidad != nil && !l.FechaCaducidad.After(now)
	parcial := false
	for _, c := range l.Cierres {
		if c.Modo == model.CierreFinal {
			return EstadoCerrado, caducado
		}
		parcial = true
	}
	switch {
	case caducado:
		return EstadoCerrado, true
	case parcial:
		return EstadoParcial, false
	default:
		return EstadoAbierto, false
	}
}

// CodigoLote is the printed lot code: PREFIJO-yyyymmdd-NNN.
func CodigoLote(l *model.Lote) string {
	prefijo := ""
	if l.Elaborado != nil {
		for _, r := range strings.ToUpper(model.SinAcentos(l.Elaborado.Nombre)) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				prefijo += string(r)
				if len(prefijo) == 4 {
					break
				}
			}
		}
	}
	if prefijo == "" {
		prefijo = "LOTE"
	}
	return fmt.Sprintf("%s-%s-%03d", prefijo, l.FechaProduccion.Format("20060102"), l.Numero)
}

func loteToResponse(l *model.Lote, now time.Time) *dto.LoteResponse {
	estado, caducado := EstadoLote(l, now)
	resp := &dto.LoteResponse{
		ID:              l.ID.String(),
		Codigo:          CodigoLote(l),
		ElaboradoID:     l.ElaboradoID.String(),
		Numero:          l.Numero,
		FechaProduccion: l.FechaProduccion.Format(dto.FormatoFecha),
		FechaCaducidad:  fechaOpcional(l.FechaCaducidad),
		PesoTotal:       l.PesoTotal,
		TempInicio:      l.TempInicio,
		TempFin:         l.TempFin,
		LotePadreID:     strPtr(l.LotePadreID),
		Derivado:        l.Derivado,
		Estado:          estado,
		Caducado:        caducado,
		Lineas:          make([]dto.LineaLoteResponse, 0, len(l.Lineas)),
		Cierres:         make([]dto.CierreResponse, 0, len(l.Cierres)),
	}
	if l.Elaborado != nil {
		resp.Elaborado = l.Elaborado.Nombre
	}
	if l.UnidadPeso != nil {
		resp.UnidadPeso = l.UnidadPeso.Abreviatura
	}
	for _, li := range l.Lineas {
		resp.Lineas = append(resp.Lineas, dto.LineaLoteResponse{
			ID:                    li.ID.String(),
			IngredienteResultante: li.IngredienteResultante,
			IngredienteID:         strPtr(li.IngredienteID),
			Peso:                  li.Peso,
			PorcentajeOrigen:      li.PorcentajeOrigen,
			Proveedor:             li.Proveedor,
			LoteProveedor:         li.LoteProveedor,
			FechaCaducidad:        fechaOpcional(li.FechaCaducidad),
			EsOrigen:              li.EsOrigen,
			Alergenos:             nombresAlergenosLote(li.Alergenos),
		})
	}
	for _, c := range l.Cierres {
		resp.Cierres = append(resp.Cierres, cierreToResponse(c))
	}
	return resp
}

func cierreToResponse(c model.LoteCierre) dto.CierreResponse {
	return dto.CierreResponse{
		ID:               c.ID.String(),
		Modo:             c.Modo,
		GramosConsumidos: c.GramosConsumidos,
		Etiquetas:        c.Etiquetas,
		GramosPorEnvase:  c.GramosPorEnvase,
		Unidades:         c.Unidades,
		Operador:         c.Operador,
		Metadatos:        c.Metadatos,
		CreatedAt:        c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func parseFecha(campo, valor string) (time.Time, error) {
	t, err := time.Parse(dto.FormatoFecha, strings.TrimSpace(valor))
	if err != nil {
		return time.Time{}, apierror.Validationf("%s inválida, formato esperado AAAA-MM-DD", campo).WithField(campo, "datetime")
	}
	return t, nil
}

func fechaOpcional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dto.FormatoFecha)
	return &s
}

func textoOpcional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func nombresAlergenosLote(as []model.AlergenoLote) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.Nombre)
	}
	return out
}
