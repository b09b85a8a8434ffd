package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"trazabilidad/internal/apierror"
	"trazabilidad/internal/dto"
	"trazabilidad/internal/infra"
	"trazabilidad/internal/model"
	"trazabilidad/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// entorno wires every service against a fresh SQLite file with the catalog seeded.
type entorno struct {
	db    *gorm.DB
	ahora time.Time

	catalogo     CatalogoService
	ingredientes IngredienteService
	elaborados   ElaboradoService
	lotes        LoteService
	etiquetas    EtiquetaService

	elaboradoRepo   repository.ElaboradoRepository
	ingredienteRepo repository.IngredienteRepository
	loteRepo        repository.LoteRepository
}

func nuevoEntorno(t *testing.T) *entorno {
	return nuevoEntornoConCache(t, nil)
}

func nuevoEntornoConCache(t *testing.T, cache *infra.EtiquetaCache) *entorno {
	t.Helper()
	db, err := infra.NewDatabase("sqlite://"+filepath.Join(t.TempDir(), "trazabilidad.db"), 1)
	require.NoError(t, err)
	require.NoError(t, infra.SeedCatalogo(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	e := &entorno{db: db, ahora: time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC)}
	catalogoRepo := repository.NewCatalogoRepository(db)
	e.ingredienteRepo = repository.NewIngredienteRepository(db)
	e.elaboradoRepo = repository.NewElaboradoRepository(db)
	e.loteRepo = repository.NewLoteRepository(db)

	e.catalogo = NewCatalogoService(catalogoRepo)
	e.ingredientes = NewIngredienteService(e.ingredienteRepo, catalogoRepo, cache)
	e.elaborados = NewElaboradoService(e.elaboradoRepo, e.ingredienteRepo, catalogoRepo, e.loteRepo, cache)
	e.lotes = NewLoteService(e.loteRepo, e.elaboradoRepo, catalogoRepo, func() time.Time { return e.ahora })
	e.etiquetas = NewEtiquetaService(e.loteRepo, cache, 8, "Obrador de prueba")
	return e
}

func (e *entorno) alergeno(t *testing.T, nombre string) string {
	t.Helper()
	var a model.Alergeno
	require.NoError(t, e.db.Where("nombre = ?", nombre).First(&a).Error)
	return a.ID.String()
}

func (e *entorno) unidad(t *testing.T, abreviatura string) string {
	t.Helper()
	var u model.Unidad
	require.NoError(t, e.db.Where("abreviatura = ?", abreviatura).First(&u).Error)
	return u.ID.String()
}

func (e *entorno) ingrediente(t *testing.T, nombre string, alergenos ...string) *dto.IngredienteResponse {
	t.Helper()
	ids := make([]string, 0, len(alergenos))
	for _, a := range alergenos {
		ids = append(ids, e.alergeno(t, a))
	}
	ing, err := e.ingredientes.Crear(context.Background(), dto.CrearIngredienteRequest{
		Nombre:       nombre,
		Conservacion: "Conservar entre 0 y 4 ºC",
		AlergenoIDs:  ids,
	})
	require.NoError(t, err)
	return ing
}

// combinado creates a combine recipe; lineas alternate ingredient id and quantity.
func (e *entorno) combinado(t *testing.T, nombre, peso string, registrar bool, lineas ...any) *dto.ElaboradoResponse {
	t.Helper()
	req := dto.CrearCombinadoRequest{
		Nombre:               nombre,
		Descripcion:          "Mantener refrigerado",
		PesoObtenido:         dec(peso),
		DiasConservacion:     3,
		RegistrarIngrediente: registrar,
	}
	for i := 0; i < len(lineas); i += 2 {
		req.Lineas = append(req.Lineas, dto.LineaCombinadoRequest{
			IngredienteID: lineas[i].(string),
			Cantidad:      dec(lineas[i+1].(string)),
		})
	}
	el, err := e.elaborados.CrearCombinado(context.Background(), req)
	require.NoError(t, err)
	return el
}

func (e *entorno) escandallo(t *testing.T, origenID, peso string, salidas ...string) *dto.ElaboradoResponse {
	t.Helper()
	req := dto.CrearEscandalloRequest{
		Nombre:           "Despiece",
		OrigenID:         origenID,
		PesoInicial:      dec(peso),
		DiasConservacion: 2,
	}
	for i := 0; i < len(salidas); i += 2 {
		req.Salidas = append(req.Salidas, dto.SalidaEscandalloRequest{Nombre: salidas[i], Cantidad: dec(salidas[i+1])})
	}
	el, err := e.elaborados.CrearEscandallo(context.Background(), req)
	require.NoError(t, err)
	return el
}

// provenancia returns lot lines with supplier data for every ingredient id.
func provenanciaCompleta(caducidad string, ids ...string) []dto.LineaLoteRequest {
	out := make([]dto.LineaLoteRequest, 0, len(ids))
	for _, id := range ids {
		prov, lote, cad := "Proveedor SA", "LP-"+id[:8], caducidad
		out = append(out, dto.LineaLoteRequest{
			IngredienteID:  id,
			Proveedor:      &prov,
			LoteProveedor:  &lote,
			FechaCaducidad: &cad,
		})
	}
	return out
}

// volcado reads every row of every table, for byte-for-byte comparisons.
func volcado(t *testing.T, db *gorm.DB) map[string][]map[string]interface{} {
	t.Helper()
	tablas := []string{
		"allergens", "units", "recipe_types", "ingredients", "ingredients_allergens",
		"elaborados", "elaborados_ingredientes", "lotes", "lotes_ingredientes", "lotes_cierres",
	}
	out := make(map[string][]map[string]interface{}, len(tablas))
	for _, tabla := range tablas {
		var filas []map[string]interface{}
		require.NoError(t, db.Table(tabla).Order("1").Find(&filas).Error)
		out[tabla] = filas
	}
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func mustID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func requireKind(t *testing.T, err error, k apierror.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, k, apierror.KindOf(err), "error: %v", err)
}
