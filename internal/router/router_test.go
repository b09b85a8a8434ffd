package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"trazabilidad/internal/config"
	"trazabilidad/internal/infra"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type api struct {
	t *testing.T
	r http.Handler
}

func nuevaAPI(t *testing.T, rdb *redis.Client) *api {
	t.Helper()
	db, err := infra.NewDatabase("sqlite://"+filepath.Join(t.TempDir(), "api.db"), 1)
	require.NoError(t, err)
	require.NoError(t, infra.SeedCatalogo(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{Env: "test", EtiquetaMaxProfundidad: 8, EmpresaNombre: "Obrador"}
	return &api{t: t, r: New(cfg, db, rdb)}
}

func (a *api) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

// crear posts body and decodes the 201 response into dest.
func (a *api) crear(path string, body, dest any) {
	a.t.Helper()
	w := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), dest))
}

func (a *api) leer(path string, dest any) {
	a.t.Helper()
	w := a.do(http.MethodGet, path, nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), dest))
}

type conID struct {
	ID string `json:"id"`
}

func (a *api) alergeno(nombre string) string {
	a.t.Helper()
	var list []struct {
		ID     string `json:"id"`
		Nombre string `json:"nombre"`
	}
	a.leer("/v1/catalogo/alergenos", &list)
	for _, al := range list {
		if al.Nombre == nombre {
			return al.ID
		}
	}
	a.t.Fatalf("alérgeno %q no sembrado", nombre)
	return ""
}

func (a *api) ingrediente(nombre string, alergenos ...string) string {
	a.t.Helper()
	ids := []string{}
	for _, n := range alergenos {
		ids = append(ids, a.alergeno(n))
	}
	var out conID
	a.crear("/v1/ingredientes", map[string]any{"nombre": nombre, "alergeno_ids": ids}, &out)
	return out.ID
}

func TestHealth(t *testing.T) {
	a := nuevaAPI(t, nil)
	w := a.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"db":"connected","redis":"disabled"}`, w.Body.String())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	a = nuevaAPI(t, rdb)
	w = a.do(http.MethodGet, "/health", nil)
	assert.JSONEq(t, `{"ok":true,"db":"connected","redis":"connected"}`, w.Body.String())

	mr.Close()
	w = a.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = a.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `trazabilidad_http_requests_total{method="GET",route="/health",status="503"} 1`)
}

func TestFlujoCompleto(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	a := nuevaAPI(t, rdb)

	cerdo := a.ingrediente("Cerdo", "Sulfitos")
	sal := a.ingrediente("Sal")

	// Split: Cerdo 10 -> Lomo 6 + Recortes 4
	var desp struct {
		ID      string `json:"id"`
		Version int    `json:"version"`
		Lineas  []struct {
			IngredienteID string `json:"ingrediente_id"`
			Ingrediente   string `json:"ingrediente"`
		} `json:"lineas"`
	}
	a.crear("/v1/elaborados/escandallo", map[string]any{
		"nombre":            "Despiece cerdo",
		"origen_id":         cerdo,
		"peso_inicial":      "10",
		"dias_conservacion": 2,
		"salidas": []map[string]any{
			{"nombre": "Lomo", "cantidad": "6"},
			{"nombre": "Recortes", "cantidad": "4"},
		},
	}, &desp)
	require.Len(t, desp.Lineas, 2)
	lomo := desp.Lineas[0].IngredienteID
	assert.Equal(t, "Lomo", desp.Lineas[0].Ingrediente)

	// Combine: Lomo adobado = Lomo 1000 + Sal 20
	var siguiente struct {
		ElaboradoID string `json:"elaborado_id"`
		Numero      int    `json:"numero"`
	}
	var comb conID
	a.crear("/v1/elaborados", map[string]any{
		"nombre":            "Lomo adobado",
		"descripcion":       "Conservar entre 0 y 4 ºC",
		"dias_conservacion": 5,
		"lineas": []map[string]any{
			{"ingrediente_id": lomo, "cantidad": "1000"},
			{"ingrediente_id": sal, "cantidad": "20"},
		},
	}, &comb)
	a.leer("/v1/elaborados/"+comb.ID+"/siguiente-lote", &siguiente)
	assert.Equal(t, comb.ID, siguiente.ElaboradoID)
	assert.Equal(t, 1, siguiente.Numero)

	var lote struct {
		ID     string `json:"id"`
		Codigo string `json:"codigo"`
		Numero int    `json:"numero"`
		Estado string `json:"estado"`
		Lineas []struct {
			Peso decimal.Decimal `json:"peso"`
		} `json:"lineas"`
	}
	a.crear("/v1/lotes", map[string]any{
		"elaborado_id":     comb.ID,
		"fecha_produccion": "2024-03-15",
		"peso_total":       "2040",
		"lineas": []map[string]any{
			{"ingrediente_id": lomo, "proveedor": "Cárnicas SL", "lote_proveedor": "C-77", "fecha_caducidad": "2024-03-25"},
			{"ingrediente_id": sal, "proveedor": "Salinas", "lote_proveedor": "S-1", "fecha_caducidad": "2026-01-01"},
		},
	}, &lote)
	assert.Equal(t, 1, lote.Numero)
	assert.Equal(t, "LOMO-20240315-001", lote.Codigo)
	require.Len(t, lote.Lineas, 2)
	assert.True(t, lote.Lineas[0].Peso.Equal(decimal.NewFromInt(2000)))
	a.leer("/v1/elaborados/"+comb.ID+"/siguiente-lote", &siguiente)
	assert.Equal(t, 2, siguiente.Numero)

	var et struct {
		Texto     string   `json:"texto"`
		Alergenos []string `json:"alergenos"`
	}
	a.leer("/v1/lotes/"+lote.ID+"/etiqueta", &et)
	assert.Equal(t, "Lomo* (Cerdo*), Sal.", et.Texto)
	assert.Equal(t, []string{"Sulfitos"}, et.Alergenos)

	w := a.do(http.MethodGet, "/v1/lotes/"+lote.ID+"/etiqueta.pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = a.do(http.MethodGet, "/v1/lotes/"+lote.ID+"/etiqueta.txt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ingredientes: Lomo* (Cerdo*), Sal.\n")
	assert.Contains(t, w.Body.String(), "Lote: LOMO-20240315-001\n")

	// Closures
	var cierre conID
	a.crear("/v1/lotes/"+lote.ID+"/cierres", map[string]any{
		"modo": "final", "gramos_consumidos": "2040", "etiquetas": 8, "operador": "Marta",
	}, &cierre)
	w = a.do(http.MethodPost, "/v1/lotes/"+lote.ID+"/cierres", map[string]any{
		"modo": "parcial", "gramos_consumidos": "1", "operador": "Marta",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Renumbering is refused
	w = a.do(http.MethodPatch, "/v1/lotes/"+lote.ID, map[string]any{"numero": 9})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = a.do(http.MethodPatch, "/v1/lotes/"+lote.ID, map[string]any{"temp_inicio": "4.5"})
	assert.Equal(t, http.StatusOK, w.Code)

	// In-use outputs block deleting the split
	w = a.do(http.MethodDelete, "/v1/elaborados/"+desp.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	var env struct {
		Detail string   `json:"detail"`
		IDs    []string `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, []string{lomo}, env.IDs)

	// Stale version
	body := map[string]any{
		"version":      desp.Version,
		"peso_inicial": "10",
		"salidas": []map[string]any{
			{"id": lomo, "nombre": "Lomo", "cantidad": "7"},
			{"id": desp.Lineas[1].IngredienteID, "nombre": "Recortes", "cantidad": "3"},
		},
	}
	assert.Equal(t, http.StatusOK, a.do(http.MethodPut, "/v1/elaborados/"+desp.ID+"/escandallo", body).Code)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPut, "/v1/elaborados/"+desp.ID+"/escandallo", body).Code)

	var lotes struct {
		Total int `json:"total"`
	}
	a.leer("/v1/lotes?elaborado_id="+comb.ID, &lotes)
	assert.Equal(t, 1, lotes.Total)
}

func TestErrores(t *testing.T) {
	a := nuevaAPI(t, nil)

	casos := []struct {
		nombre, metodo, ruta string
		body                 any
		status               int
	}{
		{"id mal formado", http.MethodGet, "/v1/ingredientes/no-uuid", nil, http.StatusBadRequest},
		{"json invalido", http.MethodPost, "/v1/ingredientes", "{", http.StatusBadRequest},
		{"validacion de campos", http.MethodPost, "/v1/ingredientes", map[string]any{"nombre": ""}, http.StatusUnprocessableEntity},
		{"ingrediente inexistente", http.MethodGet, "/v1/ingredientes/" + uuid.NewString(), nil, http.StatusNotFound},
		{"siguiente lote de elaborado inexistente", http.MethodGet, "/v1/elaborados/" + uuid.NewString() + "/siguiente-lote", nil, http.StatusNotFound},
		{"lote inexistente", http.MethodGet, "/v1/lotes/" + uuid.NewString() + "/etiqueta", nil, http.StatusNotFound},
		{"elaborado sin lineas", http.MethodPost, "/v1/elaborados", map[string]any{"nombre": "X"}, http.StatusUnprocessableEntity},
		{"modo de cierre", http.MethodPost, "/v1/lotes/" + uuid.NewString() + "/cierres", map[string]any{"modo": "total", "operador": "M"}, http.StatusUnprocessableEntity},
		{"filtro invalido", http.MethodGet, "/v1/elaborados?forma=otra", nil, http.StatusUnprocessableEntity},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			w := a.do(tc.metodo, tc.ruta, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"detail"`)
		})
	}

	var tipos []conID
	a.leer("/v1/catalogo/tipos", &tipos)
	require.NotEmpty(t, tipos)
	w := a.do(http.MethodPut, "/v1/catalogo/tipos/"+tipos[0].ID, map[string]any{"nombre": "Otro"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRateLimit(t *testing.T) {
	db, err := infra.NewDatabase("sqlite://"+filepath.Join(t.TempDir(), "rl.db"), 1)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	a := &api{t: t, r: New(&config.Config{Env: "test", RateLimitPorMinuto: 2, EtiquetaMaxProfundidad: 8}, db, nil)}
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/health", nil).Code)
	w := a.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
