package service

import (
	"context"
	"testing"

	"trazabilidad/internal/apierror"
	"trazabilidad/internal/dto"
	"trazabilidad/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nombresAlergenos(list []dto.AlergenoResponse) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Nombre)
	}
	return out
}

func salidaPorNombre(t *testing.T, e *dto.ElaboradoResponse, nombre string) dto.LineaElaboradoResponse {
	t.Helper()
	for _, l := range e.Lineas {
		if l.Ingrediente == nombre {
			return l
		}
	}
	t.Fatalf("salida %q no encontrada en %s", nombre, e.Nombre)
	return dto.LineaElaboradoResponse{}
}

func contarOrigenes(t *testing.T, e *entorno, id string) int64 {
	t.Helper()
	n, err := e.elaboradoRepo.ContarLineasOrigenTx(e.db, mustID(t, id))
	require.NoError(t, err)
	return n
}

func TestCrearEscandallo_SalidasHeredanDelOrigen(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	cerdo := e.ingrediente(t, "Cerdo", "Sulfitos", "Mostaza")

	el := e.escandallo(t, cerdo.ID, "10", "Loin", "6", "Trim", "4")

	assert.Equal(t, model.FormaEscandallo, el.Forma)
	assert.Equal(t, 1, el.Version)
	require.NotNil(t, el.Origen)
	assert.Equal(t, cerdo.ID, el.Origen.IngredienteID)
	assert.True(t, el.Origen.Cantidad.Equal(dec("10")))
	require.Len(t, el.Lineas, 2)
	assert.Equal(t, "Loin", el.Lineas[0].Ingrediente)
	assert.True(t, el.Lineas[0].Cantidad.Equal(dec("6")))
	assert.True(t, el.Lineas[1].Cantidad.Equal(dec("4")))
	require.NotNil(t, el.Restos)
	assert.True(t, el.Restos.IsZero())
	assert.EqualValues(t, 1, contarOrigenes(t, e, el.ID))

	for _, nombre := range []string{"Loin", "Trim"} {
		l := salidaPorNombre(t, el, nombre)
		ing, err := e.ingredientes.ObtenerPorID(ctx, mustID(t, l.IngredienteID))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Sulfitos", "Mostaza"}, nombresAlergenos(ing.Alergenos))
		assert.Equal(t, cerdo.Conservacion, ing.Conservacion)
		require.NotNil(t, ing.ElaboradoOrigenID)
		assert.Equal(t, el.ID, *ing.ElaboradoOrigenID)
	}
}

func TestCrearEscandallo_CopiaPorValor(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	cerdo := e.ingrediente(t, "Cerdo", "Sulfitos")
	el := e.escandallo(t, cerdo.ID, "10", "Lomo", "6")

	vacio := []string{}
	_, err := e.ingredientes.Actualizar(ctx, mustID(t, cerdo.ID), dto.ActualizarIngredienteRequest{AlergenoIDs: &vacio})
	require.NoError(t, err)

	lomo, err := e.ingredientes.ObtenerPorID(ctx, mustID(t, salidaPorNombre(t, el, "Lomo").IngredienteID))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sulfitos"}, nombresAlergenos(lomo.Alergenos))
}

func TestCrearEscandallo_NombrePorDefecto(t *testing.T) {
	e := nuevoEntorno(t)
	cerdo := e.ingrediente(t, "Cerdo")
	el, err := e.elaborados.CrearEscandallo(context.Background(), dto.CrearEscandalloRequest{
		OrigenID:    cerdo.ID,
		PesoInicial: dec("5"),
		Salidas:     []dto.SalidaEscandalloRequest{{Nombre: "Panceta", Cantidad: dec("5")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Escandallo Cerdo", el.Nombre)
	assert.Equal(t, "-", el.Origen.Unidad)
}

func TestCrearEscandallo_SalidasSuperanElPeso(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	cerdo := e.ingrediente(t, "Cerdo")

	el := e.escandallo(t, cerdo.ID, "10", "Lomo", "6", "Recortes", "4.5")
	require.NotNil(t, el.Restos)
	assert.True(t, el.Restos.Equal(dec("-0.5")), "restos %s", el.Restos)

	lomo := salidaPorNombre(t, el, "Lomo").IngredienteID
	act, err := e.elaborados.ActualizarEscandallo(ctx, mustID(t, el.ID), dto.ActualizarEscandalloRequest{
		Version:     el.Version,
		PesoInicial: dec("5"),
		Salidas:     []dto.SalidaEscandalloRequest{{ID: &lomo, Nombre: "Lomo", Cantidad: dec("6")}},
	})
	require.NoError(t, err)
	assert.True(t, act.Restos.Equal(dec("-1")), "restos %s", act.Restos)
}

func TestCrearEscandallo_Validaciones(t *testing.T) {
	e := nuevoEntorno(t)
	cerdo := e.ingrediente(t, "Cerdo")
	e.ingrediente(t, "Panceta")

	casos := []struct {
		nombre string
		req    dto.CrearEscandalloRequest
		kind   apierror.Kind
	}{
		{"origen inexistente", dto.CrearEscandalloRequest{
			OrigenID: uuid.NewString(), PesoInicial: dec("1"),
			Salidas: []dto.SalidaEscandalloRequest{{Nombre: "A", Cantidad: dec("1")}},
		}, apierror.KindNotFound},
		{"peso cero", dto.CrearEscandalloRequest{
			OrigenID: cerdo.ID, PesoInicial: dec("0"),
			Salidas: []dto.SalidaEscandalloRequest{{Nombre: "A", Cantidad: dec("0")}},
		}, apierror.KindValidation},
		{"sin salidas", dto.CrearEscandalloRequest{
			OrigenID: cerdo.ID, PesoInicial: dec("1"),
		}, apierror.KindValidation},
		{"salida sin nombre", dto.CrearEscandalloRequest{
			OrigenID: cerdo.ID, PesoInicial: dec("1"),
			Salidas: []dto.SalidaEscandalloRequest{{Nombre: "  ", Cantidad: dec("1")}},
		}, apierror.KindValidation},
		{"salidas repetidas", dto.CrearEscandalloRequest{
			OrigenID: cerdo.ID, PesoInicial: dec("5"),
			Salidas: []dto.SalidaEscandalloRequest{{Nombre: "Lomo", Cantidad: dec("1")}, {Nombre: " LOMO ", Cantidad: dec("1")}},
		}, apierror.KindValidation},
		{"cantidad negativa", dto.CrearEscandalloRequest{
			OrigenID: cerdo.ID, PesoInicial: dec("5"),
			Salidas: []dto.SalidaEscandalloRequest{{Nombre: "Lomo", Cantidad: dec("-1")}},
		}, apierror.KindValidation},
		{"nombre de salida ocupado", dto.CrearEscandalloRequest{
			OrigenID: cerdo.ID, PesoInicial: dec("5"),
			Salidas: []dto.SalidaEscandalloRequest{{Nombre: "panceta", Cantidad: dec("3")}},
		}, apierror.KindValidation},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			_, err := e.elaborados.CrearEscandallo(context.Background(), tc.req)
			requireKind(t, err, tc.kind)
		})
	}

	var n int64
	require.NoError(t, e.db.Model(&model.Elaborado{}).Count(&n).Error)
	assert.Zero(t, n, "ningún intento fallido deja elaborados a medias")
}

func TestCrearCombinado_RegistrarIngrediente(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	harina := e.ingrediente(t, "Harina", "Gluten")
	huevo := e.ingrediente(t, "Huevo", "Huevos")
	leche := e.ingrediente(t, "Leche", "Lácteos", "Huevos")

	el := e.combinado(t, "Crema pastelera", "1000", true,
		harina.ID, "100", huevo.ID, "200", leche.ID, "700")

	require.NotNil(t, el.Origen)
	assert.True(t, el.Origen.Cantidad.IsZero())
	assert.Equal(t, "Crema pastelera", el.Origen.Ingrediente)
	require.Len(t, el.Lineas, 3)
	assert.Equal(t, "Leche", el.Lineas[0].Ingrediente)
	assert.Nil(t, el.Restos)
	assert.EqualValues(t, 1, contarOrigenes(t, e, el.ID))

	producido, err := e.ingredientes.ObtenerPorID(ctx, mustID(t, el.Origen.IngredienteID))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Gluten", "Huevos", "Lácteos"}, nombresAlergenos(producido.Alergenos))
	require.NotNil(t, producido.ElaboradoOrigenID)
	assert.Equal(t, el.ID, *producido.ElaboradoOrigenID)

	derivados, err := e.ingredientes.Listar(ctx, dto.IngredienteFilter{Derivados: "true"})
	require.NoError(t, err)
	require.Len(t, derivados.Data, 1)
	assert.Equal(t, producido.ID, derivados.Data[0].ID)
}

func TestCrearCombinado_SinRegistrar(t *testing.T) {
	e := nuevoEntorno(t)
	sal := e.ingrediente(t, "Sal")
	agua := e.ingrediente(t, "Agua")

	el := e.combinado(t, "Salmuera", "0", false, agua.ID, "1000", sal.ID, "0")

	assert.Nil(t, el.Origen)
	require.Len(t, el.Lineas, 2)
	assert.True(t, el.Lineas[1].Cantidad.IsZero(), "una cantidad cero es válida")
	assert.EqualValues(t, 0, contarOrigenes(t, e, el.ID))
}

func TestCrearCombinado_Validaciones(t *testing.T) {
	e := nuevoEntorno(t)
	sal := e.ingrediente(t, "Sal")
	tipo := uuid.NewString()

	casos := []struct {
		nombre string
		req    dto.CrearCombinadoRequest
		kind   apierror.Kind
	}{
		{"sin lineas", dto.CrearCombinadoRequest{Nombre: "X"}, apierror.KindValidation},
		{"sin nombre", dto.CrearCombinadoRequest{
			Lineas: []dto.LineaCombinadoRequest{{IngredienteID: sal.ID, Cantidad: dec("1")}},
		}, apierror.KindValidation},
		{"peso negativo", dto.CrearCombinadoRequest{
			Nombre: "X", PesoObtenido: dec("-1"),
			Lineas: []dto.LineaCombinadoRequest{{IngredienteID: sal.ID, Cantidad: dec("1")}},
		}, apierror.KindValidation},
		{"ingrediente repetido", dto.CrearCombinadoRequest{
			Nombre: "X",
			Lineas: []dto.LineaCombinadoRequest{{IngredienteID: sal.ID, Cantidad: dec("1")}, {IngredienteID: sal.ID, Cantidad: dec("2")}},
		}, apierror.KindValidation},
		{"ingrediente inexistente", dto.CrearCombinadoRequest{
			Nombre: "X",
			Lineas: []dto.LineaCombinadoRequest{{IngredienteID: uuid.NewString(), Cantidad: dec("1")}},
		}, apierror.KindNotFound},
		{"tipo inexistente", dto.CrearCombinadoRequest{
			Nombre: "X", TipoID: &tipo,
			Lineas: []dto.LineaCombinadoRequest{{IngredienteID: sal.ID, Cantidad: dec("1")}},
		}, apierror.KindNotFound},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			_, err := e.elaborados.CrearCombinado(context.Background(), tc.req)
			requireKind(t, err, tc.kind)
		})
	}
}

func TestCrearCombinado_NombreOcupadoDeshaceTodo(t *testing.T) {
	e := nuevoEntorno(t)
	sal := e.ingrediente(t, "Sal")
	e.ingrediente(t, "Salmuera")
	antes := volcado(t, e.db)

	_, err := e.elaborados.CrearCombinado(context.Background(), dto.CrearCombinadoRequest{
		Nombre:               "SALMUERA",
		RegistrarIngrediente: true,
		Lineas:               []dto.LineaCombinadoRequest{{IngredienteID: sal.ID, Cantidad: dec("1")}},
	})
	requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, antes, volcado(t, e.db))
}

func TestActualizarEscandallo_CambioDeOrigen(t *testing.T) {
	e := nuevoEntorno(t)
	cerdo := e.ingrediente(t, "Cerdo")
	ternera := e.ingrediente(t, "Ternera")
	el := e.escandallo(t, cerdo.ID, "10", "Lomo", "6")
	antes := volcado(t, e.db)

	_, err := e.elaborados.ActualizarEscandallo(context.Background(), mustID(t, el.ID), dto.ActualizarEscandalloRequest{
		Version:     el.Version,
		OrigenID:    &ternera.ID,
		PesoInicial: dec("10"),
		Salidas:     []dto.SalidaEscandalloRequest{{ID: &el.Lineas[0].IngredienteID, Nombre: "Lomo", Cantidad: dec("6")}},
	})
	requireKind(t, err, apierror.KindIntegrity)
	assert.Equal(t, antes, volcado(t, e.db))
}

func TestActualizarEscandallo_VersionObsoleta(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	cerdo := e.ingrediente(t, "Cerdo")
	el := e.escandallo(t, cerdo.ID, "10", "Lomo", "6")
	lomo := el.Lineas[0].IngredienteID

	req := dto.ActualizarEscandalloRequest{
		Version:     el.Version,
		PesoInicial: dec("12"),
		Salidas:     []dto.SalidaEscandalloRequest{{ID: &lomo, Nombre: "Lomo", Cantidad: dec("7")}},
	}
	act, err := e.elaborados.ActualizarEscandallo(ctx, mustID(t, el.ID), req)
	require.NoError(t, err)
	assert.Equal(t, el.Version+1, act.Version)

	_, err = e.elaborados.ActualizarEscandallo(ctx, mustID(t, el.ID), req)
	requireKind(t, err, apierror.KindConflict)
}

func TestActualizarEscandallo_ActualizaCreaYElimina(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	cerdo := e.ingrediente(t, "Cerdo", "Sulfitos")
	el := e.escandallo(t, cerdo.ID, "10", "Lomo", "5", "Aguja", "3")
	lomo := salidaPorNombre(t, el, "Lomo").IngredienteID
	aguja := salidaPorNombre(t, el, "Aguja").IngredienteID

	act, err := e.elaborados.ActualizarEscandallo(ctx, mustID(t, el.ID), dto.ActualizarEscandalloRequest{
		Version:     el.Version,
		PesoInicial: dec("12"),
		Salidas: []dto.SalidaEscandalloRequest{
			{ID: &lomo, Nombre: "Lomo limpio", Cantidad: dec("6")},
			{Nombre: "Aguja", Cantidad: dec("2")},
			{Nombre: "Costilla", Cantidad: dec("3")},
		},
	})
	require.NoError(t, err)

	assert.True(t, act.Origen.Cantidad.Equal(dec("12")))
	assert.EqualValues(t, 1, contarOrigenes(t, e, el.ID))
	require.Len(t, act.Lineas, 3)
	assert.Equal(t, lomo, salidaPorNombre(t, act, "Lomo limpio").IngredienteID)
	assert.NotEqual(t, aguja, salidaPorNombre(t, act, "Aguja").IngredienteID, "la salida retirada se borra y la nueva reutiliza el nombre")
	assert.True(t, act.Restos.Equal(dec("1")))

	_, err = e.ingredientes.ObtenerPorID(ctx, mustID(t, aguja))
	requireKind(t, err, apierror.KindNotFound)

	costilla, err := e.ingredientes.ObtenerPorID(ctx, mustID(t, salidaPorNombre(t, act, "Costilla").IngredienteID))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sulfitos"}, nombresAlergenos(costilla.Alergenos))
}

func TestActualizarEscandallo_SalidaRetiradaEnUsoSeConserva(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	cerdo := e.ingrediente(t, "Cerdo")
	el := e.escandallo(t, cerdo.ID, "10", "Lomo", "5", "Recortes", "3")
	lomo := salidaPorNombre(t, el, "Lomo").IngredienteID
	recortes := salidaPorNombre(t, el, "Recortes").IngredienteID
	e.combinado(t, "Albóndigas", "0", false, recortes, "500")

	act, err := e.elaborados.ActualizarEscandallo(ctx, mustID(t, el.ID), dto.ActualizarEscandalloRequest{
		Version:     el.Version,
		PesoInicial: dec("10"),
		Salidas:     []dto.SalidaEscandalloRequest{{ID: &lomo, Nombre: "Lomo", Cantidad: dec("5")}},
	})
	require.NoError(t, err)
	require.Len(t, act.Lineas, 1)

	_, err = e.ingredientes.ObtenerPorID(ctx, mustID(t, recortes))
	assert.NoError(t, err)
}

func TestActualizarEscandallo_Rechazos(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	cerdo := e.ingrediente(t, "Cerdo")
	otro := e.escandallo(t, e.ingrediente(t, "Ternera").ID, "4", "Babilla", "4")
	el := e.escandallo(t, cerdo.ID, "10", "Lomo", "6")
	lomo := el.Lineas[0].IngredienteID
	ajena := otro.Lineas[0].IngredienteID
	sal := e.ingrediente(t, "Sal")
	comb := e.combinado(t, "Salmuera", "0", false, sal.ID, "1")

	t.Run("salida de otro escandallo", func(t *testing.T) {
		_, err := e.elaborados.ActualizarEscandallo(ctx, mustID(t, el.ID), dto.ActualizarEscandalloRequest{
			Version: el.Version, PesoInicial: dec("10"),
			Salidas: []dto.SalidaEscandalloRequest{{ID: &ajena, Nombre: "Babilla", Cantidad: dec("4")}},
		})
		requireKind(t, err, apierror.KindValidation)
		assert.Contains(t, err.Error(), "no pertenece")
	})
	t.Run("ninguna salida con cantidad", func(t *testing.T) {
		_, err := e.elaborados.ActualizarEscandallo(ctx, mustID(t, el.ID), dto.ActualizarEscandalloRequest{
			Version: el.Version, PesoInicial: dec("10"),
			Salidas: []dto.SalidaEscandalloRequest{{ID: &lomo, Nombre: "Lomo", Cantidad: dec("0")}},
		})
		requireKind(t, err, apierror.KindValidation)
	})
	t.Run("no es escandallo", func(t *testing.T) {
		_, err := e.elaborados.ActualizarEscandallo(ctx, mustID(t, comb.ID), dto.ActualizarEscandalloRequest{
			Version: 1, PesoInicial: dec("1"),
			Salidas: []dto.SalidaEscandalloRequest{{Nombre: "Z", Cantidad: dec("1")}},
		})
		requireKind(t, err, apierror.KindValidation)
	})
	t.Run("inexistente", func(t *testing.T) {
		_, err := e.elaborados.ActualizarEscandallo(ctx, uuid.New(), dto.ActualizarEscandalloRequest{
			Version: 1, PesoInicial: dec("1"),
			Salidas: []dto.SalidaEscandalloRequest{{Nombre: "Z", Cantidad: dec("1")}},
		})
		requireKind(t, err, apierror.KindNotFound)
	})
	t.Run("sin linea de origen", func(t *testing.T) {
		require.NoError(t, e.db.Where("elaborado_id = ? AND es_origen = ?", el.ID, true).
			Delete(&model.ElaboradoIngrediente{}).Error)
		_, err := e.elaborados.ActualizarEscandallo(ctx, mustID(t, el.ID), dto.ActualizarEscandalloRequest{
			Version: el.Version, PesoInicial: dec("10"),
			Salidas: []dto.SalidaEscandalloRequest{{ID: &lomo, Nombre: "Lomo", Cantidad: dec("6")}},
		})
		requireKind(t, err, apierror.KindIntegrity)
	})
}

func TestLineaDeOrigenUnicaEnBaseDeDatos(t *testing.T) {
	e := nuevoEntorno(t)
	cerdo := e.ingrediente(t, "Cerdo")
	ternera := e.ingrediente(t, "Ternera")
	el := e.escandallo(t, cerdo.ID, "10", "Lomo", "6")

	err := e.db.Create(&model.ElaboradoIngrediente{
		ElaboradoID:   mustID(t, el.ID),
		IngredienteID: mustID(t, ternera.ID),
		Cantidad:      dec("1"),
		EsOrigen:      true,
	}).Error
	assert.Error(t, err)
}

func TestEliminar_EscandalloConSalidasEnUso(t *testing.T) {
	e := nuevoEntorno(t)
	cerdo := e.ingrediente(t, "Cerdo")
	el := e.escandallo(t, cerdo.ID, "10", "Lomo", "5", "Recortes", "3")
	recortes := salidaPorNombre(t, el, "Recortes").IngredienteID
	e.combinado(t, "Albóndigas", "0", false, recortes, "500")
	antes := volcado(t, e.db)

	err := e.elaborados.Eliminar(context.Background(), mustID(t, el.ID))
	requireKind(t, err, apierror.KindIntegrity)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{recortes}, apiErr.IDs)
	assert.Equal(t, antes, volcado(t, e.db))
}

func TestEliminar_EscandalloBorraSalidas(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	cerdo := e.ingrediente(t, "Cerdo")
	el := e.escandallo(t, cerdo.ID, "10", "Lomo", "5", "Aguja", "3")

	require.NoError(t, e.elaborados.Eliminar(ctx, mustID(t, el.ID)))

	_, err := e.elaborados.ObtenerPorID(ctx, mustID(t, el.ID))
	requireKind(t, err, apierror.KindNotFound)
	for _, l := range el.Lineas {
		_, err := e.ingredientes.ObtenerPorID(ctx, mustID(t, l.IngredienteID))
		requireKind(t, err, apierror.KindNotFound)
	}
	_, err = e.ingredientes.ObtenerPorID(ctx, mustID(t, cerdo.ID))
	assert.NoError(t, err, "el origen nunca se borra")
}

func TestEliminar_Combinado(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	sal := e.ingrediente(t, "Sal")
	agua := e.ingrediente(t, "Agua")
	el := e.combinado(t, "Salmuera", "1000", true, agua.ID, "950", sal.ID, "50")
	producido := el.Origen.IngredienteID

	t.Run("en uso", func(t *testing.T) {
		otro := e.combinado(t, "Aceitunas", "0", false, producido, "200")
		err := e.elaborados.Eliminar(ctx, mustID(t, el.ID))
		requireKind(t, err, apierror.KindIntegrity)
		require.NoError(t, e.elaborados.Eliminar(ctx, mustID(t, otro.ID)))
	})

	require.NoError(t, e.elaborados.Eliminar(ctx, mustID(t, el.ID)))
	_, err := e.ingredientes.ObtenerPorID(ctx, mustID(t, producido))
	requireKind(t, err, apierror.KindNotFound)
	for _, id := range []string{sal.ID, agua.ID} {
		_, err := e.ingredientes.ObtenerPorID(ctx, mustID(t, id))
		assert.NoError(t, err)
	}
}

func TestEliminar_ConLotes(t *testing.T) {
	e := nuevoEntorno(t)
	sal := e.ingrediente(t, "Sal")
	el := e.combinado(t, "Sal fina", "0", false, sal.ID, "0")
	_, err := e.lotes.CrearLote(context.Background(), dto.CrearLoteRequest{
		ElaboradoID: el.ID, FechaProduccion: "2024-03-15", PesoTotal: dec("1"),
	})
	require.NoError(t, err)

	err = e.elaborados.Eliminar(context.Background(), mustID(t, el.ID))
	requireKind(t, err, apierror.KindIntegrity)
}

func TestListarElaborados(t *testing.T) {
	e := nuevoEntorno(t)
	cerdo := e.ingrediente(t, "Cerdo")
	sal := e.ingrediente(t, "Sal")
	e.escandallo(t, cerdo.ID, "10", "Lomo", "6")
	e.combinado(t, "Salmuera", "0", false, sal.ID, "1")

	res, err := e.elaborados.Listar(context.Background(), dto.ElaboradoFilter{Forma: model.FormaEscandallo})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	assert.Equal(t, "Despiece", res.Data[0].Nombre)

	res, err = e.elaborados.Listar(context.Background(), dto.ElaboradoFilter{Nombre: "salm"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Salmuera", res.Data[0].Nombre)
}
