package router

import (
	"time"

	"trazabilidad/internal/config"
	"trazabilidad/internal/handler"
	"trazabilidad/internal/infra"
	"trazabilidad/internal/middleware"
	"trazabilidad/internal/repository"
	"trazabilidad/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: labels are then computed on every request.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	metrics := middleware.NewMetrics()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(metrics.Middleware())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimitPorMinuto > 0 {
		r.Use(middleware.RateLimiter(rdb, cfg.RateLimitPorMinuto, time.Minute))
	}

	// ── Infrastructure ───────────────────────────────────────────────────────
	cache := infra.NewEtiquetaCache(rdb, cfg.EtiquetaCacheTTL)

	// ── Repositories ─────────────────────────────────────────────────────────
	catalogoRepo := repository.NewCatalogoRepository(db)
	ingredienteRepo := repository.NewIngredienteRepository(db)
	elaboradoRepo := repository.NewElaboradoRepository(db)
	loteRepo := repository.NewLoteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	catalogoSvc := service.NewCatalogoService(catalogoRepo)
	ingredienteSvc := service.NewIngredienteService(ingredienteRepo, catalogoRepo, cache)
	elaboradoSvc := service.NewElaboradoService(elaboradoRepo, ingredienteRepo, catalogoRepo, loteRepo, cache)
	loteSvc := service.NewLoteService(loteRepo, elaboradoRepo, catalogoRepo, nil)
	etiquetaSvc := service.NewEtiquetaService(loteRepo, cache, cfg.EtiquetaMaxProfundidad, cfg.EmpresaNombre)

	// ── Handlers ─────────────────────────────────────────────────────────────
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)
	ingredientesH := handler.NewIngredientesHandler(ingredienteSvc)
	elaboradosH := handler.NewElaboradosHandler(elaboradoSvc)
	lotesH := handler.NewLotesHandler(loteSvc, etiquetaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/v1")
	{
		cat := v1.Group("/catalogo")
		{
			cat.GET("/alergenos", catalogoH.ListarAlergenos)
			cat.GET("/unidades", catalogoH.ListarUnidades)
			cat.GET("/tipos", catalogoH.ListarTipos)
			cat.POST("/tipos", catalogoH.CrearTipo)
			cat.PUT("/tipos/:id", catalogoH.RenombrarTipo)
		}

		ing := v1.Group("/ingredientes")
		{
			ing.POST("", ingredientesH.Crear)
			ing.GET("", ingredientesH.Listar)
			ing.GET("/:id", ingredientesH.ObtenerPorID)
			ing.PUT("/:id", ingredientesH.Actualizar)
			ing.DELETE("/:id", ingredientesH.Eliminar)
		}

		elab := v1.Group("/elaborados")
		{
			elab.POST("", elaboradosH.CrearCombinado)
			elab.POST("/escandallo", elaboradosH.CrearEscandallo)
			elab.GET("", elaboradosH.Listar)
			elab.GET("/:id", elaboradosH.ObtenerPorID)
			elab.PUT("/:id/escandallo", elaboradosH.ActualizarEscandallo)
			elab.DELETE("/:id", elaboradosH.Eliminar)
			elab.GET("/:id/siguiente-lote", lotesH.SiguienteNumero)
		}

		lotes := v1.Group("/lotes")
		{
			lotes.POST("", lotesH.Crear)
			lotes.GET("", lotesH.Listar)
			lotes.GET("/:id", lotesH.ObtenerPorID)
			lotes.PATCH("/:id", lotesH.Actualizar)
			lotes.POST("/:id/cierres", lotesH.Cerrar)
			lotes.GET("/:id/etiqueta", lotesH.Etiqueta)
			lotes.GET("/:id/etiqueta.pdf", lotesH.EtiquetaPDF)
			lotes.GET("/:id/etiqueta.txt", lotesH.EtiquetaTexto)
		}
	}

	return r
}
