package handler

import (
	"net/http"

	"trazabilidad/internal/dto"
	"trazabilidad/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogoHandler struct{ svc service.CatalogoService }

func NewCatalogoHandler(svc service.CatalogoService) *CatalogoHandler {
	return &CatalogoHandler{svc: svc}
}

// ListarAlergenos GET /v1/catalogo/alergenos
func (h *CatalogoHandler) ListarAlergenos(c *gin.Context) {
	resp, err := h.svc.ListarAlergenos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarUnidades GET /v1/catalogo/unidades
func (h *CatalogoHandler) ListarUnidades(c *gin.Context) {
	resp, err := h.svc.ListarUnidades(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarTipos GET /v1/catalogo/tipos
func (h *CatalogoHandler) ListarTipos(c *gin.Context) {
	resp, err := h.svc.ListarTipos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CrearTipo POST /v1/catalogo/tipos
func (h *CatalogoHandler) CrearTipo(c *gin.Context) {
	var req dto.CrearTipoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearTipo(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RenombrarTipo PUT /v1/catalogo/tipos/:id
func (h *CatalogoHandler) RenombrarTipo(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.RenombrarTipoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RenombrarTipo(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
