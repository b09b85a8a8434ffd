package handler

import (
	"net/http"

	"trazabilidad/internal/dto"
	"trazabilidad/internal/service"

	"github.com/gin-gonic/gin"
)

type ElaboradosHandler struct{ svc service.ElaboradoService }

func NewElaboradosHandler(svc service.ElaboradoService) *ElaboradosHandler {
	return &ElaboradosHandler{svc: svc}
}

// CrearCombinado POST /v1/elaborados
func (h *ElaboradosHandler) CrearCombinado(c *gin.Context) {
	var req dto.CrearCombinadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearCombinado(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CrearEscandallo POST /v1/elaborados/escandallo
func (h *ElaboradosHandler) CrearEscandallo(c *gin.Context) {
	var req dto.CrearEscandalloRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearEscandallo(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ActualizarEscandallo PUT /v1/elaborados/:id/escandallo
func (h *ElaboradosHandler) ActualizarEscandallo(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ActualizarEscandalloRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarEscandallo(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar GET /v1/elaborados
func (h *ElaboradosHandler) Listar(c *gin.Context) {
	var filter dto.ElaboradoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID GET /v1/elaborados/:id
func (h *ElaboradosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar DELETE /v1/elaborados/:id
func (h *ElaboradosHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
