package handler

import (
	"fmt"
	"net/http"

	"trazabilidad/internal/dto"
	"trazabilidad/internal/service"

	"github.com/gin-gonic/gin"
)

type LotesHandler struct {
	svc       service.LoteService
	etiquetas service.EtiquetaService
}

func NewLotesHandler(svc service.LoteService, etiquetas service.EtiquetaService) *LotesHandler {
	return &LotesHandler{svc: svc, etiquetas: etiquetas}
}

// Crear POST /v1/lotes
func (h *LotesHandler) Crear(c *gin.Context) {
	var req dto.CrearLoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearLote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SiguienteNumero GET /v1/elaborados/:id/siguiente-lote
// Informational only: CrearLote assigns the number inside its own transaction.
func (h *LotesHandler) SiguienteNumero(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	n, err := h.svc.SiguienteNumero(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SiguienteLoteResponse{ElaboradoID: id.String(), Numero: n})
}

// Listar GET /v1/lotes
func (h *LotesHandler) Listar(c *gin.Context) {
	var filter dto.LoteFilter
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

// ObtenerPorID GET /v1/lotes/:id
func (h *LotesHandler) ObtenerPorID(c *gin.Context) {
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

// Actualizar PATCH /v1/lotes/:id
func (h *LotesHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ActualizarLoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarLote(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar POST /v1/lotes/:id/cierres
func (h *LotesHandler) Cerrar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.CerrarLoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CerrarLote(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Etiqueta GET /v1/lotes/:id/etiqueta
func (h *LotesHandler) Etiqueta(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.etiquetas.Aplanar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EtiquetaPDF GET /v1/lotes/:id/etiqueta.pdf
func (h *LotesHandler) EtiquetaPDF(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b, err := h.etiquetas.PDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=etiqueta_%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", b)
}

// EtiquetaTexto GET /v1/lotes/:id/etiqueta.txt
func (h *LotesHandler) EtiquetaTexto(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	txt, err := h.etiquetas.Texto(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(txt))
}
