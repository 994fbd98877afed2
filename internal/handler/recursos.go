package handler

import (
	"net/http"

	"pixelfood/internal/apierror"
	"pixelfood/internal/guard"
	"pixelfood/internal/middleware"
	"pixelfood/internal/model"
	"pixelfood/internal/service"

	"github.com/gin-gonic/gin"
)

// RecursosHandler exposes the uniform CRUD of every resource kind under
// /v1/recursos/:kind.
type RecursosHandler struct{ catalogo *service.Catalogo }

func NewRecursosHandler(catalogo *service.Catalogo) *RecursosHandler {
	return &RecursosHandler{catalogo: catalogo}
}

type listaRecursos struct {
	Items     any             `json:"items"`
	Error     string          `json:"error,omitempty"`
	Controles []guard.Control `json:"controles"`
}

// coleccion resolves :kind and checks the view policy. It writes the response
// and returns false when the request cannot go on.
func (h *RecursosHandler) coleccion(c *gin.Context) (service.Coleccion, bool) {
	kind := model.Kind(c.Param("kind"))
	col, ok := h.catalogo.Coleccion(kind)
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Recurso desconocido"))
		return nil, false
	}
	if !guard.Allow(middleware.GetUsuario(c), guard.Recursos[kind].Ver) {
		c.AbortWithStatus(http.StatusForbidden)
		return nil, false
	}
	return col, true
}

func (h *RecursosHandler) Listar(c *gin.Context) {
	col, ok := h.coleccion(c)
	if !ok {
		return
	}
	items, err := col.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listaRecursos{
		Items:     items,
		Error:     col.Err(),
		Controles: guard.ControlesRecurso(middleware.GetUsuario(c), col.Kind()),
	})
}

func (h *RecursosHandler) Obtener(c *gin.Context) {
	col, ok := h.coleccion(c)
	if !ok {
		return
	}
	item, err := col.Obtener(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *RecursosHandler) Crear(c *gin.Context) {
	col, ok := h.coleccion(c)
	if !ok {
		return
	}
	var attrs model.Attrs
	if err := c.ShouldBindJSON(&attrs); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	if err := col.Create(c.Request.Context(), attrs); err != nil {
		respondError(c, err)
		return
	}
	h.listado(c, col, http.StatusCreated)
}

func (h *RecursosHandler) Actualizar(c *gin.Context) {
	col, ok := h.coleccion(c)
	if !ok {
		return
	}
	var attrs model.Attrs
	if err := c.ShouldBindJSON(&attrs); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	if err := col.Update(c.Request.Context(), c.Param("id"), attrs); err != nil {
		respondError(c, err)
		return
	}
	h.listado(c, col, http.StatusOK)
}

// Eliminar answers 200 even when the backend refused: the failure is in the
// "error" field of the returned list.
func (h *RecursosHandler) Eliminar(c *gin.Context) {
	col, ok := h.coleccion(c)
	if !ok {
		return
	}
	if err := col.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.listado(c, col, http.StatusOK)
}

// listado answers with the collection as refreshed after a mutation.
func (h *RecursosHandler) listado(c *gin.Context, col service.Coleccion, status int) {
	c.JSON(status, listaRecursos{
		Items:     col.Snapshot(),
		Error:     col.Err(),
		Controles: guard.ControlesRecurso(middleware.GetUsuario(c), col.Kind()),
	})
}
