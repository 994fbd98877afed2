package handler

import (
	"errors"
	"net/http"

	"pixelfood/internal/apierror"
	"pixelfood/internal/dto"
	"pixelfood/internal/guard"
	"pixelfood/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ session *service.AuthSession }

func NewAuthHandler(session *service.AuthSession) *AuthHandler {
	return &AuthHandler{session: session}
}

// Login godoc
// @Summary Inicia sesion en la terminal
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.SesionResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if _, err := h.session.Login(c.Request.Context(), req); err != nil {
		var oe *service.OperacionError
		if errors.As(err, &oe) && !apierror.IsTransport(oe.Err) {
			c.JSON(http.StatusUnauthorized, apierror.New(oe.Mensaje))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sesion())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.session.Logout(c.Request.Context()); err != nil {
		// Memory is already cleared; only the stored copy may linger.
		_ = c.Error(err)
	}
	c.JSON(http.StatusOK, h.sesion())
}

// Sesion describes who is signed in and which sections they may open.
func (h *AuthHandler) Sesion(c *gin.Context) {
	c.JSON(http.StatusOK, h.sesion())
}

func (h *AuthHandler) sesion() dto.SesionResponse {
	u := h.session.Usuario()
	return dto.SesionResponse{
		Estado:    h.session.Estado().String(),
		Usuario:   u,
		Secciones: guard.VisibleSections(u),
	}
}
