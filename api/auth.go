package api

import (
	"net/http"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/service/auth"
	"github.com/Domenick1991/spacevoyager/internal/validation"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service auth.AuthUseCase
	engine  *validation.Engine
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	Name            string  `json:"name"`
	ConfirmPassword *string `json:"confirmPassword,omitempty"`
}

func NewAuthHandler(service auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{service: service, engine: validation.NewEngine()}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/login", h.login)
	router.POST("/register", h.register)
	router.POST("/logout", h.logout)
	router.GET("/me", h.me)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	// The confirmation field is optional; when sent it must repeat the password.
	if req.ConfirmPassword != nil {
		res := h.engine.Validate(map[string]string{"confirmPassword": *req.ConfirmPassword}, validation.RegisterFormRules(req.Password))
		if msg := res.FirstError("confirmPassword"); msg != "" {
			writeError(c, domain.NewValidationError("confirmPassword: "+msg))
			return
		}
	}
	user, err := h.service.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) me(c *gin.Context) {
	user, err := h.service.CurrentUser(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in", "login": loginLocation(c)})
		return
	}
	c.JSON(http.StatusOK, user)
}
