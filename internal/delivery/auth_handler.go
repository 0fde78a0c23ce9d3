package delivery

import (
	"errors"
	"net/http"
	"time"

	"honeystore/internal/domain"
	"honeystore/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase      domain.UserUseCase
	cookieTTL    time.Duration
	secureCookie bool
	log          *logrus.Logger
}

func NewAuthHandler(uc domain.UserUseCase, cookieTTL time.Duration, secureCookie bool, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase:      uc,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
		log:          logger,
	}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}
}

type RegisterRequest struct {
	Name     string `json:"name"     binding:"required"`
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Register")
	var req RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind request: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing required fields"})
		return
	}

	user, token, err := h.useCase.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}

	h.setSessionCookie(c, token)
	handlerLogger.Infof("User registered: %s", user.ID)
	c.JSON(http.StatusCreated, gin.H{"user": user.Session()})
}

func (h *AuthHandler) Login(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Login")
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind request: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing required fields"})
		return
	}

	user, token, err := h.useCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			handlerLogger.Warnf("Login rejected for %s", req.Email)
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
			return
		}
		respondError(c, handlerLogger, err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"user": user.Session()})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Me")

	user, err := h.useCase.Me(c.Request.Context(), middleware.Session(c))
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.cookieTTL.Seconds()), "/", "", h.secureCookie, true)
}
