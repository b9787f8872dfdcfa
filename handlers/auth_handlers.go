package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sitepulse/api/middleware"
	"sitepulse/api/models"
	"sitepulse/api/utils"
)

// AuthHandlers signs the dashboard operator in and out. Account management
// lives outside this service; the operator comes from configuration.
type AuthHandlers struct {
	Operator     models.Operator
	Tokens       *utils.TokenIssuer
	SecureCookie bool
	log          *zap.Logger
}

func NewAuthHandlers(operator models.Operator, tokens *utils.TokenIssuer, secureCookie bool, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{Operator: operator, Tokens: tokens, SecureCookie: secureCookie, log: log}
}

// Login checks the operator credentials and issues a token, both as an
// HttpOnly cookie and in the response body.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	if len(h.Operator.HashedPassword) == 0 || !strings.EqualFold(req.Email, h.Operator.Email) {
		h.log.Info("Login failed: unknown operator", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword(h.Operator.HashedPassword, []byte(req.Password)); err != nil {
		h.log.Info("Login failed: password mismatch", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: "invalid credentials"})
		return
	}

	token, err := h.Tokens.Generate(h.Operator.Email, time.Now())
	if err != nil {
		h.log.Error("Failed to issue operator token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to generate authentication token"})
		return
	}

	c.SetCookie(middleware.TokenCookie, token, int(h.Tokens.TTL()/time.Second), "/", "", h.SecureCookie, true)

	h.log.Info("Operator logged in", zap.String("email", h.Operator.Email))
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
	})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
