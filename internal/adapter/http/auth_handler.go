package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/http/middleware"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type AuthHandler struct {
	identity *usecase.Identity
}

func NewAuthHandler(identity *usecase.Identity) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, email and password are required")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.identity.Register(ctx, usecase.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": toUserResp(u)})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	out, err := h.identity.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      out.Token,
		"token_type": "Bearer",
		"expires_at": out.ExpiresAt.UTC(),
		"user":       toUserResp(out.User),
	})
}

// GET /auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	caller := middleware.Caller(c)
	u, err := h.identity.User(c.Request.Context(), caller.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResp(u)})
}
