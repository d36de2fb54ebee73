package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/http/middleware"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type AdminHandler struct {
	admin *usecase.Admin
}

func NewAdminHandler(admin *usecase.Admin) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.admin.Dashboard(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]userResp, 0, len(users))
	for i := range users {
		out = append(out, toUserResp(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (h *AdminHandler) ToggleBlock(c *gin.Context) {
	u, err := h.admin.ToggleBlock(c.Request.Context(), middleware.Caller(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResp(u)})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.admin.DeleteUser(c.Request.Context(), middleware.Caller(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /admin/bikes?category=&sortBy=&sortOrder=
func (h *AdminHandler) Bikes(c *gin.Context) {
	bikes, err := h.admin.ListBikes(c.Request.Context(), middleware.Caller(c), usecase.BikeFilter{
		Category:  c.Query("category"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bikes": bikes})
}

type changeRoleReq struct {
	Role string `json:"role" binding:"required"`
}

func (h *AdminHandler) ChangeRole(c *gin.Context) {
	var req changeRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "role is required")
		return
	}
	u, err := h.admin.ChangeRole(c.Request.Context(), middleware.Caller(c), c.Param("id"), domain.Role(req.Role))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResp(u)})
}
