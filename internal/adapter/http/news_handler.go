package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/http/middleware"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type NewsHandler struct {
	news *usecase.News
}

func NewNewsHandler(news *usecase.News) *NewsHandler {
	return &NewsHandler{news: news}
}

// image is a URL to an already hosted picture.
type newsReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	Image       *string `json:"image"`
	IsPublished *bool   `json:"isPublished"`
}

func (r newsReq) input() usecase.NewsInput {
	return usecase.NewsInput{
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		Image:       r.Image,
		IsPublished: r.IsPublished,
	}
}

func (h *NewsHandler) List(c *gin.Context) {
	articles, err := h.news.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": articles})
}

func (h *NewsHandler) ListAll(c *gin.Context) {
	articles, err := h.news.ListAll(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": articles})
}

func (h *NewsHandler) Get(c *gin.Context) {
	a, err := h.news.Read(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *NewsHandler) Create(c *gin.Context) {
	var req newsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid news payload")
		return
	}
	a, err := h.news.Create(c.Request.Context(), middleware.Caller(c), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *NewsHandler) Update(c *gin.Context) {
	var req newsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid news payload")
		return
	}
	a, err := h.news.Update(c.Request.Context(), middleware.Caller(c), c.Param("id"), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *NewsHandler) Delete(c *gin.Context) {
	if err := h.news.Delete(c.Request.Context(), middleware.Caller(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
