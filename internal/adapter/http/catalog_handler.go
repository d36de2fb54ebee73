package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/http/middleware"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type CatalogHandler struct {
	catalog *usecase.Catalog
}

func NewCatalogHandler(catalog *usecase.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type bikeReq struct {
	Title          *string           `json:"title"`
	Description    *string           `json:"description"`
	Price          *decimal.Decimal  `json:"price"`
	Images         []string          `json:"images"`
	Specifications map[string]string `json:"specifications"`
	Category       *string           `json:"category"`
	IsActive       *bool             `json:"isActive"`
}

func (r bikeReq) input() usecase.BikeInput {
	return usecase.BikeInput{
		Title:          r.Title,
		Description:    r.Description,
		Price:          r.Price,
		Images:         r.Images,
		Specifications: r.Specifications,
		Category:       r.Category,
		IsActive:       r.IsActive,
	}
}

// GET /bikes?category=&minPrice=&maxPrice=&sortBy=&sortOrder=&specs.engine=150cc
func (h *CatalogHandler) List(c *gin.Context) {
	f := usecase.BikeFilter{
		Category:  c.Query("category"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Specs:     map[string]string{},
	}
	for _, p := range []struct {
		name string
		dst  **float64
	}{{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice}} {
		if s := c.Query(p.name); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				badRequest(c, p.name+" must be a number")
				return
			}
			*p.dst = &v
		}
	}
	for k, v := range c.Request.URL.Query() {
		if name, ok := strings.CutPrefix(k, "specs."); ok && name != "" && len(v) > 0 {
			f.Specs[name] = v[0]
		}
	}

	bikes, err := h.catalog.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bikes": bikes})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	b, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var req bikeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid bike payload")
		return
	}
	b, err := h.catalog.Create(c.Request.Context(), middleware.Caller(c), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *CatalogHandler) Update(c *gin.Context) {
	var req bikeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid bike payload")
		return
	}
	b, err := h.catalog.Update(c.Request.Context(), middleware.Caller(c), c.Param("id"), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), middleware.Caller(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
