package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/http/middleware"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type OrderHandler struct {
	create *usecase.CreateOrder
	query  *usecase.QueryOrders
	manage *usecase.ManageOrders
}

func NewOrderHandler(create *usecase.CreateOrder, query *usecase.QueryOrders, manage *usecase.ManageOrders) *OrderHandler {
	return &OrderHandler{create: create, query: query, manage: manage}
}

type createOrderReq struct {
	BikeID string `json:"bikeId" binding:"required"`
}

// CreateOrder handler: translate to use case input
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bikeId is required")
		return
	}

	idemKey := c.GetHeader("Idempotency-Key") // prevent duplicated requests
	if idemKey == "" {
		idemKey = c.GetHeader("X-Idempotency-Key")
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	o, err := h.create.Execute(ctx, usecase.CreateOrderInput{
		Caller:         middleware.Caller(c),
		BikeID:         req.BikeID,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResp(o))
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	o, err := h.query.Get(ctx, middleware.Caller(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(o))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	f := usecase.OrderFilter{BuyerID: c.Query("buyer")}
	if s := c.Query("status"); s != "" {
		st, ok := domain.ParseStatus(s)
		if !ok {
			badRequest(c, "unknown status")
			return
		}
		f.Status = st
	}
	var err error
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		badRequest(c, "limit must be a number")
		return
	}
	if f.Offset, err = intQuery(c, "offset"); err != nil {
		badRequest(c, "offset must be a number")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.query.List(ctx, middleware.Caller(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]orderResp, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResp(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *OrderHandler) GetStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	v, err := h.query.Status(ctx, middleware.Caller(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /orders/:id/status (admin)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	to, ok := domain.ParseStatus(req.Status)
	if !ok {
		badRequest(c, "unknown status")
		return
	}
	o, err := h.manage.UpdateStatus(c.Request.Context(), middleware.Caller(c), c.Param("id"), to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(o))
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	o, err := h.manage.Cancel(c.Request.Context(), middleware.Caller(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(o))
}

func (h *OrderHandler) Retry(c *gin.Context) {
	o, err := h.manage.RetryPayment(c.Request.Context(), middleware.Caller(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(o))
}

func intQuery(c *gin.Context, name string) (int, error) {
	s := c.Query(name)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
