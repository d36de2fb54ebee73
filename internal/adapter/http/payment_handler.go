package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/http/middleware"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/observ"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type PaymentHandler struct {
	initiate  *usecase.InitiatePayment
	callbacks *usecase.ProcessCallback
	clientURL string
	timeout   time.Duration
}

// NewPaymentHandler: timeout bounds a whole initiation, gateway call included.
func NewPaymentHandler(initiate *usecase.InitiatePayment, callbacks *usecase.ProcessCallback, clientURL string, timeout time.Duration) *PaymentHandler {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &PaymentHandler{
		initiate:  initiate,
		callbacks: callbacks,
		clientURL: strings.TrimRight(clientURL, "/"),
		timeout:   timeout,
	}
}

type initiatePaymentReq struct {
	OrderID         string                 `json:"orderId" binding:"required"`
	ShippingDetails domain.ShippingDetails `json:"shippingDetails"`
}

// POST /payments
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req initiatePaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId and shippingDetails are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	out, err := h.initiate.Execute(ctx, usecase.InitiatePaymentInput{
		Caller:   middleware.Caller(c),
		OrderID:  req.OrderID,
		Shipping: req.ShippingDetails,
	})
	observ.PaymentInitiated(err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": out.RedirectURL, "transactionId": out.TransactionID})
}

func callbackInput(form url.Values) usecase.CallbackInput {
	return usecase.CallbackInput{
		TransactionID:  form.Get("tran_id"),
		CorrelationID:  form.Get("value_a"),
		ReportedStatus: form.Get("status"),
		Amount:         form.Get("amount"),
		Currency:       form.Get("currency"),
	}
}

func (h *PaymentHandler) reconcile(c *gin.Context, source string) (usecase.CallbackInput, usecase.ReconcileResult, error) {
	if err := c.Request.ParseForm(); err != nil {
		return usecase.CallbackInput{}, usecase.ReconcileResult{}, errors.Join(domain.ErrValidation, err)
	}
	in := callbackInput(c.Request.PostForm)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := h.callbacks.Execute(ctx, source, in, []byte(c.Request.PostForm.Encode()))
	observ.Reconciled(source, res, err)
	return in, res, err
}

// Browser returns the handler for the success/fail/cancel return URLs. The
// buyer is redirected to the storefront order page with the outcome.
func (h *PaymentHandler) Browser(source string) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, res, err := h.reconcile(c, source)
		switch {
		case err == nil:
			c.Redirect(http.StatusFound, h.orderURL(res.OrderID, res.Status, res.Reason))
		case errors.Is(err, domain.ErrValidation) && res.OrderID != "":
			c.Redirect(http.StatusFound, h.clientURL+"/orders/"+url.PathEscape(res.OrderID)+"?status=failed&reason=validation")
		case errors.Is(err, domain.ErrNotFound):
			c.Redirect(http.StatusFound, h.errorURL("Order not found for transaction"))
		case errors.Is(err, domain.ErrInvalidState):
			c.Redirect(http.StatusFound, h.errorURL("Payment was already processed"))
		default:
			logging.From(c).Error("payment callback failed", "source", source, "tran_id", in.TransactionID, "err", err)
			c.Redirect(http.StatusFound, h.errorURL("Payment processing failed"))
		}
	}
}

// IPN acknowledges server-to-server notifications. Only storage failures are
// reported as errors so the processor retries them.
func (h *PaymentHandler) IPN(c *gin.Context) {
	in, _, err := h.reconcile(c, usecase.SourceIPN)
	if err != nil {
		status, _ := statusFor(err)
		if status >= http.StatusInternalServerError {
			logging.From(c).Error("ipn failed", "tran_id", in.TransactionID, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "internal error"})
			return
		}
		logging.From(c).Warn("ipn rejected", "tran_id", in.TransactionID, "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentHandler) orderURL(orderID string, st domain.Status, reason string) string {
	u := h.clientURL + "/orders/" + url.PathEscape(orderID)
	if st.Settled() {
		return u + "?status=success"
	}
	q := url.Values{"status": {"failed"}}
	if reason != "" {
		q.Set("reason", reason)
	}
	return u + "?" + q.Encode()
}

func (h *PaymentHandler) errorURL(msg string) string {
	return h.clientURL + "/error?message=" + url.QueryEscape(msg)
}
