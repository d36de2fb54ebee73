package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

const (
	SandboxBase = "https://sandbox.sslcommerz.com"
	LiveBase    = "https://securepay.sslcommerz.com"

	initPath = "/gwprocess/v4/api.php"
)

type Config struct {
	StoreID       string
	StorePassword string
	Live          bool
	// APIBase overrides the sandbox/live base URL.
	APIBase string
	// PublicURL is where the processor posts callbacks, e.g. https://api.example.com/api/payments.
	PublicURL string
	Timeout   time.Duration
}

func (c Config) base() string {
	if c.APIBase != "" {
		return strings.TrimRight(c.APIBase, "/")
	}
	if c.Live {
		return LiveBase
	}
	return SandboxBase
}

// SSLCommerz opens hosted-checkout sessions.
type SSLCommerz struct {
	cfg  Config
	http *http.Client
}

func NewSSLCommerz(cfg Config, hc *http.Client) *SSLCommerz {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &SSLCommerz{cfg: cfg, http: hc}
}

type initResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

func (g *SSLCommerz) BeginTransaction(ctx context.Context, req usecase.PaymentRequest) (usecase.PaymentSession, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return usecase.PaymentSession{}, fmt.Errorf("%w: invalid amount %q", domain.ErrGateway, req.Amount)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	form := g.form(req, amount)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.base()+initPath, strings.NewReader(form.Encode()))
	if err != nil {
		return usecase.PaymentSession{}, fmt.Errorf("%w: build request: %v", domain.ErrGateway, err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.http.Do(httpReq)
	if err != nil {
		return usecase.PaymentSession{}, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return usecase.PaymentSession{}, fmt.Errorf("%w: read response: %v", domain.ErrGateway, err)
	}
	logging.FromCtx(ctx).Debug("gateway session init",
		"tran_id", req.TransactionID, "http_status", resp.StatusCode, "took_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return usecase.PaymentSession{}, fmt.Errorf("%w: processor answered %d", domain.ErrGateway, resp.StatusCode)
	}
	var out initResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return usecase.PaymentSession{}, fmt.Errorf("%w: decode response: %v", domain.ErrGateway, err)
	}
	if !strings.EqualFold(out.Status, "SUCCESS") || out.GatewayPageURL == "" {
		reason := out.FailedReason
		if reason == "" {
			reason = "no checkout url returned"
		}
		return usecase.PaymentSession{}, fmt.Errorf("%w: %s", domain.ErrGateway, reason)
	}
	return usecase.PaymentSession{RedirectURL: out.GatewayPageURL, TransactionID: req.TransactionID}, nil
}

// form builds the credentials into each request body; nothing is shared across calls.
func (g *SSLCommerz) form(req usecase.PaymentRequest, amount decimal.Decimal) url.Values {
	cb := strings.TrimRight(g.cfg.PublicURL, "/")
	ship := req.Shipping
	return url.Values{
		"store_id":         {g.cfg.StoreID},
		"store_passwd":     {g.cfg.StorePassword},
		"total_amount":     {amount.StringFixed(2)},
		"currency":         {req.Currency},
		"tran_id":          {req.TransactionID},
		"success_url":      {cb + "/success"},
		"fail_url":         {cb + "/fail"},
		"cancel_url":       {cb + "/cancel"},
		"ipn_url":          {cb + "/ipn"},
		"product_name":     {"Motorcycle"},
		"product_category": {"Vehicle"},
		"product_profile":  {"physical-goods"},
		"cus_name":         {req.CustomerName},
		"cus_email":        {req.CustomerEmail},
		"cus_add1":         {ship.Address},
		"cus_city":         {ship.City},
		"cus_postcode":     {ship.Postcode},
		"cus_country":      {"Bangladesh"},
		"cus_phone":        {ship.Phone},
		"shipping_method":  {"Courier"},
		"num_of_item":      {"1"},
		"ship_name":        {ship.Name},
		"ship_add1":        {ship.Address},
		"ship_city":        {ship.City},
		"ship_postcode":    {ship.Postcode},
		"ship_country":     {"Bangladesh"},
		"value_a":          {req.CorrelationID},
	}
}

var _ usecase.PaymentGateway = (*SSLCommerz)(nil)
