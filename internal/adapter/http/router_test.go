package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/http/middleware"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/security"
	"github.com/siyaamtanzeel/Motoshop/internal/testutil"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientURL = "https://shop.example"

func init() { gin.SetMode(gin.TestMode) }

type env struct {
	r        *gin.Engine
	orders   *testutil.Orders
	users    *testutil.Users
	journal  *testutil.Journal
	tokens   *security.Tokens
	verifier *security.CallbackVerifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		orders:   testutil.NewOrders(),
		users:    testutil.NewUsers(testutil.Buyer("buyer-1"), testutil.Buyer("buyer-2"), testutil.AdminUser("admin-1")),
		journal:  &testutil.Journal{},
		tokens:   security.NewTokens(security.TokenConfig{Secret: "test-secret", Issuer: "motoshop", Audience: "motoshop-web", TTL: time.Hour}),
		verifier: security.NewCallbackVerifier("store-pass"),
	}
	withdrawn := testutil.Bike("bike-off", 7000)
	withdrawn.IsActive = false
	catalog := testutil.NewCatalog(testutil.Bike("bike-1", 5000), withdrawn)
	views := testutil.NewStatusCache()
	events := usecase.NewStatusEvents(views, &testutil.Publisher{})

	identity := usecase.NewIdentity(e.users, testutil.PlainHasher{}, e.tokens)
	reconcile := usecase.NewReconcilePayment(e.orders, events)
	h := Handlers{
		Auth: NewAuthHandler(identity),
		Orders: NewOrderHandler(
			usecase.NewCreateOrder(e.orders, catalog, testutil.NewIdempotency(), events, "BDT"),
			usecase.NewQueryOrders(e.orders, views),
			usecase.NewManageOrders(e.orders, events),
		),
		Payment: NewPaymentHandler(
			usecase.NewInitiatePayment(e.orders, e.users, &testutil.Gateway{}, usecase.PaymentSettings{AttemptTTL: 30 * time.Minute}),
			usecase.NewProcessCallback(reconcile, e.journal),
			clientURL, time.Second,
		),
		Catalog: NewCatalogHandler(usecase.NewCatalog(catalog)),
		News:    NewNewsHandler(usecase.NewNews(testutil.NewNews())),
		Admin:   NewAdminHandler(usecase.NewAdmin(e.users, catalog, e.orders)),
	}
	e.r = NewRouter(h, middleware.NewAuthz(e.tokens, identity), middleware.NewCallbackVerify(e.verifier, clientURL))
	return e
}

func (e *env) token(t *testing.T, userID string) string {
	t.Helper()
	tok, _, err := e.tokens.Issue(&domain.User{ID: userID})
	require.NoError(t, err)
	return tok
}

func (e *env) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) callback(path string, form url.Values, sign bool) *httptest.ResponseRecorder {
	if sign {
		keys := []string{"tran_id", "value_a", "status", "amount", "currency"}
		form.Set("verify_key", strings.Join(keys, ","))
		form.Set("verify_sign", e.verifier.Sign(form, keys))
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

// placeOrder creates an order for buyer-1 and opens a payment session for it.
func (e *env) placeOrder(t *testing.T) (orderID, tranID string) {
	t.Helper()
	tok := e.token(t, "buyer-1")
	w := e.do(http.MethodPost, "/api/orders", gin.H{"bikeId": "bike-1"}, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID = decode(t, w)["id"].(string)

	w = e.do(http.MethodPost, "/api/payments", gin.H{"orderId": orderID, "shippingDetails": testutil.Shipping()}, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Contains(t, body["url"], "https://sandbox.example/pay/")
	return orderID, body["transactionId"].(string)
}

func TestPaymentFlow_SuccessRedirectAndIPN(t *testing.T) {
	e := newEnv(t)
	orderID, tx := e.placeOrder(t)

	form := url.Values{"tran_id": {tx}, "value_a": {orderID}, "status": {"VALID"}, "amount": {"5000.00"}, "currency": {"BDT"}}
	w := e.callback("/api/payments/success", form, true)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, clientURL+"/orders/"+orderID+"?status=success", w.Header().Get("Location"))

	w = e.do(http.MethodGet, "/api/orders/"+orderID, nil, e.token(t, "buyer-1"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", decode(t, w)["status"])

	// the IPN for the same transaction is a duplicate and is still acknowledged
	w = e.callback("/api/payments/ipn", url.Values{"tran_id": {tx}, "value_a": {orderID}, "status": {"VALID"}, "amount": {"5000"}, "currency": {"BDT"}}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["received"])

	assert.Equal(t, 2, e.journal.Len())

	// a paid order cannot be paid again
	w = e.do(http.MethodPost, "/api/payments", gin.H{"orderId": orderID, "shippingDetails": testutil.Shipping()}, e.token(t, "buyer-1"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_state", decode(t, w)["error"])
}

func TestPaymentFlow_MismatchRedirectsWithValidationReason(t *testing.T) {
	e := newEnv(t)
	orderID, tx := e.placeOrder(t)

	form := url.Values{"tran_id": {tx}, "value_a": {orderID}, "status": {"VALID"}, "amount": {"1.00"}, "currency": {"BDT"}}
	w := e.callback("/api/payments/fail", form, true)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, clientURL+"/orders/"+orderID+"?status=failed&reason=validation", w.Header().Get("Location"))

	o, err := e.orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, o.Status)
	assert.Equal(t, domain.ReasonAmountMismatch, o.FailureReason)
}

func TestPaymentFlow_DeclineRedirectCarriesReason(t *testing.T) {
	e := newEnv(t)
	orderID, tx := e.placeOrder(t)

	form := url.Values{"tran_id": {tx}, "value_a": {orderID}, "status": {"CANCELLED"}, "amount": {"5000"}, "currency": {"BDT"}}
	w := e.callback("/api/payments/cancel", form, true)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, clientURL+"/orders/"+orderID+"?reason=CANCELLED&status=failed", w.Header().Get("Location"))
}

func TestPaymentCallbacks_Rejections(t *testing.T) {
	e := newEnv(t)
	orderID, tx := e.placeOrder(t)

	w := e.callback("/api/payments/success", url.Values{"tran_id": {"unknown"}, "value_a": {orderID}, "status": {"VALID"}, "amount": {"5000"}, "currency": {"BDT"}}, true)
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), clientURL+"/error?message="))

	forged := url.Values{"tran_id": {tx}, "value_a": {orderID}, "status": {"VALID"}, "amount": {"5000"}, "currency": {"BDT"},
		"verify_key": {"tran_id,status"}, "verify_sign": {"0000"}}
	w = e.callback("/api/payments/success", forged, false)
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), clientURL+"/error?message="))

	w = e.callback("/api/payments/ipn", forged, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	o, err := e.orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, o.Status)
	// forged callbacks never reach the journal
	assert.Equal(t, 1, e.journal.Len())
}

func TestAuth_RegisterLoginVerify(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/auth/register", gin.H{"name": "Nadia", "email": "Nadia@Example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/auth/register", gin.H{"name": "Nadia", "email": "nadia@example.com", "password": "secret1"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodPost, "/api/auth/login", gin.H{"email": "nadia@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/auth/login", gin.H{"email": "nadia@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	tok := decode(t, w)["token"].(string)

	w = e.do(http.MethodGet, "/api/auth/verify", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "nadia@example.com", user["email"])
	assert.Equal(t, "buyer", user["role"])
}

func TestAuthz(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/orders", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/orders", nil, "garbage").Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/admin/dashboard", nil, e.token(t, "buyer-1")).Code)

	w := e.do(http.MethodGet, "/api/admin/dashboard", nil, e.token(t, "admin-1"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["users"])

	// blocking takes effect on the next request with an unexpired token
	tok := e.token(t, "buyer-2")
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/orders", nil, tok).Code)
	require.NoError(t, e.users.SetActive(context.Background(), "buyer-2", false))
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/orders", nil, tok).Code)
}

func TestOrders_StatusAndAdminTransitions(t *testing.T) {
	e := newEnv(t)
	orderID, tx := e.placeOrder(t)
	e.callback("/api/payments/ipn", url.Values{"tran_id": {tx}, "value_a": {orderID}, "status": {"VALIDATED"}, "amount": {"5000"}, "currency": {"BDT"}}, true)

	w := e.do(http.MethodGet, "/api/orders/"+orderID+"/status", nil, e.token(t, "buyer-2"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPatch, "/api/orders/"+orderID+"/status", gin.H{"status": "shipped"}, e.token(t, "buyer-1"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPatch, "/api/orders/"+orderID+"/status", gin.H{"status": "shipped"}, e.token(t, "admin-1"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "shipped", decode(t, w)["status"])

	w = e.do(http.MethodPatch, "/api/orders/"+orderID+"/status", gin.H{"status": "paid"}, e.token(t, "admin-1"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodPatch, "/api/orders/"+orderID+"/status", gin.H{"status": "lost"}, e.token(t, "admin-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, "/api/orders/"+orderID+"/status", nil, e.token(t, "buyer-1"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shipped", decode(t, w)["status"])
}

func TestCatalog_PublicListAndAdminCreate(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/api/bikes?category=sport&specs.engine=150cc", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["bikes"], 1)

	w = e.do(http.MethodGet, "/api/bikes?minPrice=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := gin.H{"title": "CB Hornet", "price": "2500.50", "category": "street"}
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/bikes", body, e.token(t, "buyer-1")).Code)

	w = e.do(http.MethodPost, "/api/bikes", body, e.token(t, "admin-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "admin-1", created["seller"])

	w = e.do(http.MethodDelete, "/api/bikes/"+created["id"].(string), nil, e.token(t, "admin-1"))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdmin_BikesAndUserDeletion(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "admin-1")

	w := e.do(http.MethodGet, "/api/bikes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["bikes"], 1)

	w = e.do(http.MethodGet, "/api/admin/bikes", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["bikes"], 2)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/admin/bikes", nil, e.token(t, "buyer-1")).Code)

	// buyer-1 places an order, so only buyer-2 can be removed
	e.placeOrder(t)
	assert.Equal(t, http.StatusConflict, e.do(http.MethodDelete, "/api/admin/users/buyer-1", nil, admin).Code)
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/admin/users/buyer-2", nil, admin).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/admin/users/buyer-2", nil, admin).Code)
}

func TestNews_PublicReadAdminWrite(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "admin-1")
	body := gin.H{"title": "Winter service tips", "description": "Keep it running", "content": "Check the chain.",
		"image": "https://cdn.example.com/winter.jpg"}

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/api/news", body, "").Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/news", body, e.token(t, "buyer-1")).Code)

	w := e.do(http.MethodPost, "/api/news", body, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	w = e.do(http.MethodGet, "/api/news/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["views"])

	w = e.do(http.MethodPut, "/api/news/"+id, gin.H{"isPublished": false}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/news/"+id, nil, "").Code)

	w = e.do(http.MethodGet, "/api/news", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["news"])
	w = e.do(http.MethodGet, "/api/admin/news", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["news"], 1)

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/news/"+id, nil, admin).Code)
}
