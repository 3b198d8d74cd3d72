package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/checkout-system/internal/catalog"
	"github.com/mmeshcher/checkout-system/internal/model"
	"github.com/mmeshcher/checkout-system/internal/repository"
	"github.com/mmeshcher/checkout-system/internal/service"
	"github.com/mmeshcher/checkout-system/internal/session"
)

type stubService struct {
	products []model.Product

	startProduct model.Product
	startErr     error

	submitOrderID int64
	submitErr     error

	pollStatus model.OrderStatus
	pollErr    error

	order    *model.Order
	orderErr error

	resolveStatus model.OrderStatus
	resolveErr    error
}

func (s *stubService) ListProducts() []model.Product {
	return s.products
}

func (s *stubService) StartCheckout(productID int64) (model.Product, error) {
	return s.startProduct, s.startErr
}

func (s *stubService) SubmitCheckout(ctx context.Context, productID int64, form model.CheckoutForm) (int64, error) {
	return s.submitOrderID, s.submitErr
}

func (s *stubService) PollStatus(ctx context.Context, b session.Binding) (model.OrderStatus, error) {
	if !b.Present {
		return "", service.ErrNoActiveOrder
	}
	return s.pollStatus, s.pollErr
}

func (s *stubService) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return s.order, s.orderErr
}

func (s *stubService) Resolve(ctx context.Context, orderID int64, action string) (model.OrderStatus, error) {
	return s.resolveStatus, s.resolveErr
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	return NewHandler(svc, logger, session.NewManager("test-secret"))
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var body healthResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("status field = %q, want ok", body.Status)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Fatalf("timestamp %q is not RFC3339: %v", body.Timestamp, err)
	}
}

func TestProductDetail_NotFound(t *testing.T) {
	h := newTestHandler(t, &stubService{startErr: catalog.ErrProductNotFound})

	req := httptest.NewRequest(http.MethodGet, "/product/99", nil)
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func checkoutFormValues() url.Values {
	return url.Values{
		"name":        {"Ann"},
		"email":       {"a@x.com"},
		"card_number": {"4111111111111111"},
		"expiry_date": {"12/25"},
		"cvv":         {"123"},
	}
}

func TestSubmitCheckout_RedirectsAndBindsSession(t *testing.T) {
	svc := &stubService{
		startProduct:  model.Product{ID: 1, Name: "Тестовый товар 1", Price: 1000},
		submitOrderID: 7,
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/checkout/1", strings.NewReader(checkoutFormValues().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusSeeOther)
	}
	if loc := res.Header.Get("Location"); loc != "/payment/pending" {
		t.Fatalf("location = %q, want /payment/pending", loc)
	}
	if len(res.Cookies()) == 0 {
		t.Fatalf("order cookie not set after checkout")
	}
}

func TestSubmitCheckout_ValidationError(t *testing.T) {
	svc := &stubService{
		startProduct: model.Product{ID: 1, Name: "Тестовый товар 1", Price: 1000},
		submitErr:    &service.ValidationError{Missing: []string{"cvv"}},
	}
	h := newTestHandler(t, svc)

	values := checkoutFormValues()
	values.Del("cvv")

	req := httptest.NewRequest(http.MethodPost, "/checkout/1", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
	if len(res.Cookies()) != 0 {
		t.Fatalf("order cookie must not be set on validation failure")
	}
}

func TestPaymentPending_NoActiveOrderRedirectsToCatalog(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/payment/pending", nil)
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusFound)
	}
	if loc := res.Header.Get("Location"); loc != "/" {
		t.Fatalf("location = %q, want /", loc)
	}
}

func TestPaymentPending_TerminalStatusRedirectsToResult(t *testing.T) {
	h := newTestHandler(t, &stubService{pollStatus: model.OrderStatusApproved})

	bindRec := httptest.NewRecorder()
	h.sessions.Bind(bindRec, 7)

	req := httptest.NewRequest(http.MethodGet, "/payment/pending", nil)
	req.AddCookie(bindRec.Result().Cookies()[0])
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusFound)
	}
	if loc := res.Header.Get("Location"); loc != "/payment/result/approved" {
		t.Fatalf("location = %q, want /payment/result/approved", loc)
	}
}

func TestPaymentPending_PendingRendersWaitingPage(t *testing.T) {
	h := newTestHandler(t, &stubService{pollStatus: model.OrderStatusPending})

	bindRec := httptest.NewRecorder()
	h.sessions.Bind(bindRec, 7)

	req := httptest.NewRequest(http.MethodGet, "/payment/pending", nil)
	req.AddCookie(bindRec.Result().Cookies()[0])
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "http-equiv=\"refresh\"") {
		t.Fatalf("waiting page must auto-refresh")
	}
}

func TestResolveOrder_Success(t *testing.T) {
	h := newTestHandler(t, &stubService{resolveStatus: model.OrderStatusApproved})

	req := httptest.NewRequest(http.MethodGet, "/api/order/7/approve", nil)
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q, want application/json", ct)
	}

	var body resolveResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "success" || body.OrderID != 7 || body.Action != "approve" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestResolveOrder_InvalidAction(t *testing.T) {
	h := newTestHandler(t, &stubService{resolveErr: service.ErrInvalidAction})

	req := httptest.NewRequest(http.MethodGet, "/api/order/7/bogus", nil)
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}

	var body errorResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "Invalid action" {
		t.Fatalf("error = %q, want Invalid action", body.Error)
	}
}

func TestResolveOrder_Replay(t *testing.T) {
	h := newTestHandler(t, &stubService{resolveErr: repository.ErrInvalidTransition})

	req := httptest.NewRequest(http.MethodGet, "/api/order/7/reject", nil)
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusConflict)
	}
}

func TestResolveOrder_UnknownOrder(t *testing.T) {
	h := newTestHandler(t, &stubService{resolveErr: repository.ErrOrderNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/order/404/approve", nil)
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}
