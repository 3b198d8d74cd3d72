// Package handler содержит HTTP-обработчики сервиса оформления заказов.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/checkout-system/internal/catalog"
	"github.com/mmeshcher/checkout-system/internal/model"
	"github.com/mmeshcher/checkout-system/internal/repository"
	"github.com/mmeshcher/checkout-system/internal/service"
	"github.com/mmeshcher/checkout-system/internal/session"
)

const productNotFoundMessage = "Товар не найден"

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	ListProducts() []model.Product
	StartCheckout(productID int64) (model.Product, error)
	SubmitCheckout(ctx context.Context, productID int64, form model.CheckoutForm) (int64, error)
	PollStatus(ctx context.Context, b session.Binding) (model.OrderStatus, error)
	GetOrder(ctx context.Context, orderID int64) (*model.Order, error)
	Resolve(ctx context.Context, orderID int64, action string) (model.OrderStatus, error)
}

// Handler реализует HTTP-обработчики покупательского сценария и API оператора.
type Handler struct {
	service  Service
	logger   *zap.Logger
	sessions *session.Manager
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, sessions *session.Manager) *Handler {
	return &Handler{
		service:  s,
		logger:   logger,
		sessions: sessions,
	}
}

// Index отображает список товаров каталога.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderHTML(w, indexTmpl, http.StatusOK, map[string]any{
		"Products": h.service.ListProducts(),
	})
}

// ProductDetail отображает страницу товара.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	product, ok := h.productFromURL(w, r)
	if !ok {
		return
	}

	h.renderHTML(w, productTmpl, http.StatusOK, map[string]any{
		"Product": product,
	})
}

// CheckoutForm отображает форму оформления заказа.
func (h *Handler) CheckoutForm(w http.ResponseWriter, r *http.Request) {
	product, ok := h.productFromURL(w, r)
	if !ok {
		return
	}

	h.renderHTML(w, checkoutTmpl, http.StatusOK, map[string]any{
		"Product": product,
		"Form":    model.CheckoutForm{},
	})
}

// SubmitCheckout обрабатывает отправку формы оплаты. При успехе привязывает
// заказ к сессии и перенаправляет на страницу ожидания подтверждения.
func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	product, ok := h.productFromURL(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := model.CheckoutForm{
		Name:       r.FormValue("name"),
		Email:      r.FormValue("email"),
		CardNumber: r.FormValue("card_number"),
		ExpiryDate: r.FormValue("expiry_date"),
		CVV:        r.FormValue("cvv"),
	}

	orderID, err := h.service.SubmitCheckout(r.Context(), product.ID, form)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			h.renderHTML(w, checkoutTmpl, http.StatusBadRequest, map[string]any{
				"Product": product,
				"Form":    form,
				"Error":   "Заполните все поля",
			})
			return
		}
		h.logger.Error("submit checkout error", zap.Error(err), zap.Int64("productID", product.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.sessions.Bind(w, orderID)
	http.Redirect(w, r, "/payment/pending", http.StatusSeeOther)
}

// PaymentPending опрашивает статус заказа, привязанного к сессии. Пока заказ
// не решён, отображается страница ожидания с автообновлением.
func (h *Handler) PaymentPending(w http.ResponseWriter, r *http.Request) {
	b := h.sessions.FromRequest(r)

	status, err := h.service.PollStatus(r.Context(), b)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveOrder) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("poll status error", zap.Error(err), zap.Int64("orderID", b.OrderID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if status.IsTerminal() {
		http.Redirect(w, r, "/payment/result/"+string(status), http.StatusFound)
		return
	}

	h.renderHTML(w, pendingTmpl, http.StatusOK, nil)
}

// PaymentResult отображает итог оплаты.
func (h *Handler) PaymentResult(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")

	message := "Оплата отклонена."
	if status == string(model.OrderStatusApproved) {
		message = "Оплата успешно завершена!"
	}

	var orderID int64
	if b := h.sessions.FromRequest(r); b.Present {
		orderID = b.OrderID
	}

	h.renderHTML(w, resultTmpl, http.StatusOK, map[string]any{
		"Message": message,
		"OrderID": orderID,
	})
}

type resolveResponse struct {
	Status  string `json:"status"`
	OrderID int64  `json:"order_id"`
	Action  string `json:"action"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ResolveOrder принимает решение оператора по заказу.
func (h *Handler) ResolveOrder(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Order not found"})
		return
	}

	if _, err := h.service.Resolve(r.Context(), orderID, action); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAction):
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid action"})
		case errors.Is(err, repository.ErrOrderNotFound):
			h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Order not found"})
		case errors.Is(err, repository.ErrInvalidTransition):
			h.writeJSON(w, http.StatusConflict, errorResponse{Error: "Order already resolved"})
		default:
			h.logger.Error("resolve order error", zap.Error(err), zap.Int64("orderID", orderID))
			h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		}
		return
	}

	h.writeJSON(w, http.StatusOK, resolveResponse{
		Status:  "success",
		OrderID: orderID,
		Action:  action,
	})
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health возвращает состояние сервиса.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) productFromURL(w http.ResponseWriter, r *http.Request) (model.Product, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, productNotFoundMessage, http.StatusNotFound)
		return model.Product{}, false
	}

	product, err := h.service.StartCheckout(id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			http.Error(w, productNotFoundMessage, http.StatusNotFound)
			return model.Product{}, false
		}
		h.logger.Error("product lookup error", zap.Error(err), zap.Int64("productID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return model.Product{}, false
	}

	return product, true
}

func (h *Handler) renderHTML(w http.ResponseWriter, tmpl *template.Template, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("render template error", zap.Error(err), zap.String("template", tmpl.Name()))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}
