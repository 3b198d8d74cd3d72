package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/checkout-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.RequestID)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/", h.Index)
	r.Get("/product/{id}", h.ProductDetail)
	r.Get("/checkout/{id}", h.CheckoutForm)
	r.Post("/checkout/{id}", h.SubmitCheckout)
	r.Get("/payment/pending", h.PaymentPending)
	r.Get("/payment/result/{status}", h.PaymentResult)

	r.Route("/api", func(r chi.Router) {
		// Решение приходит без аутентификации, как в исходной схеме
		// с командами из Telegram.
		// TODO: закрыть endpoint проверкой операторского токена.
		r.Get("/order/{orderID}/{action}", h.ResolveOrder)
		r.Get("/health", h.Health)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
