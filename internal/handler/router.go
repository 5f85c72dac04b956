package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "puntoventa/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware POS-шлюза.
// proxy обслуживает сырой проброс к внешнему API; его аутентификацию
// выполняет сам бэкенд по проброшенному заголовку Authorization.
// Сжатие включено только на собственном API: проброс обязан вернуть
// статус, заголовки и тело бэкенда без изменений, и перепаковка gzip
// разошлась бы с Content-Length ответа.
func (h *Handler) SetupRouter(proxy http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.RequestID)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/api/backend/*", http.StripPrefix("/api/backend", proxy))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(custommiddleware.GzipMiddleware)
		r.Use(custommiddleware.Auth)

		r.Get("/dashboard", h.GetDashboard)

		r.Route("/caja", func(r chi.Router) {
			r.Get("/", h.GetCash)
			r.Post("/apertura", h.OpenCash)
			r.Post("/cierre", h.CloseCash)
			r.Post("/movimiento", h.CreateMovement)
		})

		r.Route("/venta", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/escaneo", h.Scan)
			r.Patch("/items/{variantID}", h.AdjustItem)
			r.Delete("/items/{variantID}", h.RemoveItem)
			r.Put("/cliente", h.SelectClient)
			r.Put("/pago", h.SelectPayment)
			r.Post("/confirmar", h.Checkout)
		})

		r.Route("/productos", func(r chi.Router) {
			r.Get("/", h.GetProducts)
			r.Post("/", h.CreateProduct)
			r.Patch("/{id}", h.UpdateProduct)
			r.Post("/variante", h.CreateVariant)
			r.Patch("/variante/{id}", h.UpdateVariant)
		})

		r.Route("/clientes", func(r chi.Router) {
			r.Get("/", h.GetClients)
			r.Post("/", h.CreateClient)
			r.Patch("/{id}", h.UpdateClient)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
