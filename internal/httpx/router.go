package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mincheol-dev/sneakershop/internal/httpx/middlewares"
	"github.com/mincheol-dev/sneakershop/internal/pkg/metrics"
)

// NewRouter assembles the HTTP surface. sm may be nil to skip metrics
// (useful in handler tests).
func NewRouter(h *Handler, sm *metrics.ServerMetrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if sm != nil {
		r.Use(sm.Middleware)
	}
	r.Use(middlewares.RequestLogger(h.log))
	r.Use(middlewares.Identify)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireUser)
			r.Post("/", h.CreateOrder)
			r.Get("/my", h.ListMyOrders)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireAdmin)
			r.Get("/admin/all", h.ListAllOrders)
			r.Patch("/{orderID}/status", h.UpdateStatus)
			r.Delete("/{orderID}", h.DeleteOrder)
			r.Get("/{orderID}/events", h.OrderHistory)
		})
	})

	return r
}
