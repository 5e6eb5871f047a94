package shipdesk_api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BearBump/ShipDesk/internal/services/leads"
	"github.com/BearBump/ShipDesk/internal/services/shipments"
)

// Router собирает маршруты API. limiter может быть nil — тогда лимит
// не применяется.
func Router(shipSvc *shipments.Service, leadSvc *leads.Service, limiter Limiter, rateLimit int64) chi.Router {
	ships := NewShipmentsAPI(shipSvc)
	ld := NewLeadsAPI(leadSvc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			// лимит только на мутирующие ручки
			r.Use(RateLimit(limiter, rateLimit, time.Minute))

			r.Post("/shipments", ships.Create)
			r.Post("/shipments/{trackingNumber}/events", ships.AddEvent)
			r.Delete("/shipments/{trackingNumber}", ships.Delete)

			r.Post("/leads", ld.Create)
			r.Patch("/leads/{id}/status", ld.UpdateStatus)
			r.Post("/leads/{id}/convert", ld.Convert)
		})

		r.Get("/shipments", ships.List)
		r.Get("/shipments/{trackingNumber}", ships.Get)
		r.Get("/leads/{id}", ld.Get)
	})

	return r
}
