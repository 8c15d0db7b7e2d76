package http

import (
	"net/http"

	"github.com/dentoria/booking_api/internal/http/handlers"
	appmw "github.com/dentoria/booking_api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig зависимости HTTP-маршрутизатора
type RouterConfig struct {
	Logger       *zap.Logger
	Appointments *handlers.AppointmentHandler
	Schedules    *handlers.WorkScheduleHandler
}

// NewRouter собирает все маршруты сервиса
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(appmw.RequestLogger(cfg.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", cfg.Appointments.Create)
			r.Post("/generate", cfg.Appointments.Generate)
			r.Get("/", cfg.Appointments.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.Appointments.Get)
				r.Post("/book", cfg.Appointments.Book)
				r.Post("/cancel-booking", cfg.Appointments.CancelBooking)
				r.Post("/complete", cfg.Appointments.Complete)
				r.Post("/cancel", cfg.Appointments.Cancel)
				r.Delete("/", cfg.Appointments.Delete)
			})
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", cfg.Schedules.Create)
			r.Get("/", cfg.Schedules.List)
			r.Delete("/{id}", cfg.Schedules.Deactivate)
		})
	})

	return r
}
