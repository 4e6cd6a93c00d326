package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talx-hub/gopher-cashback/internal/api/middlewares"
	"github.com/talx-hub/gopher-cashback/internal/config"
	"github.com/talx-hub/gopher-cashback/internal/model"
)

type CustomRouter struct {
	router *chi.Mux
	logger *slog.Logger
	cfg    *config.Config
}

func New(cfg *config.Config, log *slog.Logger) *CustomRouter {
	router := &CustomRouter{
		router: chi.NewRouter(),
		logger: log,
		cfg:    cfg,
	}

	return router
}

type OrdersHandler interface {
	PostSalesOrder(w http.ResponseWriter, r *http.Request)
}

type ParametersHandler interface {
	GetParameters(w http.ResponseWriter, r *http.Request)
	PatchParameters(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetWallet(w http.ResponseWriter, r *http.Request)
}

type HealthHandler interface {
	Ping(w http.ResponseWriter, r *http.Request)
}

type Handler interface {
	OrdersHandler
	ParametersHandler
	WalletHandler
	HealthHandler
}

func (cr *CustomRouter) SetRouter(h Handler) {
	cr.router.Use(middleware.RequestID)
	cr.router.Use(middlewares.RequestLogger(cr.logger))
	cr.router.Use(middleware.Recoverer)

	cr.router.Route("/api", func(r chi.Router) {
		r.With(middleware.AllowContentType(model.ContentTypeJSON)).
			Post("/sales-orders", h.PostSalesOrder)

		r.Route("/parameters", func(r chi.Router) {
			r.Get("/", h.GetParameters)
			r.With(
				middlewares.AdminOnly([]byte(cr.cfg.SecretKey), cr.logger),
				middleware.AllowContentType(model.ContentTypeJSON),
			).Patch("/", h.PatchParameters)
		})

		r.Get("/customers/{partnerID}/wallet", h.GetWallet)
	})
	cr.router.Get("/ping", h.Ping)

	cr.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w,
			http.StatusText(http.StatusMethodNotAllowed),
			http.StatusMethodNotAllowed)
	})
}

func (cr *CustomRouter) GetRouter() *chi.Mux {
	return cr.router
}
