package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	_ "github.com/corray333/backend-labs/orders/docs"
	"github.com/corray333/backend-labs/orders/internal/config"
	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	createorder "github.com/corray333/backend-labs/orders/internal/transport/http/v1/create_order"
	findorder "github.com/corray333/backend-labs/orders/internal/transport/http/v1/find_order"
	listorders "github.com/corray333/backend-labs/orders/internal/transport/http/v1/list_orders"
	"github.com/corray333/backend-labs/orders/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/orders/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type service interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
	ListOrders(ctx context.Context, query order.QueryOrdersModel) ([]order.Order, error)
	FindOrder(ctx context.Context, id string) (order.Order, error)
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
}

func NewHTTPTransport(cfg config.HTTPConfig, service service) *HTTPTransport {
	router := newRouter(cfg.Cors)
	server := newServer(cfg, router)

	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
	}
}

// Handler exposes the router, mainly for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

func (h *HTTPTransport) Run() error {
	slog.Info("HTTP server listening", "addr", h.server.Addr)

	return h.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for active ones to finish.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/healthz", healthz)
	h.router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	h.router.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/{id}", h.findOrder)
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) findOrder(w http.ResponseWriter, r *http.Request) {
	findorder.FindOrder(w, r, h.service)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func newRouter(cfg config.CorsConfig) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(cfg config.HTTPConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
