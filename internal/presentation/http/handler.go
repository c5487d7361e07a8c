package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strconv"

	"github.com/Zhima-Mochi/ecom-compositor/internal/application"
	appOrder "github.com/Zhima-Mochi/ecom-compositor/internal/application/order"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/catalog"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability/logctx"
	"github.com/Zhima-Mochi/ecom-compositor/internal/pkg/wire"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"

	routeCatalog        = "/api/v1/productCatalog"
	routeCreateOrder    = "/api/v1/createOrder"
	routeProcessPayment = "/api/v1/processPayment"
	routeHealth         = "/health"
	routeMetrics        = "/metrics"
)

type (
	CreateOrder   = application.UseCase[appOrder.CreateOrderInput, *appOrder.CreateOrderResult]
	CompleteOrder = application.UseCase[appOrder.CompleteOrderInput, *appOrder.CompleteOrderResult]
)

// CatalogLister yields joined catalog rows.
type CatalogLister interface {
	Execute(ctx context.Context) iter.Seq2[catalog.Row, error]
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	createOrder   CreateOrder
	completeOrder CompleteOrder
	catalog       CatalogLister
	health        Pinger
	metrics       http.Handler
	log           observability.Logger
	tel           observability.Observability
}

type Option func(*Handler)

// WithHealthCheck makes /health report 503 while p fails.
func WithHealthCheck(p Pinger) Option {
	return func(h *Handler) { h.health = p }
}

// WithMetricsHandler replaces the default promhttp handler on /metrics.
func WithMetricsHandler(m http.Handler) Option {
	return func(h *Handler) { h.metrics = m }
}

func NewHandler(
	createOrder CreateOrder,
	completeOrder CompleteOrder,
	catalog CatalogLister,
	tel observability.Observability,
	opts ...Option,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	h := &Handler{
		createOrder:   createOrder,
		completeOrder: completeOrder,
		catalog:       catalog,
		metrics:       promhttp.Handler(),
		log:           tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:           tel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Trace → ObservabilityMiddleware (request logger) → Access log → HTTP metrics → Handler
	h.route(r, http.MethodGet, routeCatalog, h.handleCatalog)
	h.route(r, http.MethodPost, routeCreateOrder, h.handleCreateOrder)
	h.route(r, http.MethodPut, routeProcessPayment, h.handleProcessPayment)
	h.route(r, http.MethodGet, routeHealth, h.handleHealth)
	r.Method(http.MethodGet, routeMetrics, h.metrics)

	return r
}

func (h *Handler) route(r chi.Router, method, route string, handler http.HandlerFunc) {
	wrapped := h.withTrace(
		ObservabilityMiddleware(h.log, func(r *http.Request) string {
			return r.Header.Get(headerRequestID)
		})(
			h.withAccessLog(
				h.withHTTPMetrics(handler),
			),
		),
	)
	label := method + " " + route
	r.Method(method, route, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		wrapped.ServeHTTP(w, req.WithContext(contextWithRoute(req.Context(), label)))
	}))
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	productID, err := positiveInt(q.Get("productId"), "productId")
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	quantity, err := positiveInt(q.Get("quantity"), "quantity")
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	customerID, err := positiveInt(q.Get("customerId"), "customerId")
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	if quantity > int64(maxQuantity) {
		writeText(w, http.StatusBadRequest, "quantity is too large")
		return
	}

	result, err := h.createOrder.Execute(r.Context(), appOrder.CreateOrderInput{
		ProductID:  productID,
		Quantity:   int(quantity),
		CustomerID: customerID,
	})
	if err != nil {
		h.writeSagaError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Order created successfully ORDER_ID: %d", result.Order.ID))
}

func (h *Handler) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := positiveInt(r.URL.Query().Get("orderId"), "orderId")
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.completeOrder.Execute(r.Context(), appOrder.CompleteOrderInput{OrderID: orderID})
	if err != nil {
		h.writeSagaError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Order confirmed successfully ORDER_ID: %d", result.OrderID))
}

// handleCatalog streams the rows as a JSON array. A failure before the first
// row becomes a 502; after that the connection is aborted so the client never
// mistakes a truncated array for a complete one.
func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	enc := json.NewEncoder(w)
	started := false

	for row, err := range h.catalog.Execute(r.Context()) {
		if err != nil {
			logctx.FromOr(r.Context(), h.log).Warn("catalog_stream_failed",
				observability.F("started", started),
				observability.Err(err),
			)
			if !started {
				writeText(w, http.StatusBadGateway, err.Error())
				return
			}
			panic(http.ErrAbortHandler)
		}
		if !started {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("["))
			started = true
		} else {
			_, _ = w.Write([]byte(","))
		}
		_ = enc.Encode(wire.FromCatalogRow(row))
	}

	if !started {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("[]"))
		return
	}
	_, _ = w.Write([]byte("]"))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			logctx.FromOr(r.Context(), h.log).Warn("health_check_failed", observability.Err(err))
			writeText(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	writeText(w, http.StatusOK, "ok")
}

// writeSagaError renders every saga failure as 400 with the error text. A
// cancelled request gets no body since nobody is reading it.
func (h *Handler) writeSagaError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		return
	}
	logctx.FromOr(r.Context(), h.log).Info("saga_failed", observability.Err(err))
	writeText(w, http.StatusBadRequest, err.Error())
}

const maxQuantity = 1<<31 - 1

func positiveInt(raw, name string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

type routeKey struct{}

// contextWithRoute stores the stable route template in the context so
// metrics and logs carry low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
