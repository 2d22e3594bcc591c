package prometheus

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/suteetoe/krist-shop/pkg/config"
)

const defaultPrefix = "krist_shop"

// Metrics groups every collector exported by the service
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	StatusCategoryTotal *prometheus.CounterVec

	// Authentication metrics
	AuthEventsTotal *prometheus.CounterVec

	// Database operation metrics
	DBOperationDuration *prometheus.HistogramVec

	// Catalog, cart and order metrics
	CatalogOperationsTotal *prometheus.CounterVec
	CartOperationsTotal    *prometheus.CounterVec
	OrdersCreatedTotal     prometheus.Counter
	OrderRevenueTotal      prometheus.Counter
	OrderStatusTotal       *prometheus.CounterVec

	// Third party integrations
	CheckoutSessionsTotal *prometheus.CounterVec
	UploadsTotal          *prometheus.CounterVec

	// Realtime order feed
	RealtimeClients prometheus.Gauge
}

var (
	mu      sync.RWMutex
	once    sync.Once
	current = newMetrics(defaultPrefix)
)

func newMetrics(prefix string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		StatusCategoryTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_status_category_total",
				Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"category"},
		),
		AuthEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_events_total",
				Help: "Total number of authentication events by outcome",
			},
			[]string{"event", "outcome"},
		),
		DBOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),
		CatalogOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_catalog_operations_total",
				Help: "Total number of catalog write operations",
			},
			[]string{"entity", "operation"},
		),
		CartOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_cart_operations_total",
				Help: "Total number of cart and wishlist operations",
			},
			[]string{"operation"},
		),
		OrdersCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_orders_created_total",
				Help: "Total number of orders placed",
			},
		),
		OrderRevenueTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_order_revenue_total",
				Help: "Sum of placed order totals",
			},
		),
		OrderStatusTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_order_status_changes_total",
				Help: "Total number of order status changes by target status",
			},
			[]string{"status"},
		),
		CheckoutSessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_checkout_sessions_total",
				Help: "Total number of hosted checkout sessions by outcome",
			},
			[]string{"outcome"},
		),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_image_uploads_total",
				Help: "Total number of uploaded images by outcome",
			},
			[]string{"outcome"},
		),
		RealtimeClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_realtime_clients",
				Help: "Currently connected order feed clients",
			},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.HTTPRequestsTotal, m.HTTPRequestDuration, m.StatusCategoryTotal,
		m.AuthEventsTotal, m.DBOperationDuration,
		m.CatalogOperationsTotal, m.CartOperationsTotal,
		m.OrdersCreatedTotal, m.OrderRevenueTotal, m.OrderStatusTotal,
		m.CheckoutSessionsTotal, m.UploadsTotal, m.RealtimeClients,
	}
}

// InitMetrics builds the collectors with the configured prefix and registers them once
func InitMetrics(cfg *config.Config) {
	once.Do(func() {
		prefix := cfg.Metrics.Prefix
		if prefix == "" {
			prefix = defaultPrefix
		}
		m := newMetrics(prefix)
		prometheus.MustRegister(m.collectors()...)

		mu.Lock()
		current = m
		mu.Unlock()
	})
}

// Get returns the active collectors
func Get() *Metrics {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Handler returns an HTTP handler for exposing Prometheus metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records a finished HTTP request
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m := Get()
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())

	switch {
	case status >= 500:
		m.StatusCategoryTotal.WithLabelValues("5xx").Inc()
	case status >= 400:
		m.StatusCategoryTotal.WithLabelValues("4xx").Inc()
	case status >= 200 && status < 300:
		m.StatusCategoryTotal.WithLabelValues("2xx").Inc()
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		Get().DBOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordAuthEvent counts sign-in, sign-up, refresh and password reset outcomes
func RecordAuthEvent(event, outcome string) {
	Get().AuthEventsTotal.WithLabelValues(event, outcome).Inc()
}

// RecordCatalogOperation increments the counter for catalog writes
func RecordCatalogOperation(entity, operation string) {
	Get().CatalogOperationsTotal.WithLabelValues(entity, operation).Inc()
}

// RecordCartOperation increments the counter for cart and wishlist changes
func RecordCartOperation(operation string) {
	Get().CartOperationsTotal.WithLabelValues(operation).Inc()
}

// RecordOrderCreated counts a placed order and its total
func RecordOrderCreated(total float64) {
	m := Get()
	m.OrdersCreatedTotal.Inc()
	m.OrderRevenueTotal.Add(total)
}

// RecordOrderStatus counts a status change
func RecordOrderStatus(status string) {
	Get().OrderStatusTotal.WithLabelValues(status).Inc()
}

// RecordCheckoutSession counts a checkout session attempt
func RecordCheckoutSession(outcome string) {
	Get().CheckoutSessionsTotal.WithLabelValues(outcome).Inc()
}

// RecordUpload counts uploaded images
func RecordUpload(outcome string, count int) {
	Get().UploadsTotal.WithLabelValues(outcome).Add(float64(count))
}

// SetRealtimeClients sets the number of connected order feed clients
func SetRealtimeClients(n int) {
	Get().RealtimeClients.Set(float64(n))
}
