package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the API's Prometheus collectors.
type Recorder struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	mutations *prometheus.CounterVec
	uploads   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_catalog_mutations_total",
				Help: "Catalog writes by entity and action",
			},
			[]string{"entity", "action"},
		),
		uploads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "storefront_images_uploaded_total",
				Help: "Number of product images stored",
			},
		),
	}

	reg.MustRegister(r.requests, r.latency, r.mutations, r.uploads)
	return r
}

// CatalogMutation counts one create, update or delete of a product or category.
func (r *Recorder) CatalogMutation(entity, action string) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(entity, action).Inc()
}

func (r *Recorder) ImagesUploaded(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.uploads.Add(float64(n))
}

// statusWriter wraps http.ResponseWriter to capture status code
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency labelled by the mux route
// template, so /api/products/{id} is one series.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(sw, req)

		route := "unmatched"
		if cur := mux.CurrentRoute(req); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		r.latency.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
		r.requests.WithLabelValues(req.Method, route, strconv.Itoa(sw.statusCode)).Inc()
	})
}
