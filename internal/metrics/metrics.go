package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "laundry"

type Registry struct {
	reg *prometheus.Registry

	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	OrdersCreated  prometheus.Counter
	CodeCollisions prometheus.Counter
	StatusChanges  *prometheus.CounterVec

	NotifyJobs    *prometheus.CounterVec
	NotifyDropped *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders persisted.",
	})
	collisions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_code_collisions_total",
		Help:      "Inserts rejected because the generated code already existed.",
	})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_changes_total",
		Help:      "Status transitions by target status.",
	}, []string{"status"})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notify",
		Name:      "jobs_total",
		Help:      "Notification jobs by outcome.",
	}, []string{"job", "outcome"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notify",
		Name:      "jobs_dropped_total",
		Help:      "Notification jobs discarded because the queue was full or closed.",
	}, []string{"job"})

	r.MustRegister(requests, latency, created, collisions, statusChanges, jobs, dropped)
	return &Registry{
		reg:            r,
		Requests:       requests,
		LatencyMS:      latency,
		OrdersCreated:  created,
		CodeCollisions: collisions,
		StatusChanges:  statusChanges,
		NotifyJobs:     jobs,
		NotifyDropped:  dropped,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{DisableCompression: true})
}

// Middleware records count and latency per chi route pattern.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		handler := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
			handler = req.Method + " " + rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
		r.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	})
}

func (r *Registry) ObserveJob(job, outcome string) {
	r.NotifyJobs.WithLabelValues(job, outcome).Inc()
}

func (r *Registry) JobDropped(job string) {
	r.NotifyDropped.WithLabelValues(job).Inc()
}

func (r *Registry) OrderCreated() {
	r.OrdersCreated.Inc()
}

func (r *Registry) CodeCollision() {
	r.CodeCollisions.Inc()
}

func (r *Registry) StatusChanged(status string) {
	r.StatusChanges.WithLabelValues(status).Inc()
}
