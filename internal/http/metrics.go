package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	grantsTotal  *prometheus.CounterVec
	revokedTotal *prometheus.CounterVec
)

// RegisterMetrics inicializa las métricas y devuelve el handler para /metrics.
func RegisterMetrics(reg prometheus.Registerer) http.Handler {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		grantsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_grants_total",
			Help: "Grants procesados por tipo y resultado",
		}, []string{"grant", "outcome"})

		revokedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_tokens_revoked_total",
			Help: "Tokens revocados por operación",
		}, []string{"op"})

		reg.MustRegister(httpRequestsTotal, httpRequestDuration, grantsTotal, revokedTotal)
	})

	return promhttp.Handler()
}

// ObserveGrant registra el resultado de un grant.
func ObserveGrant(grant, outcome string) {
	if grantsTotal != nil {
		grantsTotal.WithLabelValues(grant, outcome).Inc()
	}
}

// ObserveRevoked registra tokens revocados.
func ObserveRevoked(op string, n int64) {
	if revokedTotal != nil {
		revokedTotal.WithLabelValues(op).Add(float64(n))
	}
}

// WithHTTPMetrics instrumenta requests (counter + histograma de latencia).
func WithHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httpRequestsTotal == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &metricsRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type metricsRecorder struct {
	http.ResponseWriter
	status int
}

func (m *metricsRecorder) WriteHeader(code int) {
	m.status = code
	m.ResponseWriter.WriteHeader(code)
}
