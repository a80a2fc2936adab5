// internal/infra/metrics/metrics.go
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "launch_notifier"

// Recorder exports reconciliation and cycle outcomes as Prometheus metrics.
type Recorder struct {
	cycles        *prometheus.CounterVec
	changes       *prometheus.CounterVec
	notifications *prometheus.CounterVec
	lastSuccessTS prometheus.Gauge
	now           func() time.Time
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{now: time.Now}
	r.cycles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_total",
		Help:      "Fetch and reconcile cycles by result",
	}, []string{"result"})
	r.changes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "launches_changed_total",
		Help:      "Launches added to or modified in a stored window",
	}, []string{"kind"})
	r.notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Notification attempts by kind and result",
	}, []string{"kind", "result"})
	r.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_successful_cycle_timestamp_seconds",
		Help:      "Unix time of the last cycle that finished without error",
	})
	reg.MustRegister(r.cycles, r.changes, r.notifications, r.lastSuccessTS)
	return r
}

func (r *Recorder) ObserveChanges(added, modified int) {
	r.changes.WithLabelValues("added").Add(float64(added))
	r.changes.WithLabelValues("modified").Add(float64(modified))
}

func (r *Recorder) ObserveNotification(kind string, delivered bool) {
	result := "delivered"
	if !delivered {
		result = "failed"
	}
	r.notifications.WithLabelValues(kind, result).Inc()
}

func (r *Recorder) ObserveCycle(result string) {
	r.cycles.WithLabelValues(result).Inc()
	if result == "ok" {
		r.lastSuccessTS.Set(float64(r.now().Unix()))
	}
}

// Server exposes /metrics and /healthz.
type Server struct {
	server *http.Server
}

func NewServer(addr string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler              { return s.server.Handler }
func (s *Server) Serve() error                       { return s.server.ListenAndServe() }
func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }
