// Package metrics exposes Prometheus collectors for feed fetching and the
// HTTP server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "tidetimes"

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: subsystem,
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0},
		},
		[]string{"verb", "path", "code"},
	)

	feedLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "feed_fetch_latency",
			Subsystem: subsystem,
			Help:      "NOAA feed fetch latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind", "outcome"},
	)

	droppedReadings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "dropped_readings_total",
			Subsystem: subsystem,
			Help:      "Malformed readings dropped while merging feeds.",
		},
		[]string{"station"},
	)

	feedCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "feed_cache_lookups_total",
			Subsystem: subsystem,
			Help:      "Feed cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		feedLatency,
		droppedReadings,
		feedCache,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// ObserveFeedFetch records how long fetching one feed took.
func ObserveFeedFetch(kind string, err error, latency time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	feedLatency.WithLabelValues(kind, outcome).Observe(latency.Seconds())
}

func AddDroppedReadings(stationID string, n int) {
	if n > 0 {
		droppedReadings.WithLabelValues(stationID).Add(float64(n))
	}
}

func FeedCacheHit() {
	feedCache.WithLabelValues("hit").Inc()
}

func FeedCacheMiss() {
	feedCache.WithLabelValues("miss").Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LatencyHandler observes the latency of every request served by next. The
// route template is used as path when the router provides one.
func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		path := ""
		if route := mux.CurrentRoute(r); route != nil {
			path, _ = route.GetPathTemplate()
		} else if r.URL != nil {
			path = r.URL.Path
		}

		// Panics in next are reported as 500 errors and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(r.Method, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(r.Method, path, strconv.Itoa(rec.status), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}
