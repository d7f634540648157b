// Package metrics exposes Prometheus collectors for the lesson service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ashureev/shsh-lessons/internal/playground"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shsh"

// Submission results used as the "result" label.
const (
	ResultMatched   = "matched"
	ResultUnmatched = "unmatched"
	ResultCleared   = "cleared"
	ResultIgnored   = "ignored"
)

// Recorder holds the service collectors. It implements playground.Observer.
type Recorder struct {
	Submissions  *prometheus.CounterVec
	Completions  *prometheus.CounterVec
	Active       prometheus.Gauge
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

var _ playground.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Playground submissions, labeled by result.",
		}, []string{"result"}),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exercise_completions_total",
			Help:      "Exercises completed for the first time in a lesson session.",
		}, []string{"lesson"}),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_lesson_sessions",
			Help:      "Open lesson sessions.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed, labeled by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of request durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(r.Submissions, r.Completions, r.Active, r.HTTPRequests, r.HTTPDuration)
	return r
}

// SubmissionRecorded counts one submission.
func (r *Recorder) SubmissionRecorded(_ string, out playground.Outcome) {
	r.Submissions.WithLabelValues(resultLabel(out)).Inc()
}

// ExerciseCompleted counts a first-time completion.
func (r *Recorder) ExerciseCompleted(lessonID string, _ int) {
	r.Completions.WithLabelValues(lessonID).Inc()
}

// ActiveSessions sets the open session gauge.
func (r *Recorder) ActiveSessions(n int) {
	r.Active.Set(float64(n))
}

func resultLabel(out playground.Outcome) string {
	switch {
	case out.Ignored:
		return ResultIgnored
	case out.Cleared:
		return ResultCleared
	case out.Entry != nil && out.Entry.Matched != nil && *out.Entry.Matched:
		return ResultMatched
	default:
		return ResultUnmatched
	}
}

// Middleware records request counts and durations by chi route pattern.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		t0 := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := req.URL.Path
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.HTTPRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.HTTPDuration.WithLabelValues(req.Method, route).Observe(time.Since(t0).Seconds())
	})
}
