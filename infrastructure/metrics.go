// infrastructure/metrics.go
package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitovidale/ai-animator/domain"
)

// Metrics owns a private registry so tests and the process never share
// the global default one.
type Metrics struct {
	Registry       *prometheus.Registry
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	requests       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "animator_renders_total",
			Help: "Manim renders by outcome.",
		}, []string{"outcome"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "animator_render_duration_seconds",
			Help:    "Wall time of manim subprocess runs.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160, 320},
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "animator_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.renders,
		m.renderDuration,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveRender(outcome string, seconds float64) {
	m.renders.WithLabelValues(outcome).Inc()
	m.renderDuration.Observe(seconds)
}

// Middleware counts requests by matched route template, not raw path,
// so scene ids do not explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// InstrumentedRenderer records outcome and duration of every render.
type InstrumentedRenderer struct {
	Next    domain.SceneRenderer
	Metrics *Metrics
}

func (r *InstrumentedRenderer) Render(ctx context.Context, scene *domain.SceneFile) (*domain.RenderResult, error) {
	result, err := r.Next.Render(ctx, scene)
	outcome := "success"
	if err != nil {
		outcome = "failure"
		var renderErr *domain.RenderError
		if errors.As(err, &renderErr) && renderErr.TimedOut {
			outcome = "timeout"
		}
	}
	if result != nil {
		r.Metrics.ObserveRender(outcome, result.Duration.Seconds())
	} else {
		r.Metrics.ObserveRender(outcome, 0)
	}
	return result, err
}
