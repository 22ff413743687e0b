package admin

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusPath is where the Prometheus exposition handler is mounted.
const PrometheusPath = "/prometheus"

// HandlerRegistry maps URL paths to the custom handlers mounted on the admin
// service in addition to its default pages.
type HandlerRegistry map[string]http.Handler

// BuildHandlers returns the custom handlers for the admin service. The
// registry holds the Prometheus handler at PrometheusPath when
// prometheusEnabled is true and is empty otherwise.
func BuildHandlers(prometheusEnabled bool, g prometheus.Gatherer) HandlerRegistry {
	handlers := make(HandlerRegistry, 1)
	if prometheusEnabled {
		if g == nil {
			g = prometheus.DefaultGatherer
		}
		handlers[PrometheusPath] = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
	return handlers
}
