package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Admin endpoint metrics
var (
	AdminRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secor_admin_requests_total",
			Help: "Total number of admin HTTP requests.",
		},
		[]string{"path", "code"},
	)
)

func init() {
	prometheus.MustRegister(
		AdminRequestsTotal,
	)
}

// Instrument counts requests served by h under the given path label.
func Instrument(path string, h http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(
		AdminRequestsTotal.MustCurryWith(prometheus.Labels{"path": path}),
		h,
	)
}
