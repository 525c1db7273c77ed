package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes the default Prometheus registry. Module-level metrics
// register themselves through promauto.
func Handler() http.Handler {
	return promhttp.Handler()
}
