package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the app module. Tracks app/credential
// creation counts and credential critical path durations.
type Metrics struct {
	AppsCreated              prometheus.Counter
	CredentialsCreated       prometheus.Counter
	CreateCredentialDuration prometheus.Histogram
	ToggleCredentialDuration prometheus.Histogram
}

// New creates a Metrics instance with all app module metrics registered.
func New() *Metrics {
	return &Metrics{
		AppsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "humanid_apps_created_total",
			Help: "Total number of partner apps registered",
		}),
		CredentialsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "humanid_app_credentials_created_total",
			Help: "Total number of app credentials issued",
		}),
		CreateCredentialDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "humanid_create_credential_duration_seconds",
			Help:    "Duration of CreateCredential operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ToggleCredentialDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "humanid_toggle_credential_duration_seconds",
			Help:    "Duration of ToggleCredentialStatus operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveCreateCredential records the duration of a CreateCredential
// operation. Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreateCredential(start time.Time) {
	m.CreateCredentialDuration.Observe(time.Since(start).Seconds())
}

// ObserveToggleCredential records the duration of a ToggleCredentialStatus
// operation. Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveToggleCredential(start time.Time) {
	m.ToggleCredentialDuration.Observe(time.Since(start).Seconds())
}
