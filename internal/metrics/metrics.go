package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	FetchTotal       *prometheus.CounterVec
	FetchSeconds     *prometheus.HistogramVec
	DronesTracked    prometheus.Gauge
	DronesInNoFly    prometheus.Gauge
	RecordsRejected  prometheus.Counter
	ActiveAnnotators prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		FetchTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "skyguard_telemetry_fetches_total",
			Help: "Total number of telemetry fetches by outcome.",
		}, []string{"source", "status"}),
		FetchSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skyguard_telemetry_fetch_duration_seconds",
			Help:    "Duration of telemetry fetches.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		DronesTracked: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "skyguard_drones_tracked",
			Help: "Number of drones in the last successful batch.",
		}),
		DronesInNoFly: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "skyguard_drones_in_no_fly_zone",
			Help: "Number of drones of the last batch inside the no-fly zone.",
		}),
		RecordsRejected: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "skyguard_records_rejected_total",
			Help: "Total number of records that failed the field-range validator.",
		}),
		ActiveAnnotators: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "skyguard_active_annotators",
			Help: "Current number of workers annotating records.",
		}),
	}
}
