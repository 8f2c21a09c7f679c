package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const (
	ResultStored  = "stored"
	ResultInvalid = "invalid"
	ResultError   = "error"
	ResultOk      = "ok"
)

var (
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gf22_reports_total",
			Help: "Location reports received, by outcome",
		},
		[]string{"result"},
	)

	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gf22_queries_total",
			Help: "Location queries served, by outcome",
		},
		[]string{"result"},
	)

	StoredPoints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gf22_stored_points",
			Help: "Points written since process start",
		},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gf22_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func gaugeValue() float64 {
	m := &dto.Metric{}
	if err := StoredPoints.Write(m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}
