package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nuha.dev/gf22tracker/internal/util"
)

type MonitoringServer struct {
	server  *http.Server
	log     log.Logger
	started time.Time
}

type MonitoringConfig struct {
	ListenAddr string
}

type Status struct {
	Started      time.Time `json:"started"`
	Uptime       float64   `json:"uptime_sec"`
	StoredPoints float64   `json:"stored_points"`
}

func NewMonApi(config *MonitoringConfig) *MonitoringServer {
	m := &MonitoringServer{}
	m.started = time.Now()
	m.log = log.DefaultLogger
	m.log.Context = log.NewContext(nil).Str("module", "mon-server").Value()
	m.server = &http.Server{
		Addr:           config.ListenAddr,
		Handler:        m.GetHandler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return m
}

func (m *MonitoringServer) Run() {
	m.log.Info().Msgf("starting mon-server on : %s", m.server.Addr)
	err := m.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		m.log.Error().Err(err).Msg("mon-server stopped")
	}
}

func (m *MonitoringServer) Shutdown(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}

func (m *MonitoringServer) serve_status(w http.ResponseWriter, r *http.Request) {
	res := Status{Started: m.started, Uptime: time.Since(m.started).Seconds(), StoredPoints: gaugeValue()}
	util.JsonWrite(w, res)
}

func (m *MonitoringServer) GetHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/status", m.serve_status)
	return mux
}
