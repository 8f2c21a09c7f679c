package webapp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/phuslu/log"
	"github.com/pires/go-proxyproto"
	"github.com/rs/zerolog"

	"nuha.dev/gf22tracker/internal/store"
	"nuha.dev/gf22tracker/internal/webapp/record"
)

type ApiConfig struct {
	ListenAddr      string
	ProxyProtocol   bool
	UpdateRateLimit int // requests per minute per client ip, 0 disables
	AccessLogger    *zerolog.Logger

	// TrustProxyHeaders takes the client address from X-Real-IP or
	// X-Forwarded-For. Only for deployments behind a proxy that overwrites
	// them; ignored when ProxyProtocol is set.
	TrustProxyHeaders bool
}

type Api struct {
	r      chi.Router
	s      *http.Server
	config *ApiConfig
	log    log.Logger
	store  store.LocationStore
}

func NewApi(st store.LocationStore, config *ApiConfig) *Api {
	api := &Api{config: config, store: st}
	api.log = log.DefaultLogger
	api.log.Context = log.NewContext(nil).Str("module", "api-server").Value()

	access := config.AccessLogger
	if access == nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Str("module", "access").Logger()
		access = &l
	}

	r := chi.NewRouter()
	if config.TrustProxyHeaders && !config.ProxyProtocol {
		r.Use(middleware.RealIP)
	}
	r.Use(accessLog(*access)...)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(instrument)

	record_api := record.NewRecordApi(st)
	r.Group(func(r chi.Router) {
		if config.UpdateRateLimit > 0 {
			r.Use(httprate.Limit(config.UpdateRateLimit, time.Minute, httprate.WithKeyFuncs(clientAddr)))
		}
		r.Get("/update", record_api.Update)
		r.Post("/update", record_api.Update)
	})
	r.Get("/api/locations", record_api.GetLocations)
	r.Get("/api/health", api.Health)
	r.Get("/", Index)

	api.r = r
	api.s = &http.Server{
		Addr:           config.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return api
}

func (api *Api) Handler() http.Handler {
	return api.r
}

// Listen opens the configured address. With ProxyProtocol enabled the
// client address is taken from the PROXY header sent by the load balancer.
func (api *Api) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", api.s.Addr)
	if err != nil {
		return nil, err
	}
	if api.config.ProxyProtocol {
		ln = &proxyproto.Listener{Listener: ln}
	}
	return ln, nil
}

// Run blocks until the server stops.
func (api *Api) Run() error {
	ln, err := api.Listen()
	if err != nil {
		return err
	}
	return api.Serve(ln)
}

func (api *Api) Serve(ln net.Listener) error {
	api.log.Info().Str("addr", ln.Addr().String()).Bool("proxy_protocol", api.config.ProxyProtocol).Msg("starting api-server")
	err := api.s.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (api *Api) Shutdown(ctx context.Context) error {
	return api.s.Shutdown(ctx)
}
