package webapp

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"nuha.dev/gf22tracker/internal/monitoring"
	"nuha.dev/gf22tracker/internal/util"
	"nuha.dev/gf22tracker/internal/webapp/common"
)

const requestIdHeader = "X-Request-Id"

func accessLog(logger zerolog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		hlog.NewHandler(logger),
		requestId,
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Str("remote", r.RemoteAddr).
				Msg("")
		}),
	}
}

// requestId reuses a client supplied id or generates one, echoes it back
// and attaches it to the request logger.
func requestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIdHeader)
		if id == "" || len(id) > 64 {
			id = util.GenUUID()
		}
		w.Header().Set(requestIdHeader, id)
		ctx := context.WithValue(r.Context(), common.RequestIdKey, id)
		zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("req_id", id)
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		monitoring.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// clientAddr keys the rate limiter on RemoteAddr only. RemoteAddr is the
// socket peer, the PROXY header source, or the RealIP value when proxy
// headers are trusted.
func clientAddr(r *http.Request) (string, error) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr, nil
	}
	return host, nil
}
