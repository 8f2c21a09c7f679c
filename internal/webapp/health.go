package webapp

import (
	"context"
	"net/http"
	"time"

	"nuha.dev/gf22tracker/internal/util"
	"nuha.dev/gf22tracker/internal/webapp/common"
)

const healthPingTimeout = 2 * time.Second

// Health always answers 200; a failed store ping only degrades the status.
func (api *Api) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()
	resp := common.HealthResponse{
		Status:    common.StatusHealthy,
		Timestamp: time.Now().UTC(),
		Database:  common.DatabaseConnected,
	}
	if err := api.store.Ping(ctx); err != nil {
		api.log.Warn().Err(err).Msg("health check: store ping failed")
		resp.Status = common.StatusDegraded
		resp.Database = common.DatabaseError
	}
	util.JsonWrite(w, resp)
}
