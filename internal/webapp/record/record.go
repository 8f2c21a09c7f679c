package record

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/phuslu/log"

	"nuha.dev/gf22tracker/internal/location"
	"nuha.dev/gf22tracker/internal/monitoring"
	"nuha.dev/gf22tracker/internal/store"
	"nuha.dev/gf22tracker/internal/util"
	"nuha.dev/gf22tracker/internal/webapp/common"
)

const maxFormMemory = 1 << 20

type RecordApi struct {
	store store.LocationStore
	log   log.Logger
}

func NewRecordApi(st store.LocationStore) *RecordApi {
	r := &RecordApi{store: st}
	r.log = log.DefaultLogger
	r.log.Context = log.NewContext(nil).Str("module", "record-api").Value()
	return r
}

// Update stores one location report. Parameters may come from the query
// string or a form body; query values take precedence.
func (ra *RecordApi) Update(w http.ResponseWriter, r *http.Request) {
	values, err := reportValues(r)
	if err != nil {
		monitoring.ReportsTotal.WithLabelValues(monitoring.ResultInvalid).Inc()
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	rec, err := location.ParseReport(values)
	if err != nil {
		monitoring.ReportsTotal.WithLabelValues(monitoring.ResultInvalid).Inc()
		ra.log.Debug().Err(err).Str("imei", values.Get("imei")).Msg("rejected report")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = ra.store.Put(r.Context(), rec)
	if err != nil {
		var verr *location.ValidationError
		if errors.As(err, &verr) {
			monitoring.ReportsTotal.WithLabelValues(monitoring.ResultInvalid).Inc()
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		monitoring.ReportsTotal.WithLabelValues(monitoring.ResultError).Inc()
		ra.log.Error().Err(err).Str("imei", rec.Imei).Msg("error storing report")
		http.Error(w, common.StorageFailureMessage, http.StatusInternalServerError)
		return
	}
	monitoring.ReportsTotal.WithLabelValues(monitoring.ResultStored).Inc()
	monitoring.StoredPoints.Inc()
	ra.log.Trace().Int64("id", rec.Id).Str("imei", rec.Imei).Msg("report stored")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// GetLocations lists stored points newest first, optionally for a single
// device and capped by limit. A limit that is not a plain number is ignored.
func (ra *RecordApi) GetLocations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{Imei: q.Get("imei")}
	filter.Limit, filter.HasLimit = location.ParseLimit(q.Get("limit"))
	recs, err := ra.store.List(r.Context(), filter)
	if err != nil {
		monitoring.QueriesTotal.WithLabelValues(monitoring.ResultError).Inc()
		ra.log.Error().Err(err).Str("imei", filter.Imei).Msg("error listing locations")
		http.Error(w, common.StorageFailureMessage, http.StatusInternalServerError)
		return
	}
	monitoring.QueriesTotal.WithLabelValues(monitoring.ResultOk).Inc()
	util.JsonWrite(w, location.NewPoints(recs))
}

func reportValues(r *http.Request) (url.Values, error) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, err
	}
	values := url.Values{}
	for k, v := range r.URL.Query() {
		values[k] = append(values[k], v...)
	}
	for k, v := range r.PostForm {
		values[k] = append(values[k], v...)
	}
	return values, nil
}
