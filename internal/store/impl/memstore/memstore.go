package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"nuha.dev/gf22tracker/internal/location"
	"nuha.dev/gf22tracker/internal/store"
)

// MemStore keeps records in process memory. It backs the mock_store mode
// and tests.
type MemStore struct {
	mu     sync.Mutex
	seq    int64
	recs   []location.Record
	err    error
	logger zerolog.Logger
}

func NewStore(logger zerolog.Logger) *MemStore {
	return &MemStore{logger: logger.With().Str("module", "memstore").Logger()}
}

// Fail makes every subsequent call return err. A nil err restores normal
// operation.
func (m *MemStore) Fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *MemStore) Put(ctx context.Context, rec *location.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.seq++
	rec.Id = m.seq
	m.recs = append(m.recs, *rec)
	m.logger.Debug().Int64("id", rec.Id).Str("imei", rec.Imei).Float64("lat", rec.Latitude).Float64("lng", rec.Longitude).Float64("speed", rec.Speed).Time("ts", rec.Timestamp).Msg("location stored")
	return nil
}

func (m *MemStore) List(ctx context.Context, filter store.Filter) ([]location.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	res := make([]location.Record, 0, len(m.recs))
	for _, r := range m.recs {
		if filter.Imei == "" || r.Imei == filter.Imei {
			res = append(res, r)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Timestamp.Equal(res[j].Timestamp) {
			return res[i].Id > res[j].Id
		}
		return res[i].Timestamp.After(res[j].Timestamp)
	})
	if filter.HasLimit && filter.Limit < len(res) {
		res = res[:filter.Limit]
	}
	return res, nil
}

func (m *MemStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}
