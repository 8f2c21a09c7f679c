package natsstore

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/phuslu/log"

	"nuha.dev/gf22tracker/internal/location"
	"nuha.dev/gf22tracker/internal/store"
)

// Store forwards every stored record to a NATS subject. Reads go straight
// to the wrapped store.
type Store struct {
	next    store.LocationStore
	nc      *nats.Conn
	subject string
	log     log.Logger
}

func NewStore(next store.LocationStore, nc *nats.Conn, subject string) *Store {
	o := &Store{next: next, nc: nc, subject: subject}
	o.log = log.DefaultLogger
	o.log.Context = log.NewContext(nil).Str("module", "natsstore").Str("subject", subject).Value()
	return o
}

// Put stores rec and then publishes it. A failed publish is logged only,
// the record is already persisted at that point.
func (st *Store) Put(ctx context.Context, rec *location.Record) error {
	err := st.next.Put(ctx, rec)
	if err != nil {
		return err
	}
	b, err := json.Marshal(location.NewPoint(*rec))
	if err != nil {
		st.log.Error().Err(err).Int64("id", rec.Id).Msg("error encoding location")
		return nil
	}
	err = st.nc.Publish(st.subject, b)
	if err != nil {
		st.log.Error().Err(err).Int64("id", rec.Id).Msg("error publishing location")
	}
	return nil
}

func (st *Store) List(ctx context.Context, filter store.Filter) ([]location.Record, error) {
	return st.next.List(ctx, filter)
}

func (st *Store) Ping(ctx context.Context) error {
	return st.next.Ping(ctx)
}
