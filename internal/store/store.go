package store

import (
	"context"
	"errors"

	"nuha.dev/gf22tracker/internal/location"
)

var ErrStoreUnavailable = errors.New("store unavailable")

// Filter selects stored records. An empty Imei matches every device.
type Filter struct {
	Imei     string
	Limit    int
	HasLimit bool
}

// LocationStore is an append-only record store. List returns records
// newest first by report timestamp.
type LocationStore interface {
	Put(ctx context.Context, rec *location.Record) error
	List(ctx context.Context, filter Filter) ([]location.Record, error)
	Ping(ctx context.Context) error
}
