package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/phuslu/log"

	"nuha.dev/gf22tracker/internal/location"
	"nuha.dev/gf22tracker/internal/store"
)

type Store struct {
	dbp   *pgxpool.Pool
	log   log.Logger
	table string
}

func NewStore(db *pgxpool.Pool, table string) *Store {
	o := &Store{}
	o.table = table
	o.dbp = db
	o.log = log.DefaultLogger
	o.log.Context = log.NewContext(nil).Str("module", "pgstore").Value()
	return o
}

// acquire hands out a pooled connection for the duration of one operation.
// Callers must release it on every path.
func (st *Store) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := st.dbp.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	return conn, nil
}

func (st *Store) Put(ctx context.Context, rec *location.Record) error {
	conn, err := st.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	query := `INSERT INTO ` + pgx.Identifier{st.table}.Sanitize() + ` (imei,latitude,longitude,speed,ts) VALUES ($1,$2,$3,$4,$5) RETURNING id`
	var id int64
	err = conn.BeginFunc(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query, rec.Imei, rec.Latitude, rec.Longitude, rec.Speed, rec.Timestamp).Scan(&id)
	})
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == pgerrcode.StringDataRightTruncationDataException {
			return &location.ValidationError{Field: "imei", Reason: pgerr.Message}
		}
		st.log.Error().Err(err).Str("imei", rec.Imei).Msg("error inserting location")
		return err
	}
	rec.Id = id
	st.log.Debug().Int64("id", id).Str("imei", rec.Imei).Msg("location stored")
	return nil
}

func (st *Store) List(ctx context.Context, filter store.Filter) ([]location.Record, error) {
	conn, err := st.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	query := `SELECT id,imei,latitude,longitude,speed,ts FROM ` + pgx.Identifier{st.table}.Sanitize() + ` WHERE (imei = $1 OR $2) ORDER BY ts DESC, id DESC`
	args := []interface{}{filter.Imei, filter.Imei == ""}
	if filter.HasLimit {
		query = query + ` LIMIT $3`
		args = append(args, filter.Limit)
	}
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := make([]location.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func (st *Store) Ping(ctx context.Context) error {
	conn, err := st.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	var one int
	return conn.QueryRow(ctx, `SELECT 1`).Scan(&one)
}

// scanRecord maps one locations row. A NULL speed, possible for rows
// written by other tools, reads as 0.
func scanRecord(row pgx.Row) (location.Record, error) {
	rec := location.Record{}
	var speed *float64
	err := row.Scan(&rec.Id, &rec.Imei, &rec.Latitude, &rec.Longitude, &speed, &rec.Timestamp)
	if err != nil {
		return rec, err
	}
	if speed != nil {
		rec.Speed = *speed
	}
	rec.Timestamp = rec.Timestamp.UTC()
	return rec, nil
}
