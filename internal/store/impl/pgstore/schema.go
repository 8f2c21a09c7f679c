package pgstore

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4"
)

const DefaultTable = "locations"

// schema is applied with the table name substituted for {table}.
const schema = `
CREATE TABLE IF NOT EXISTS {table} (
	id bigserial PRIMARY KEY,
	imei varchar(32) NOT NULL,
	latitude double precision NOT NULL,
	longitude double precision NOT NULL,
	speed double precision,
	ts timestamp without time zone NOT NULL
);
CREATE INDEX IF NOT EXISTS {index_imei} ON {table} (imei);
CREATE INDEX IF NOT EXISTS {index_ts} ON {table} (ts);
`

func Schema(table string) string {
	r := strings.NewReplacer(
		"{table}", pgx.Identifier{table}.Sanitize(),
		"{index_imei}", pgx.Identifier{"ix_" + table + "_imei"}.Sanitize(),
		"{index_ts}", pgx.Identifier{"ix_" + table + "_ts"}.Sanitize(),
	)
	return r.Replace(schema)
}

// EnsureSchema creates the table and its indexes when missing.
func (st *Store) EnsureSchema(ctx context.Context) error {
	conn, err := st.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	_, err = conn.Exec(ctx, Schema(st.table))
	if err != nil {
		st.log.Error().Err(err).Str("table", st.table).Msg("error applying schema")
		return err
	}
	st.log.Info().Str("table", st.table).Msg("schema ready")
	return nil
}
