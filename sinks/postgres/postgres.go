// Package postgres stores decoded records in a PostgreSQL JSONB table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/kintel/aisdecoder/pipeline"
)

const schema = `CREATE TABLE IF NOT EXISTS %[1]s (
	id UUID PRIMARY KEY,
	received_at TIMESTAMPTZ NOT NULL,
	source VARCHAR(64),
	channel VARCHAR(1),
	message_type SMALLINT NOT NULL,
	mmsi BIGINT NOT NULL,
	raw_sentences TEXT[] NOT NULL,
	packet JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (mmsi, received_at)`

type Store struct {
	db     *sql.DB
	table  string
	insert string
	log    *zap.Logger
}

// Open connects with a lib/pq DSN and creates the table if needed.
func Open(ctx context.Context, dsn, table string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PostgreSQL connection")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to reach PostgreSQL")
	}
	s := New(db, table, log)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("connected to PostgreSQL", zap.String("table", table))
	return s, nil
}

// New wraps an open database. database/sql reconnects on its own, so a
// dropped connection only fails the inserts made while it is down.
func New(db *sql.DB, table string, log *zap.Logger) *Store {
	return &Store{
		db:    db,
		table: table,
		insert: fmt.Sprintf(`INSERT INTO %s (id, received_at, source, channel, message_type, mmsi, raw_sentences, packet)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, pq.QuoteIdentifier(table)),
		log: log,
	}
}

// Migrate creates the table and its index.
func (s *Store) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(schema, pq.QuoteIdentifier(s.table), pq.QuoteIdentifier(s.table+"_mmsi_idx"))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrapf(err, "failed to create table %s", s.table)
	}
	return nil
}

func (s *Store) Name() string { return "postgres" }

func (s *Store) Publish(ctx context.Context, rec *pipeline.Record) error {
	packet, err := json.Marshal(rec.Message)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}
	_, err = s.db.ExecContext(ctx, s.insert,
		rec.ID,
		rec.ReceivedAt,
		nullable(rec.Source),
		nullable(rec.Channel),
		int(rec.MessageType),
		int64(rec.MMSI),
		pq.Array(rec.Sentences),
		packet,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to insert record %s", rec.ID)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) Close() error {
	return s.db.Close()
}
