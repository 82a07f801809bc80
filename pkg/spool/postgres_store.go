package spool

import (
	"context"
	"embed"
	"errors"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kcidb/kcidb-go/pkg/pg"
)

// PostgresMigrations holds the goose migrations creating the notifications
// table, under the "migrations" directory.
//
//go:embed migrations/*.sql
var PostgresMigrations embed.FS

// PostgresMigrationsDir is the directory of PostgresMigrations to migrate from.
const PostgresMigrationsDir = "migrations"

// pgTxRetries bounds how often RunTx restarts after a serialization failure.
const pgTxRetries = 3

// pgPool is the part of *pgxpool.Pool the store uses.
type pgPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements Store on the kcidb_notifications table. RunTx
// locks the row with SELECT ... FOR UPDATE; creation relies on the primary
// key through INSERT ... ON CONFLICT DO NOTHING.
type PostgresStore struct {
	pool pgPool
}

// NewPostgresStore creates a store using the pool. The schema must have
// been migrated with PostgresMigrations.
func NewPostgresStore(pool pgPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const (
	pgSelectForUpdate = `SELECT created_at, picked_at, picked_until, acked_at, message
		FROM kcidb_notifications WHERE id = $1 FOR UPDATE`
	pgInsert = `INSERT INTO kcidb_notifications (id, created_at, picked_at, picked_until, acked_at, message)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`
	pgUpdate = `UPDATE kcidb_notifications SET
		picked_at = COALESCE($2, picked_at),
		picked_until = COALESCE($3, picked_until),
		acked_at = COALESCE($4, acked_at)
		WHERE id = $1`
	pgDelete             = `DELETE FROM kcidb_notifications WHERE id = $1`
	pgDeleteCreatedUntil = `DELETE FROM kcidb_notifications WHERE created_at <= $1`
	pgScanPickedBefore   = `SELECT id FROM kcidb_notifications
		WHERE picked_until < $1 AND id > $2 ORDER BY id LIMIT $3`
)

type pgTx struct {
	tx pgx.Tx
	id string
}

func (t *pgTx) Get(ctx context.Context) (Document, bool, error) {
	doc := Document{ID: t.id}
	err := t.tx.QueryRow(ctx, pgSelectForUpdate, t.id).
		Scan(&doc.CreatedAt, &doc.PickedAt, &doc.PickedUntil, &doc.AckedAt, &doc.Message)
	if pg.IsNotFoundError(err) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, err
	}
	return normalize(doc), true, nil
}

func (t *pgTx) Create(ctx context.Context, doc Document) error {
	tag, err := t.tx.Exec(ctx, pgInsert,
		t.id, doc.CreatedAt, doc.PickedAt, doc.PickedUntil, doc.AckedAt, doc.Message)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

func (t *pgTx) Update(ctx context.Context, p Patch) error {
	return pgApply(ctx, t.tx, t.id, p)
}

func pgApply(ctx context.Context, db pgExecer, id string, p Patch) error {
	tag, err := db.Exec(ctx, pgUpdate, id, p.PickedAt, p.PickedUntil, p.AckedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RunTx implements Store
func (s *PostgresStore) RunTx(ctx context.Context, id string, fn func(ctx context.Context, tx Tx) error) error {
	var err error
	for range pgTxRetries {
		err = s.runTx(ctx, id, fn)
		if !pg.IsSerializationFailure(err) {
			return err
		}
	}
	return err
}

func (s *PostgresStore) runTx(ctx context.Context, id string, fn func(ctx context.Context, tx Tx) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, rbErr)
		}
	}()

	if err = fn(ctx, &pgTx{tx: tx, id: id}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update implements Store
func (s *PostgresStore) Update(ctx context.Context, id string, p Patch) error {
	return pgApply(ctx, s.pool, id, p)
}

// Delete implements Store
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, pgDelete, id)
	return err
}

// DeleteCreatedUntil implements Store
func (s *PostgresStore) DeleteCreatedUntil(ctx context.Context, until time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, pgDeleteCreatedUntil, until)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ScanPickedBefore implements Store with keyset pagination on the primary key.
func (s *PostgresStore) ScanPickedBefore(ctx context.Context, at time.Time, pageSize int) iter.Seq2[string, error] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return func(yield func(string, error) bool) {
		after := ""
		for {
			rows, err := s.pool.Query(ctx, pgScanPickedBefore, at, after, pageSize)
			if err != nil {
				yield("", err)
				return
			}
			page, err := pgx.CollectRows(rows, pgx.RowTo[string])
			if err != nil {
				yield("", err)
				return
			}
			for _, id := range page {
				if !yield(id, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			after = page[len(page)-1]
		}
	}
}

// normalize converts times read back from a store to UTC.
func normalize(doc Document) Document {
	doc.CreatedAt = doc.CreatedAt.UTC()
	doc.PickedUntil = doc.PickedUntil.UTC()
	if doc.PickedAt != nil {
		t := doc.PickedAt.UTC()
		doc.PickedAt = &t
	}
	if doc.AckedAt != nil {
		t := doc.AckedAt.UTC()
		doc.AckedAt = &t
	}
	return doc
}
