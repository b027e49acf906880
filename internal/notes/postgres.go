package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"example.com/daynotes/internal/stringsx"
)

const pgUniqueViolation = "23505"

// PostgresStore implements Store on top of a notes table with a
// unique date key. Multi-statement operations run in a single
// transaction so concurrent readers see each mutation all-or-nothing.
type PostgresStore struct {
	db *sql.DB

	stmtGet    *sql.Stmt
	stmtUpsert *sql.Stmt
	stmtDelete *sql.Stmt
	stmtList   *sql.Stmt
}

func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS notes (
			date         TEXT PRIMARY KEY,
			content      TEXT NOT NULL,
			custom_title TEXT,
			last_updated TIMESTAMPTZ NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("create notes table: %w", err)
	}

	get, err := db.PrepareContext(ctx, `
		SELECT date, content, custom_title, last_updated, created_at
		FROM notes
		WHERE date = $1
	`)
	if err != nil {
		return nil, err
	}

	ups, err := db.PrepareContext(ctx, `
		INSERT INTO notes (date, content, custom_title, last_updated, created_at)
		VALUES ($1, $2, NULL, now(), now())
		ON CONFLICT (date) DO UPDATE
		SET content = EXCLUDED.content,
		    last_updated = EXCLUDED.last_updated,
		    custom_title = CASE WHEN $3 THEN notes.custom_title ELSE NULL END
		RETURNING date, content, custom_title, last_updated, created_at
	`)
	if err != nil {
		return nil, err
	}

	del, err := db.PrepareContext(ctx, `DELETE FROM notes WHERE date = $1`)
	if err != nil {
		return nil, err
	}

	list, err := db.PrepareContext(ctx, `
		SELECT date, COALESCE(custom_title, ''), last_updated, LEFT(content, $1)
		FROM notes
		ORDER BY date DESC
	`)
	if err != nil {
		return nil, err
	}

	return &PostgresStore{
		db:         db,
		stmtGet:    get,
		stmtUpsert: ups,
		stmtDelete: del,
		stmtList:   list,
	}, nil
}

func (s *PostgresStore) Close() error {
	for _, st := range []*sql.Stmt{s.stmtGet, s.stmtUpsert, s.stmtDelete, s.stmtList} {
		if st != nil {
			_ = st.Close()
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, date string) (Record, error) {
	r, err := scanRecord(s.stmtGet.QueryRowContext(ctx, date))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

func (s *PostgresStore) Upsert(ctx context.Context, date, content string, preserveTitle bool) (Record, error) {
	return scanRecord(s.stmtUpsert.QueryRowContext(ctx, date, content, preserveTitle))
}

func (s *PostgresStore) Delete(ctx context.Context, date string) (bool, error) {
	res, err := s.stmtDelete.ExecContext(ctx, date)
	if err != nil {
		return false, err
	}
	a, _ := res.RowsAffected()
	return a > 0, nil
}

// Rename re-keys in one transaction: lock the source row, check the
// target, update. The unique constraint backstops a racing insert at
// the target date between the check and the update.
func (s *PostgresStore) Rename(ctx context.Context, oldDate, newDate, title string) (Record, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback()

	var exists string
	err = tx.QueryRowContext(ctx, `SELECT date FROM notes WHERE date = $1 FOR UPDATE`, oldDate).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}

	if oldDate != newDate {
		var occupied string
		err = tx.QueryRowContext(ctx, `SELECT date FROM notes WHERE date = $1`, newDate).Scan(&occupied)
		if err == nil {
			return Record{}, ErrCollision
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
	}

	r, err := scanRecord(tx.QueryRowContext(ctx, `
		UPDATE notes
		SET date = $1, custom_title = NULLIF($2, ''), last_updated = now()
		WHERE date = $3
		RETURNING date, content, custom_title, last_updated, created_at
	`, newDate, title, oldDate))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Record{}, ErrCollision
		}
		return Record{}, err
	}

	if err := tx.Commit(); err != nil {
		return Record{}, err
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.stmtList.QueryContext(ctx, PreviewLen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Summary, 0, 32)
	for rows.Next() {
		var sm Summary
		var preview string
		if err := rows.Scan(&sm.Date, &sm.CustomTitle, &sm.LastUpdated, &preview); err != nil {
			return nil, err
		}
		// LEFT counts characters, but clip again so every backend
		// reports identical previews.
		sm.Preview = stringsx.Clip(preview, PreviewLen)
		out = append(out, sm)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var r Record
	var title sql.NullString
	if err := row.Scan(&r.Date, &r.Content, &title, &r.LastUpdated, &r.CreatedAt); err != nil {
		return Record{}, err
	}
	r.CustomTitle = title.String
	return r, nil
}
