package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/storage"
)

// TitleStore implements storage.TitleStore using PostgreSQL.
type TitleStore struct {
	pool *Pool
}

// NewTitleStore creates a new TitleStore.
func NewTitleStore(pool *Pool) *TitleStore {
	return &TitleStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TitleStore = (*TitleStore)(nil)

// InsertBulk adds multiple titles atomically. Fails entire batch on any duplicate.
func (s *TitleStore) InsertBulk(ctx context.Context, titles []*domain.Title) (err error) {
	if len(titles) == 0 {
		return nil
	}
	defer func(start time.Time) { s.pool.observe("insert_titles", start, err) }(time.Now())

	for _, t := range titles {
		if t == nil {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, t := range titles {
		batch.Queue(insertTitleSQL,
			t.AppID, t.Name, t.Type, t.FreeToPlay,
			t.ReleaseDate, t.ReleaseDateParsed, t.ReleaseYear, t.TypeCode,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range titles {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return translate(err, "insert title")
		}
	}
	if err := br.Close(); err != nil {
		return translate(err, "close title batch")
	}

	if err := tx.Commit(ctx); err != nil {
		return translate(err, "commit tx")
	}
	return nil
}

const insertTitleSQL = `
	INSERT INTO titles (
		app_id, name, type, free_to_play, release_date, release_date_parsed, release_year, type_code
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

const selectTitleSQL = `
	SELECT app_id, name, type, free_to_play, release_date, release_date_parsed, release_year, type_code
	FROM titles
`

// GetByID retrieves a title by app_id. Returns ErrNotFound if not exists.
func (s *TitleStore) GetByID(ctx context.Context, appID int64) (*domain.Title, error) {
	t, err := scanTitle(s.pool.QueryRow(ctx, selectTitleSQL+" WHERE app_id = $1", appID))
	if err != nil {
		return nil, translate(err, "get title by id")
	}
	return t, nil
}

// GetAll retrieves all titles ordered by app_id ASC.
func (s *TitleStore) GetAll(ctx context.Context) (_ []*domain.Title, err error) {
	defer func(start time.Time) { s.pool.observe("select_titles", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, selectTitleSQL+" ORDER BY app_id ASC")
	if err != nil {
		return nil, fmt.Errorf("get all titles: %w", err)
	}
	defer rows.Close()

	var result []*domain.Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}
	return result, nil
}

// scanTitle scans a single row into Title.
func scanTitle(row pgx.Row) (*domain.Title, error) {
	var t domain.Title

	err := row.Scan(
		&t.AppID,
		&t.Name,
		&t.Type,
		&t.FreeToPlay,
		&t.ReleaseDate,
		&t.ReleaseDateParsed,
		&t.ReleaseYear,
		&t.TypeCode,
	)
	if err != nil {
		return nil, err
	}
	if t.ReleaseDateParsed != nil {
		utc := t.ReleaseDateParsed.UTC()
		t.ReleaseDateParsed = &utc
	}

	return &t, nil
}
