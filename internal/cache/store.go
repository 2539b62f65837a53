package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime"
	"time"

	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zstd"
)

// Store is a Cache backed by the responses table of the state database.
// Bodies are kept zstd-compressed.
type Store struct {
	db     *sql.DB
	getter Getter
	now    func() time.Time

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open returns a Store using db for persistence and getter for Add.
func Open(db *sql.DB, getter Getter) (*Store, error) {
	if db == nil {
		return nil, errors.New("open cache: nil database")
	}
	if getter == nil {
		return nil, errors.New("open cache: nil getter")
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Store{db: db, getter: getter, now: time.Now, enc: enc, dec: dec}, nil
}

// Match implements Cache.
func (s *Store) Match(ctx context.Context, url string) ([]byte, bool, error) {
	var packed []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM responses WHERE url = ?`, url).Scan(&packed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("match %s: %w", url, err)
	}
	body, err := s.dec.DecodeAll(packed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("match %s: %w", url, err)
	}
	return body, true, nil
}

// Add implements Cache. The response is only stored when it looks like JSON.
func (s *Store) Add(ctx context.Context, url string) error {
	body, contentType, err := s.getter.Get(ctx, url)
	if err != nil {
		return err
	}
	if !cacheable(body, contentType) {
		return fmt.Errorf("add %s: %w", url, ErrNotCacheable)
	}
	packed := s.enc.EncodeAll(body, make([]byte, 0, len(body)/2))
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO responses (url, body, content_type, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET body = excluded.body,
			content_type = excluded.content_type, fetched_at = excluded.fetched_at`,
		url, packed, contentType, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("add %s: %w", url, err)
	}
	events.Cache.Stored(url, len(body), len(packed))
	return nil
}

// Purge removes every cached response and returns how many were dropped.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses`)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the codec state. The database is owned by the caller.
func (s *Store) Close() {
	s.enc.Close()
	s.dec.Close()
}

func cacheable(body []byte, contentType string) bool {
	if len(body) == 0 {
		return false
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "application/json" {
		return true
	}
	return mimetype.Detect(body).Is("application/json")
}
