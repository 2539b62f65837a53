// Package prefs is the shared key-value preference store. Values are JSON
// documents kept in the state database; every write bumps a store-wide
// revision so other processes sharing the file can detect changes.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	"github.com/bytedance/sonic"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("preference store closed")

// Change describes a write to a single key. Value is the new JSON document,
// or nil when the key was deleted.
type Change struct {
	Key      string
	Value    []byte
	Revision int64
}

// Deleted reports whether the change removed the key.
func (c Change) Deleted() bool {
	return c.Value == nil
}

// Decode unmarshals the changed value into dst.
func (c Change) Decode(dst interface{}) error {
	if c.Value == nil {
		return nil
	}
	return sonic.Unmarshal(c.Value, dst)
}

// Store persists preferences in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time

	mu     sync.Mutex
	closed bool
	subs   map[int]chan Change
	nextID int
}

// New wraps an opened state database.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now, subs: make(map[int]chan Change)}
}

// Get decodes the value stored at key into dst. It reports false when the key
// is absent, leaving dst untouched.
func (s *Store) Get(key string, dst interface{}) (bool, error) {
	if s.isClosed() {
		return false, ErrClosed
	}
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := sonic.UnmarshalString(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set writes every entry of values in one transaction.
func (s *Store) Set(values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	encoded := make(map[string][]byte, len(values))
	for key, value := range values {
		data, err := sonic.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		keys = append(keys, key)
		encoded[key] = data
	}
	sort.Strings(keys)

	changes := make([]Change, 0, len(keys))
	err := s.write(func(tx *sql.Tx, rev int64, now int64) error {
		for _, key := range keys {
			if _, err := tx.Exec(`
				INSERT INTO kv (key, value, revision, updated_at) VALUES (?, ?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value,
					revision = excluded.revision, updated_at = excluded.updated_at`,
				key, string(encoded[key]), rev, now); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
			if _, err := tx.Exec(`DELETE FROM tombstones WHERE key = ?`, key); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
			changes = append(changes, Change{Key: key, Value: encoded[key], Revision: rev})
		}
		return nil
	})
	if err != nil {
		return err
	}
	events.Prefs.Set(keys)
	s.publish(changes)
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	var change Change
	err := s.write(func(tx *sql.Tx, rev int64, now int64) error {
		if _, err := tx.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO tombstones (key, revision) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET revision = excluded.revision`, key, rev); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		change = Change{Key: key, Revision: rev}
		return nil
	})
	if err != nil {
		return err
	}
	events.Prefs.Delete(key)
	s.publish([]Change{change})
	return nil
}

// Revision returns the latest revision written to the store.
func (s *Store) Revision(ctx context.Context) (int64, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	return currentRevision(ctx, s.db)
}

// Since lists changes with a revision greater than rev, in revision order,
// together with the newest revision seen.
func (s *Store) Since(ctx context.Context, rev int64) ([]Change, int64, error) {
	if s.isClosed() {
		return nil, rev, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, revision FROM kv WHERE revision > ?
		UNION ALL
		SELECT key, NULL, revision FROM tombstones WHERE revision > ?
		ORDER BY revision, key`, rev, rev)
	if err != nil {
		return nil, rev, fmt.Errorf("changes since %d: %w", rev, err)
	}
	defer rows.Close()
	latest := rev
	var changes []Change
	for rows.Next() {
		var (
			c     Change
			value sql.NullString
		)
		if err := rows.Scan(&c.Key, &value, &c.Revision); err != nil {
			return nil, rev, fmt.Errorf("changes since %d: %w", rev, err)
		}
		if value.Valid {
			c.Value = []byte(value.String)
		}
		if c.Revision > latest {
			latest = c.Revision
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, rev, fmt.Errorf("changes since %d: %w", rev, err)
	}
	return changes, latest, nil
}

// Subscribe registers for changes written through this Store. The returned
// function unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Change, 16)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

// Close detaches every subscriber. The database is owned by the caller.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	return nil
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) write(fn func(tx *sql.Tx, rev int64, now int64) error) error {
	if s.isClosed() {
		return ErrClosed
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	defer tx.Rollback()
	rev, err := currentRevision(context.Background(), tx)
	if err != nil {
		return err
	}
	if err := fn(tx, rev+1, s.now().UnixMilli()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write: %w", err)
	}
	return nil
}

func (s *Store) publish(changes []Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		for _, c := range changes {
			select {
			case ch <- c:
			default:
				events.Prefs.Dropped(c.Key)
			}
		}
	}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func currentRevision(ctx context.Context, q queryer) (int64, error) {
	var rev int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(revision), 0) FROM (
			SELECT revision FROM kv UNION ALL SELECT revision FROM tombstones
		)`).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	return rev, nil
}
