package inmemory

import (
	"errors"
	"maps"
	"sync"
	"time"

	"async-standup/internal/domain/identity"
	"async-standup/internal/domain/social"
	"async-standup/internal/domain/standups"
	"async-standup/internal/domain/team"
)

// ErrUniqueViolation mirrors a unique index rejecting a row.
var ErrUniqueViolation = errors.New("inmemory: unique constraint violated")

// Store keeps every table in process memory behind one RWMutex. It backs the
// memory storage driver and the HTTP tests.
type Store struct {
	mu   sync.RWMutex
	data *tables
	now  func() time.Time
}

type tables struct {
	users       map[int64]identity.User
	sessions    map[string]identity.Session
	members     map[int64]team.TeamMember
	standups    map[int64]standups.Standup
	assignments map[int64]standups.Assignment
	reactions   map[int64]social.Reaction
	comments    map[int64]social.Comment
	lastID      int64
}

func NewStore() *Store {
	return &Store{
		data: &tables{
			users:       make(map[int64]identity.User),
			sessions:    make(map[string]identity.Session),
			members:     make(map[int64]team.TeamMember),
			standups:    make(map[int64]standups.Standup),
			assignments: make(map[int64]standups.Assignment),
			reactions:   make(map[int64]social.Reaction),
			comments:    make(map[int64]social.Comment),
		},
		now: time.Now,
	}
}

func (s *Store) Identity() *IdentityRepository {
	return &IdentityRepository{conn: conn{store: s}}
}

func (s *Store) Team() *TeamRepository {
	return &TeamRepository{conn: conn{store: s}}
}

func (s *Store) Standups() *StandupsRepository {
	return &StandupsRepository{conn: conn{store: s}}
}

func (s *Store) Social() *SocialRepository {
	return &SocialRepository{conn: conn{store: s}}
}

// nextID hands out ids from one sequence shared by all tables.
func (t *tables) nextID() int64 {
	t.lastID++
	return t.lastID
}

func (t *tables) clone() *tables {
	return &tables{
		users:       maps.Clone(t.users),
		sessions:    maps.Clone(t.sessions),
		members:     maps.Clone(t.members),
		standups:    maps.Clone(t.standups),
		assignments: maps.Clone(t.assignments),
		reactions:   maps.Clone(t.reactions),
		comments:    maps.Clone(t.comments),
		lastID:      t.lastID,
	}
}

// conn is the shared plumbing of the repository adapters. Inside a
// transaction the write lock is already held, so view and update run directly.
type conn struct {
	store *Store
	tx    bool
}

func (c conn) view(fn func(t *tables) error) error {
	if c.tx {
		return fn(c.store.data)
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return fn(c.store.data)
}

func (c conn) update(fn func(t *tables) error) error {
	if c.tx {
		return fn(c.store.data)
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return fn(c.store.data)
}

// transaction holds the write lock for the whole callback and restores the
// previous tables when fn fails.
func (c conn) transaction(fn func(conn) error) error {
	if c.tx {
		return fn(c)
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	snapshot := c.store.data.clone()
	if err := fn(conn{store: c.store, tx: true}); err != nil {
		c.store.data = snapshot
		return err
	}
	return nil
}

func (c conn) now() time.Time {
	return c.store.now().UTC()
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
