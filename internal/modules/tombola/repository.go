package tombola

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jacquesbh/tombola/internal/kv"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"
)

// Sessions live exactly as long as the cache entry: a day after the last
// write the tombola is gone.
const sessionTTL = 24 * time.Hour

// SessionRepository stores each session as a single serialized record under
// a namespaced key. Updates on the same code serialize through a per-code
// mutex, so concurrent joins and heartbeats cannot lose each other's writes.
type SessionRepository struct {
	store  kv.Store
	picker domain.Picker

	mu    sync.Mutex
	locks map[string]*codeLock
}

// codeLock counts its holders and waiters so the repository can drop the
// map entry once the last one releases it. Without the count the map would
// retain a mutex for every code ever touched, long past the record's TTL.
type codeLock struct {
	sync.Mutex
	refs int
}

func NewSessionRepository(store kv.Store, picker domain.Picker) *SessionRepository {
	return &SessionRepository{
		store:  store,
		picker: picker,
		locks:  make(map[string]*codeLock),
	}
}

func sessionKey(code string) string {
	return fmt.Sprintf("tombola.%s", code)
}

// Create generates a code that does not collide with any live session and
// writes the initial waiting-state record.
func (r *SessionRepository) Create(ctx context.Context) (string, error) {
	for {
		code := domain.NewCode(r.picker)

		exists, err := r.Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}

		session := domain.NewSession(code)
		if err := r.save(ctx, session); err != nil {
			return "", err
		}

		return code, nil
	}
}

func (r *SessionRepository) Exists(ctx context.Context, code string) (bool, error) {
	_, found, err := r.store.Get(ctx, sessionKey(code))
	return found, err
}

// Load returns the session for code, defaulting to a fresh empty session
// when the record is absent or expired. Absence is empty, not an error -
// callers that need a hard existence guarantee use Exists first.
func (r *SessionRepository) Load(ctx context.Context, code string) (domain.Session, error) {
	value, found, err := r.store.Get(ctx, sessionKey(code))
	if err != nil {
		return domain.Session{}, err
	}
	if !found {
		return domain.NewSession(code), nil
	}

	var session domain.Session
	if err := json.Unmarshal(value, &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session %s: %w", code, err)
	}

	return session, nil
}

// Update runs fn against the current session record and writes the result
// back, holding the session's lock for the whole read-modify-write.
func (r *SessionRepository) Update(
	ctx context.Context,
	code string,
	fn func(*domain.Session) error,
) (domain.Session, error) {
	lock := r.acquireLock(code)
	defer r.releaseLock(code, lock)

	session, err := r.Load(ctx, code)
	if err != nil {
		return domain.Session{}, err
	}

	if err := fn(&session); err != nil {
		return domain.Session{}, err
	}

	if err := r.save(ctx, session); err != nil {
		return domain.Session{}, err
	}

	return session, nil
}

func (r *SessionRepository) save(ctx context.Context, session domain.Session) error {
	value, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.Code, err)
	}

	return r.store.Set(ctx, sessionKey(session.Code), value, sessionTTL)
}

func (r *SessionRepository) acquireLock(code string) *codeLock {
	r.mu.Lock()
	lock, found := r.locks[code]
	if !found {
		lock = &codeLock{}
		r.locks[code] = lock
	}
	lock.refs++
	r.mu.Unlock()

	lock.Lock()

	return lock
}

func (r *SessionRepository) releaseLock(code string, lock *codeLock) {
	lock.Unlock()

	r.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(r.locks, code)
	}
	r.mu.Unlock()
}
