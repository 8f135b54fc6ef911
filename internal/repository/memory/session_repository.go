package memory

import (
	"time"

	"smartcity-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live chat sessions. Whenever a session leaves the
// cache (explicit Delete or TTL expiry) it is closed, which drops any reply
// still waiting on its timer.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl, cleanupInterval time.Duration) *SessionRepository {
	c := cache.New(ttl, cleanupInterval)
	c.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*store.Session); ok {
			s.Close()
		}
	})
	return &SessionRepository{
		cache: c,
	}
}

// Save stores the session and restarts its expiry clock.
func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

// Touch restarts the expiry clock of a session that is still registered. It
// never re-adds one that was deleted or has expired, and reports whether the
// session is still live.
func (r *SessionRepository) Touch(session *store.Session) bool {
	if session.Closed() {
		return false
	}
	return r.cache.Replace(session.ID, session, cache.DefaultExpiration) == nil
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

// CloseAll deletes every session, closing each one.
func (r *SessionRepository) CloseAll() {
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}
