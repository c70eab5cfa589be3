// Package session holds the uploaded dataset and dashboard filters of each
// visitor.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"expcat/internal/cache"
	"expcat/internal/core"
	"expcat/internal/csvfile"
)

// CookieName carries the session ID.
const CookieName = "expcat_session"

// ErrNotFound means the cookie is absent or the session was evicted.
var ErrNotFound = errors.New("session not found")

// Session is an immutable snapshot of one upload. Updates produce a new
// value that replaces the old one in the Store.
type Session struct {
	ID           string
	FileName     string
	CreatedAt    time.Time
	Dataset      *csvfile.Dataset
	Transactions []core.CategorizedTransaction
	Filter       core.Filter
}

// WithFilter returns a copy of s using f.
func (s *Session) WithFilter(f core.Filter) *Session {
	cp := *s
	cp.Filter = f
	return &cp
}

// Visible is the filtered table in display order.
func (s *Session) Visible() []core.CategorizedTransaction {
	return core.SortByDateDesc(s.Filter.Apply(s.Transactions))
}

// Categories returns the label of every row, aligned with Dataset.Rows.
func (s *Session) Categories() []core.Category {
	out := make([]core.Category, len(s.Transactions))
	for i, t := range s.Transactions {
		out[i] = t.Category
	}
	return out
}

// Store keeps sessions in a bounded TTL cache.
type Store struct {
	cache  *cache.LRUCache[*Session]
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewStore creates a store. secure marks the cookie Secure.
func NewStore(c *cache.LRUCache[*Session], ttl time.Duration, secure bool) *Store {
	return &Store{cache: c, ttl: ttl, secure: secure, now: time.Now}
}

// New registers a fresh session for an import.
func (st *Store) New(fileName string, ds *csvfile.Dataset, txs []core.CategorizedTransaction) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		FileName:     fileName,
		CreatedAt:    st.now(),
		Dataset:      ds,
		Transactions: txs,
	}
	st.cache.Set(s.ID, s)
	return s
}

func (st *Store) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	return st.cache.Get(id)
}

// Save stores s, replacing any previous snapshot with the same ID.
func (st *Store) Save(s *Session) {
	st.cache.Set(s.ID, s)
}

func (st *Store) Delete(id string) {
	st.cache.Delete(id)
}

func (st *Store) Len() int { return st.cache.Len() }

// FromRequest resolves the session named by the request cookie.
func (st *Store) FromRequest(r *http.Request) (*Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrNotFound
	}
	s, ok := st.Get(c.Value)
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// SetCookie points the client at s.
func (st *Store) SetCookie(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(st.ttl.Seconds()),
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (st *Store) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
