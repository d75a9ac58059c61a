package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Nav is the menu a user was last shown.
type Nav string

const (
	NavMain  Nav = "main"
	NavAdmin Nav = "admin"
	NavShop  Nav = "shop"
)

// Session is the scratch state of one active conversation.
// A user has an active scene exactly when a Session exists for them.
type Session struct {
	UserID         int64
	ConversationID uuid.UUID
	Scene          string
	Step           int
	StartedAt      time.Time
	// Form holds the scene's typed scratch data.
	Form any
}

// Store keeps sessions, navigation tags, per-user locks and rate limiters.
// Everything lives in memory and is rebuilt empty on restart.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	nav      map[int64]Nav
	locks    map[int64]*sync.Mutex
	limiters map[int64]*rate.Limiter

	limit rate.Limit
	burst int
}

// NewStore returns a store whose per-user limiter allows perSecond updates
// sustained with the given burst.
func NewStore(perSecond float64, burst int) *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		nav:      make(map[int64]Nav),
		locks:    make(map[int64]*sync.Mutex),
		limiters: make(map[int64]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// Begin starts a new conversation for userID, replacing any previous one.
func (s *Store) Begin(userID int64, scene string, step int, form any) *Session {
	sess := &Session{
		UserID:         userID,
		ConversationID: uuid.New(),
		Scene:          scene,
		Step:           step,
		StartedAt:      time.Now(),
		Form:           form,
	}
	s.mu.Lock()
	s.sessions[userID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the active session, if any.
func (s *Store) Get(userID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Active reports whether userID is inside a scene.
func (s *Store) Active(userID int64) bool {
	_, ok := s.Get(userID)
	return ok
}

// End removes the session and reports whether one existed.
func (s *Store) End(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok
}

// Nav returns the user's navigation tag, main when unknown.
func (s *Store) Nav(userID int64) Nav {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nav[userID]; ok {
		return n
	}
	return NavMain
}

// SetNav records the menu the user is on.
func (s *Store) SetNav(userID int64, n Nav) {
	s.mu.Lock()
	s.nav[userID] = n
	s.mu.Unlock()
}

// Lock serialises update handling for one user. Call the returned func to release.
func (s *Store) Lock(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Allow consumes one token from the user's limiter.
func (s *Store) Allow(userID int64) bool {
	s.mu.Lock()
	l, ok := s.limiters[userID]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.limiters[userID] = l
	}
	s.mu.Unlock()
	return l.Allow()
}
