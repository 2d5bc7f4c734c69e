package bot

import (
	"strconv"

	"github.com/patrickmn/go-cache"

	"github.com/reyarovenko/iMeal/internal/storage"
)

// State is the dialogue position of one user. Exactly one state is active
// per user at any time.
type State int

const (
	StateNone State = iota
	StateAwaitingMealType
	StateAwaitingFoodText
	StateAwaitingDeleteChoice
	StateCalcAge
	StateCalcWeight
	StateCalcHeight
	StateCalcGender
	StateCalcActivity
)

// CalcScratch accumulates the calorie-calculation answers step by step.
type CalcScratch struct {
	Age    int
	Weight float64
	Height int
	Gender string
}

// Session is one user's dialogue state: language, current state and
// whatever the active flow has collected so far.
type Session struct {
	UserID       int64
	Lang         string
	State        State
	MealType     string
	Calc         CalcScratch
	DeleteOffers []storage.Positioned
}

// ResetFlow clears the flow state but keeps the language. Used on menu
// pre-emption and flow completion.
func (s *Session) ResetFlow() {
	s.State = StateNone
	s.MealType = ""
	s.Calc = CalcScratch{}
	s.DeleteOffers = nil
}

// SessionStore keeps sessions in memory for the process lifetime.
type SessionStore struct {
	cache *cache.Cache
}

func NewSessionStore() *SessionStore {
	return &SessionStore{cache: cache.New(cache.NoExpiration, 0)}
}

func sessionKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Get returns the user's session, creating a fresh one on first contact.
func (s *SessionStore) Get(userID int64) *Session {
	if v, ok := s.cache.Get(sessionKey(userID)); ok {
		return v.(*Session)
	}
	sess := &Session{UserID: userID}
	s.cache.Set(sessionKey(userID), sess, cache.NoExpiration)
	return sess
}

// Reset discards the session entirely, language included. Used on /start.
func (s *SessionStore) Reset(userID int64) {
	s.cache.Delete(sessionKey(userID))
}
