package game

import (
	"sync"

	"github.com/quizfriends/quizmaster/internal/models"
)

// Subscriber receives a deep copy of the state after every applied action.
type Subscriber func(models.GameState)

// Store holds the single authoritative GameState and applies actions
// atomically. It is an explicit dependency-injected instance, not a package
// singleton, so tests construct isolated stores freely.
//
// The console is the sole writer. The display never sees a Store at all; it
// only receives serialized snapshots over the broadcast channel.
type Store struct {
	mu     sync.Mutex
	state  models.GameState
	nextID int
	subs   map[int]Subscriber
}

// NewStore creates a store holding the initial game state.
func NewStore() *Store {
	return &Store{
		state: models.NewGameState(),
		subs:  map[int]Subscriber{},
	}
}

// Apply runs one action through the reducer and notifies subscribers with a
// snapshot of the new state. Application is atomic: no partial update is ever
// observable.
func (s *Store) Apply(action Action) {
	s.mu.Lock()
	s.state = reduce(s.state, action)
	snapshot := s.state.Clone()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	// Notify outside the lock; subscribers may apply follow-up actions.
	for _, fn := range subs {
		fn(snapshot)
	}
}

// State returns a deep copy of the current state.
func (s *Store) State() models.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers a change listener and returns its unsubscribe func.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
