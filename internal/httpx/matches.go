package httpx

import (
	"sync"

	"github.com/sirupsen/logrus"

	"power_chess/internal/game"
)

// match is one running game with its websocket subscribers. mu serializes
// every access to game.
type match struct {
	id   string
	mu   sync.Mutex
	game *game.Game
	hub  *Hub
	log  logrus.FieldLogger
}

type registry struct {
	mu      sync.RWMutex
	matches map[string]*match
}

func newRegistry() *registry {
	return &registry{matches: make(map[string]*match)}
}

func (r *registry) add(m *match) {
	r.mu.Lock()
	r.matches[m.id] = m
	r.mu.Unlock()
}

func (r *registry) get(id string) (*match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[id]
	return m, ok
}

func (r *registry) remove(id string) (*match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if ok {
		delete(r.matches, id)
	}
	return m, ok
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

// drain empties the registry and returns what it held.
func (r *registry) drain() []*match {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*match, 0, len(r.matches))
	for id, m := range r.matches {
		out = append(out, m)
		delete(r.matches, id)
	}
	return out
}
