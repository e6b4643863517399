package capture

import (
	"sort"
	"sync"
)

// Store holds the chain variables of a session, one per name.
type Store struct {
	mu   sync.RWMutex
	vars map[string]ChainVariable
}

func NewStore() *Store {
	return &Store{vars: make(map[string]ChainVariable)}
}

// Upsert adds v, replacing any variable with the same name.
func (s *Store) Upsert(v ChainVariable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[v.Name] = v
}

func (s *Store) Get(name string) (ChainVariable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// Remove deletes the variable named name and reports whether it existed.
func (s *Store) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vars[name]; !ok {
		return false
	}
	delete(s.vars, name)
	return true
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars = make(map[string]ChainVariable)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vars)
}

// List returns the variables sorted by name.
func (s *Store) List() []ChainVariable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChainVariable, 0, len(s.vars))
	for _, v := range s.vars {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Vars returns the name to value mapping used for substitution.
func (s *Store) Vars() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.vars))
	for name, v := range s.vars {
		out[name] = v.Value
	}
	return out
}
