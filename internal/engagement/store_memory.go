package engagement

import (
	"context"
	"sync"
)

type edgeKey struct {
	actorID  string
	targetID string
	kind     TargetKind
}

// NewInMemoryEdgeStore returns an EdgeStore backed by an in-memory map.
func NewInMemoryEdgeStore() *InMemoryEdgeStore {
	return &InMemoryEdgeStore{edges: make(map[edgeKey]Edge)}
}

// InMemoryEdgeStore implements EdgeStore for tests and local development.
// The mutex makes Insert a genuine insert-if-absent.
type InMemoryEdgeStore struct {
	mu    sync.Mutex
	edges map[edgeKey]Edge
}

// Insert stores the edge unless its tuple already exists.
func (s *InMemoryEdgeStore) Insert(_ context.Context, edge Edge) (bool, error) {
	key := edgeKey{actorID: edge.ActorID, targetID: edge.TargetID, kind: edge.Kind}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.edges[key]; exists {
		return false, nil
	}
	s.edges[key] = edge
	return true, nil
}

// Delete removes the edge for the tuple, reporting whether one existed.
func (s *InMemoryEdgeStore) Delete(_ context.Context, actorID, targetID string, kind TargetKind) (bool, error) {
	key := edgeKey{actorID: actorID, targetID: targetID, kind: kind}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.edges[key]; !exists {
		return false, nil
	}
	delete(s.edges, key)
	return true, nil
}

// Count reports the number of stored edges. Useful for tests.
func (s *InMemoryEdgeStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}

// Has reports whether an edge exists for the tuple. Useful for tests.
func (s *InMemoryEdgeStore) Has(actorID, targetID string, kind TargetKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.edges[edgeKey{actorID: actorID, targetID: targetID, kind: kind}]
	return ok
}
