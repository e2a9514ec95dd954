// Package engagement implements the toggled relationship edges of the
// platform: channel subscriptions and likes on videos, comments, and tweets.
// A single parameterized engine replaces per-target-kind duplication.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/logging"
)

// TargetKind tags what an edge points at.
type TargetKind string

const (
	KindChannel TargetKind = "channel"
	KindVideo   TargetKind = "video"
	KindComment TargetKind = "comment"
	KindTweet   TargetKind = "tweet"
)

// Valid reports whether the kind is one of the known target kinds.
func (k TargetKind) Valid() bool {
	switch k {
	case KindChannel, KindVideo, KindComment, KindTweet:
		return true
	}
	return false
}

// Edge is a directed relationship from an actor to a target. At most one
// edge exists per (actor, target, kind) tuple.
type Edge struct {
	ID        string     `json:"id"`
	ActorID   string     `json:"actorId"`
	TargetID  string     `json:"targetId"`
	Kind      TargetKind `json:"kind"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ToggleResult reports which side of the toggle a call landed on.
type ToggleResult string

const (
	Created ToggleResult = "created"
	Deleted ToggleResult = "deleted"
)

var (
	// ErrSelfSubscription indicates an actor tried to subscribe to their own
	// channel.
	ErrSelfSubscription = errors.New("cannot subscribe to your own channel")
	// ErrInvalidTarget indicates a blank target or unknown target kind.
	ErrInvalidTarget = errors.New("invalid toggle target")
)

// EdgeStore persists relationship edges. Insert must be atomic
// insert-if-absent: it reports false, without error, when the tuple already
// exists. A read-then-write implementation is not acceptable; the uniqueness
// of the tuple is the serialization point under concurrent toggles.
type EdgeStore interface {
	Insert(ctx context.Context, edge Edge) (bool, error)
	Delete(ctx context.Context, actorID, targetID string, kind TargetKind) (bool, error)
}

// Service is the relationship toggle engine.
type Service struct {
	edges EdgeStore

	now func() time.Time
}

// NewService constructs a toggle engine over the given edge store.
func NewService(edges EdgeStore) *Service {
	if edges == nil {
		panic("engagement: edge store must not be nil")
	}
	return &Service{
		edges: edges,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Toggle flips the edge for (actor, target, kind): absent edges are created,
// present edges are deleted. Concurrent toggles on the same tuple never leave
// more than one edge; the insert-if-absent write decides the winner.
func (s *Service) Toggle(ctx context.Context, actorID, targetID string, kind TargetKind) (ToggleResult, error) {
	ctx, span := logging.StartSpan(ctx, "engagement.toggle")
	defer span.End()

	if actorID == "" || targetID == "" || !kind.Valid() {
		return "", ErrInvalidTarget
	}
	if kind == KindChannel && actorID == targetID {
		return "", ErrSelfSubscription
	}

	edge := Edge{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		TargetID:  targetID,
		Kind:      kind,
		CreatedAt: s.now(),
	}

	inserted, err := s.edges.Insert(ctx, edge)
	if err != nil {
		return "", fmt.Errorf("insert edge: %w", err)
	}
	if inserted {
		return Created, nil
	}

	deleted, err := s.edges.Delete(ctx, actorID, targetID, kind)
	if err != nil {
		return "", fmt.Errorf("delete edge: %w", err)
	}
	if !deleted {
		// A concurrent toggle removed the edge between our insert attempt and
		// the delete. The tuple is absent either way.
		return Deleted, nil
	}
	return Deleted, nil
}
