package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by KV.Get for a missing key.
var ErrNotFound = errors.New("key not found")

// KV is the persistence hook behind the state store: one serialized document per key.
// Implementations must be safe for concurrent use.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Event is one exchange with the remote AI service, successful or not.
// Fallback is set when the caller substituted a default result.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Operation string    `json:"operation"`
	Date      string    `json:"date,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	Reply     string    `json:"reply,omitempty"`
	Fallback  bool      `json:"fallback"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms"`
}

// Recorder abstracts persistence of AI exchange events.
// LoadInteractions should return events in chronological order.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
