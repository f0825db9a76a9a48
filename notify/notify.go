// Package notify keeps transient per-user notifications ("toasts") until
// the client collects them.
package notify

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"median/listview"
)

// Notification is one transient message.
type Notification struct {
	ID        string                    `json:"id"`
	Kind      listview.NotificationKind `json:"kind"`
	Message   string                    `json:"message"`
	CreatedAt time.Time                 `json:"created_at"`
}

// Notifier stores notifications per user.
type Notifier interface {
	// Push queues a notification for userID.
	Push(ctx context.Context, userID string, kind listview.NotificationKind, message string) (Notification, error)
	// Drain returns and removes every pending notification of userID,
	// oldest first.
	Drain(ctx context.Context, userID string) ([]Notification, error)
	Close() error
}

// Config holds settings shared by all backends.
type Config struct {
	// TTL is how long an undelivered notification is kept.
	TTL time.Duration
	// MaxPerUser caps the backlog; older entries are dropped first.
	MaxPerUser int
	// Prefix namespaces backend keys.
	Prefix string
}

// DefaultConfig returns the default notification settings.
func DefaultConfig() Config {
	return Config{
		TTL:        5 * time.Minute,
		MaxPerUser: 50,
		Prefix:     "median:notifications:",
	}
}

func newNotification(kind listview.NotificationKind, message string, now time.Time) Notification {
	return Notification{
		ID:        ulid.Make().String(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now.UTC(),
	}
}

// Sink adapts a Notifier to the callback a ListView reports through.
// Push failures go to onError when it is non-nil.
func Sink(ctx context.Context, n Notifier, userID string, onError func(error)) func(listview.Notification) {
	return func(note listview.Notification) {
		if _, err := n.Push(ctx, userID, note.Kind, note.Message); err != nil && onError != nil {
			onError(err)
		}
	}
}
