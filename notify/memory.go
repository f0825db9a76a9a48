package notify

import (
	"context"
	"sync"
	"time"

	"median/listview"
)

// MemoryNotifier keeps notifications in process memory.
type MemoryNotifier struct {
	mu     sync.Mutex
	config Config
	now    func() time.Time
	queues map[string][]Notification
}

// NewMemoryNotifier creates an in-memory notifier.
func NewMemoryNotifier(config Config) *MemoryNotifier {
	return &MemoryNotifier{
		config: config,
		now:    time.Now,
		queues: map[string][]Notification{},
	}
}

// Push queues a notification.
func (m *MemoryNotifier) Push(ctx context.Context, userID string, kind listview.NotificationKind, message string) (Notification, error) {
	if err := ctx.Err(); err != nil {
		return Notification{}, err
	}

	n := newNotification(kind, message, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()

	queue := append(m.live(userID), n)
	if limit := m.config.MaxPerUser; limit > 0 && len(queue) > limit {
		queue = queue[len(queue)-limit:]
	}
	m.queues[userID] = queue
	return n, nil
}

// Drain returns and clears pending notifications.
func (m *MemoryNotifier) Drain(ctx context.Context, userID string) ([]Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	queue := m.live(userID)
	delete(m.queues, userID)
	if queue == nil {
		queue = []Notification{}
	}
	return queue, nil
}

// Close is a no-op.
func (m *MemoryNotifier) Close() error {
	return nil
}

// live drops expired entries of userID. Callers hold m.mu.
func (m *MemoryNotifier) live(userID string) []Notification {
	queue := m.queues[userID]
	if m.config.TTL <= 0 {
		return queue
	}
	cutoff := m.now().Add(-m.config.TTL)
	kept := queue[:0]
	for _, n := range queue {
		if n.CreatedAt.After(cutoff) {
			kept = append(kept, n)
		}
	}
	return kept
}
