package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/evofit/evofit-backend/internal/metrics"
	"github.com/evofit/evofit-backend/internal/models"
)

const (
	EventPostCreated = "post_created"
	EventPostLiked   = "post_liked"

	feedChannel     = "feed:events"
	subscriberQueue = 32
)

// FeedEvent is the payload sent over Redis and to WebSocket clients.
type FeedEvent struct {
	Type      string           `json:"type"`
	Post      *models.FeedPost `json:"post,omitempty"`
	PostID    string           `json:"postId,omitempty"`
	Likes     int              `json:"likes,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// FeedSubscriber receives events through a bounded queue. A subscriber
// that falls behind misses events rather than stalling the others.
type FeedSubscriber struct {
	events chan FeedEvent
}

func (s *FeedSubscriber) Events() <-chan FeedEvent {
	return s.events
}

// FeedHub fans community events out to live feed subscribers. With Redis
// configured every instance publishes to one channel and delivers what it
// receives from it; without Redis delivery stays in process.
type FeedHub struct {
	mu          sync.RWMutex
	subscribers map[*FeedSubscriber]struct{}

	redis   *redis.Client
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	started sync.Once
}

func NewFeedHub(rdb *redis.Client, log logrus.FieldLogger, m *metrics.Metrics) *FeedHub {
	return &FeedHub{
		subscribers: make(map[*FeedSubscriber]struct{}),
		redis:       rdb,
		log:         log,
		metrics:     m,
	}
}

func (h *FeedHub) Subscribe() *FeedSubscriber {
	sub := &FeedSubscriber{events: make(chan FeedEvent, subscriberQueue)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	h.metrics.FeedSubscribed()
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call twice.
func (h *FeedHub) Unsubscribe(sub *FeedSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	close(sub.events)
	h.metrics.FeedUnsubscribed()
}

func (h *FeedHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// fanOut delivers to local subscribers without blocking.
func (h *FeedHub) fanOut(event FeedEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
			h.log.WithField("type", event.Type).Debug("feed subscriber queue full; event dropped")
		}
	}
}

// Publish broadcasts event. Delivery is best effort: a Redis failure
// falls back to local subscribers and is only logged.
func (h *FeedHub) Publish(ctx context.Context, event FeedEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if h.redis == nil {
		h.fanOut(event)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Error("failed to encode feed event")
		return
	}
	if err := h.redis.Publish(ctx, feedChannel, data).Err(); err != nil {
		h.log.WithError(err).Warn("redis publish failed; delivering locally")
		h.fanOut(event)
	}
}

// Run starts the Redis subscriber once per hub and returns immediately.
// It stops when ctx is cancelled.
func (h *FeedHub) Run(ctx context.Context) {
	if h.redis == nil {
		return
	}
	h.started.Do(func() {
		go h.subscribeLoop(ctx)
	})
}

func (h *FeedHub) subscribeLoop(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := h.receive(ctx, func() { backoff = time.Second })
		if ctx.Err() != nil {
			return
		}
		h.log.WithError(err).WithField("retry_in", backoff).Warn("feed subscriber disconnected")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}

// receive consumes the channel until an error occurs.
func (h *FeedHub) receive(ctx context.Context, onMessage func()) error {
	pubsub := h.redis.Subscribe(ctx, feedChannel)
	defer pubsub.Close()

	h.log.WithField("channel", feedChannel).Info("feed subscriber started")

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return err
		}
		onMessage()

		var event FeedEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			h.log.WithError(err).Warn("failed to decode feed event")
			continue
		}
		h.fanOut(event)
	}
}
