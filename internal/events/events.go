// Package events is an in-process publish/subscribe bus keyed by media item.
//
// Publishing an [Event] for a [models.MediaRef] wakes every subscriber of that ref and kind. The
// review flow uses it so that views showing a rating summary re-fetch it after a review is
// created ([ReviewAverageWatcher]). The opt-in favorites cache publishes [KindFavorite] events.
//
// The bus is built on watermill's gochannel Pub/Sub. Delivery is at-most-once; events
// published while nobody listens are dropped.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/goccy/go-json"
)

// ErrClosed is returned when publishing on a closed [Bus].
var ErrClosed = fmt.Errorf("event bus closed")

// Kind separates event families on the same media item.
type Kind string

const (
	KindReview   Kind = "review"
	KindFavorite Kind = "favorite"
)

// Event is the payload delivered to subscribers.
type Event struct {
	Kind     Kind             `json:"kind"`
	Type     models.MediaType `json:"mediaType"`
	ID       string           `json:"mediaId"`
	MemberID int64            `json:"memberId,omitempty"`
	At       time.Time        `json:"at"`
}

// Ref returns the media item the event is about.
func (e Event) Ref() models.MediaRef {
	return models.MediaRef{Type: e.Type, ID: e.ID}
}

// Bus publishes and delivers [Event] values.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *log.Logger

	mu     sync.Mutex
	closed bool
}

// NewBus creates a [Bus]. A nil logger discards bus logs.
func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	logger = shared.WithLogger(logger, "component", "events")
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, NewLogAdapter(logger)),
		logger: logger,
	}
}

// Publish announces a change of kind on ref.
func (b *Bus) Publish(kind Kind, ref models.MediaRef, memberID int64) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	payload, err := json.Marshal(Event{Kind: kind, Type: ref.Type, ID: ref.ID, MemberID: memberID, At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(ref.Topic(string(kind)), msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", kind, err)
	}
	b.logger.Debug("published", "kind", kind, "ref", ref.String())
	return nil
}

// Subscribe delivers events of kind on ref until ctx is done. The channel is closed afterwards.
func (b *Bus) Subscribe(ctx context.Context, kind Kind, ref models.MediaRef) (<-chan Event, error) {
	msgs, err := b.pubsub.Subscribe(ctx, ref.Topic(string(kind)))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s events: %w", kind, err)
	}

	out := make(chan Event, 8)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				b.logger.Warn("dropping malformed event", "uuid", msg.UUID, "err", err)
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close stops delivery to all subscribers.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	return b.pubsub.Close()
}
