// Package pubsub is the in-process notification bus. The subscriber registry
// lives for the process lifetime only; events are never persisted and
// subscribers receive no backlog.
package pubsub

import (
	"sync"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"postboard/pkg/models"
)

// subscriberBuffer absorbs bursts between publishes and reads. A subscriber
// whose buffer is full at publish time loses that event (at-most-once).
const subscriberBuffer = 64

type Bus struct {
	mu   sync.Mutex
	subs map[string]map[uuid.UUID]chan models.Event
}

func New() *Bus {
	return &Bus{subs: make(map[string]map[uuid.UUID]chan models.Event)}
}

// Subscription is a live, per-caller event sequence. It yields events
// published after the subscriber attached, in publish order, until
// Unsubscribe is called.
type Subscription struct {
	C <-chan models.Event

	bus   *Bus
	topic string
	id    uuid.UUID
	once  sync.Once
}

func (b *Bus) Subscribe(topic string) (*Subscription, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	ch := make(chan models.Event, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uuid.UUID]chan models.Event)
	}
	b.subs[topic][id] = ch

	return &Subscription{C: ch, bus: b, topic: topic, id: id}, nil
}

// Unsubscribe detaches promptly, releasing the delivery slot and closing the
// channel. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()

		ch, ok := s.bus.subs[s.topic][s.id]
		if !ok {
			return
		}
		delete(s.bus.subs[s.topic], s.id)
		close(ch)
	})
}

// Publish delivers event to every subscriber currently attached to topic.
// Publishes are serialized, so all subscribers observe the same order.
// Delivery is fire-and-forget: a full subscriber buffer drops the event for
// that subscriber and never blocks the publisher.
func (b *Bus) Publish(topic string, event models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs[topic] {
		select {
		case ch <- event:
		default:
			log.Warnf("[pubsub] subscriber %s too slow, dropping %s event", id, event.Type)
		}
	}
}
