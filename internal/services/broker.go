package services

import (
	"sync"

	"skinscan-backend/internal/models"
)

// Subscription receives change events for one user. C has a single slot:
// an undelivered event already means a refresh is due, so extras are dropped.
type Subscription struct {
	C      <-chan models.ChangeEvent
	c      chan models.ChangeEvent
	userID string
}

// Broker fans change events out to the subscribers of the event's user.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[*Subscription]struct{})}
}

func (b *Broker) Subscribe(userID string) *Subscription {
	c := make(chan models.ChangeEvent, 1)
	sub := &Subscription{C: c, c: c, userID: userID}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[*Subscription]struct{})
	}
	b.subs[userID][sub] = struct{}{}
	return sub
}

func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.subs[sub.userID]
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.userID)
	}
}

func (b *Broker) Publish(event models.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[event.UserID] {
		select {
		case sub.c <- event:
		default:
		}
	}
}

func (b *Broker) Subscribers(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[userID])
}
