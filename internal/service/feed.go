package service

import (
	"sync"

	"task_tracker/internal/models"
)

// feedBuffer bounds how far a subscriber may lag before events are dropped for it.
const feedBuffer = 16

// FeedHub fans task events out to per-owner subscribers. Publish never blocks.
type FeedHub struct {
	mu   sync.Mutex
	subs map[string]map[*subscription]struct{}
}

type subscription struct {
	ch   chan models.TaskEvent
	once sync.Once
}

func NewFeedHub() *FeedHub {
	return &FeedHub{subs: make(map[string]map[*subscription]struct{})}
}

// Subscribe registers a listener for owner's events. The returned cancel
// func unregisters it and closes the channel; calling it twice is safe.
func (h *FeedHub) Subscribe(owner string) (<-chan models.TaskEvent, func()) {
	sub := &subscription{ch: make(chan models.TaskEvent, feedBuffer)}

	h.mu.Lock()
	if h.subs[owner] == nil {
		h.subs[owner] = make(map[*subscription]struct{})
	}
	h.subs[owner][sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			h.mu.Lock()
			delete(h.subs[owner], sub)
			if len(h.subs[owner]) == 0 {
				delete(h.subs, owner)
			}
			close(sub.ch)
			h.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Publish delivers e to the owner's subscribers, skipping any whose buffer is full.
func (h *FeedHub) Publish(e models.TaskEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[e.Owner] {
		select {
		case sub.ch <- e:
		default:
		}
	}
}

// Subscribers reports how many listeners owner currently has.
func (h *FeedHub) Subscribers(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[owner])
}
