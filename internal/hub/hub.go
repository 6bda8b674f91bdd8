// Package hub fans change notifications out to live subscriptions. Streams in
// the service layer wake on a topic signal, re-read state and push the fresh
// view to their caller.
package hub

import (
	"sync"

	"go.uber.org/zap"
)

// Topic helpers. Message streams wake on the chat topic; chat-list streams
// wake on the per-user topic.
func ChatTopic(chatID string) string   { return "chat:" + chatID }
func UserChatsTopic(uid string) string { return "chats:" + uid }

// Hub is an in-process topic registry.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
	log  *zap.SugaredLogger
}

func New(log *zap.SugaredLogger) *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscription]struct{}),
		log:  log,
	}
}

// Subscription is one live listener on a topic. Signals are coalesced: a
// subscriber that has not drained its pending signal gets exactly one more
// wake-up, not a backlog.
type Subscription struct {
	topic string
	ch    chan struct{}
	hub   *Hub
	once  sync.Once
}

// Notify returns the wake-up channel. It is closed when the subscription is
// cancelled.
func (s *Subscription) Notify() <-chan struct{} { return s.ch }

// Cancel detaches the subscription and releases its resources. Safe to call
// more than once; other subscribers are unaffected.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		if set, ok := h.subs[s.topic]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(h.subs, s.topic)
			}
		}
		h.mu.Unlock()
		close(s.ch)
	})
}

// Subscribe registers a listener on the topic.
func (h *Hub) Subscribe(topic string) *Subscription {
	s := &Subscription{topic: topic, ch: make(chan struct{}, 1), hub: h}
	h.mu.Lock()
	set, ok := h.subs[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[topic] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish signals every subscriber of the topics. Never blocks: a subscriber
// with a pending signal is skipped.
func (h *Hub) Publish(topics ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, topic := range topics {
		for s := range h.subs[topic] {
			select {
			case s.ch <- struct{}{}:
			default:
			}
		}
	}
}

// Subscribers returns the listener count for a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
