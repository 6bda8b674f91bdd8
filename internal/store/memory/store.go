// Package memory implements the domain store on in-process maps. It backs the
// test suite and broker-less development runs, with the same semantics as the
// Mongo store: deep-copied reads, versioned compare-and-set writes, and
// all-or-nothing transactions.
package memory

import (
	"context"
	"sync"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

type txnKey struct{}

// Store holds all collections behind one mutex.
type Store struct {
	mu sync.Mutex

	users     map[string]*domain.User
	chats     map[string]*domain.Chat
	pairIndex map[string]string // pair key -> chat id
	messages  map[string][]*domain.Message
	promos    map[string]*domain.PromoCode
	gifts     []*domain.Gift
}

func New() *Store {
	return &Store{
		users:     make(map[string]*domain.User),
		chats:     make(map[string]*domain.Chat),
		pairIndex: make(map[string]string),
		messages:  make(map[string][]*domain.Message),
		promos:    make(map[string]*domain.PromoCode),
	}
}

func (s *Store) Users() domain.UserRepository       { return &userRepo{s} }
func (s *Store) Chats() domain.ChatRepository       { return &chatRepo{s} }
func (s *Store) Messages() domain.MessageRepository { return &messageRepo{s} }
func (s *Store) Promos() domain.PromoRepository     { return &promoRepo{s} }
func (s *Store) Gifts() domain.GiftRepository       { return &giftRepo{s} }

// lock acquires the store mutex unless the context already runs inside a
// transaction, which holds it for its whole body.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txnKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithTransaction serializes fn against all other writers and rolls the store
// back to its pre-transaction state if fn fails, so partial commits are never
// observable.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txnKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txnKey{}, struct{}{})); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	users     map[string]*domain.User
	chats     map[string]*domain.Chat
	pairIndex map[string]string
	messages  map[string][]*domain.Message
	promos    map[string]*domain.PromoCode
	gifts     []*domain.Gift
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		users:     make(map[string]*domain.User, len(s.users)),
		chats:     make(map[string]*domain.Chat, len(s.chats)),
		pairIndex: make(map[string]string, len(s.pairIndex)),
		messages:  make(map[string][]*domain.Message, len(s.messages)),
		promos:    make(map[string]*domain.PromoCode, len(s.promos)),
		gifts:     append([]*domain.Gift(nil), s.gifts...),
	}
	for id, u := range s.users {
		snap.users[id] = u.Clone()
	}
	for id, c := range s.chats {
		snap.chats[id] = c.Clone()
	}
	for k, v := range s.pairIndex {
		snap.pairIndex[k] = v
	}
	for id, msgs := range s.messages {
		cp := make([]*domain.Message, len(msgs))
		for i, m := range msgs {
			cp[i] = m.Clone()
		}
		snap.messages[id] = cp
	}
	for code, p := range s.promos {
		snap.promos[code] = p.Clone()
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.chats = snap.chats
	s.pairIndex = snap.pairIndex
	s.messages = snap.messages
	s.promos = snap.promos
	s.gifts = snap.gifts
}
