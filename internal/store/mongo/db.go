// Package mongo implements the domain store on MongoDB. One-document writes
// use versioned compare-and-set updates; multi-document operations run inside
// session transactions so the claim counter and the profile effect (or the
// message insert and the chat summary) commit together.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

const connectTimeout = 10 * time.Second

// Store holds the client and collection handles.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	users    *mongo.Collection
	chats    *mongo.Collection
	messages *mongo.Collection
	promos   *mongo.Collection
	gifts    *mongo.Collection
}

// New connects, pings and ensures indexes.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %v: %w", err, domain.ErrStorageUnavailable)
	}

	db := client.Database(dbName)
	s := &Store{
		client:   client,
		db:       db,
		users:    db.Collection("users"),
		chats:    db.Collection("chats"),
		messages: db.Collection("messages"),
		promos:   db.Collection("promo_codes"),
		gifts:    db.Collection("gifts"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.chats.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "pair_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("chats index: %w", err)
	}
	_, err = s.chats.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "participants", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("participants index: %w", err)
	}
	_, err = s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "seq", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("messages index: %w", err)
	}
	return nil
}

func (s *Store) Users() domain.UserRepository       { return &userRepo{s} }
func (s *Store) Chats() domain.ChatRepository       { return &chatRepo{s} }
func (s *Store) Messages() domain.MessageRepository { return &messageRepo{s} }
func (s *Store) Promos() domain.PromoRepository     { return &promoRepo{s} }
func (s *Store) Gifts() domain.GiftRepository       { return &giftRepo{s} }

// WithTransaction runs fn inside a causally-consistent session transaction.
// Transient transaction aborts map to ErrConflict so the caller's retry
// discipline re-runs the whole closure.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return wrapErr("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return wrapErr("transaction", err)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// wrapErr translates driver failures into the domain taxonomy. Domain errors
// produced inside transactions pass through untouched.
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrCodeExhausted),
		errors.Is(err, domain.ErrPerUserLimit),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrMessageDeleted),
		errors.Is(err, domain.ErrStorageUnavailable):
		return err
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case isTransientTxn(err):
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrConflict)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStorageUnavailable)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isTransientTxn(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.HasErrorLabel("TransientTransactionError")
	}
	return false
}
