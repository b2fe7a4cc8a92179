// Package changefeed tails MongoDB change streams for the collections that
// affect what a viewer can see, and fans events out to subscribers.
//
// Events are hints, not deltas: a subscriber re-derives its state from the
// stores when poked. Delivery is best-effort; a slow subscriber drops
// events rather than stalling the feed, which is safe because every event
// only means "something changed, go look".
package changefeed

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Collections the feed watches. Anything else in the database is invisible
// to viewers and not worth waking them for.
var watched = []string{"groups", "group_memberships", "group_memos", "memos"}

const subscriberBuffer = 16

// Event is one change hint.
type Event struct {
	Collection string             `json:"collection"`
	Op         string             `json:"op"` // insert | update | replace | delete
	DocumentID primitive.ObjectID `json:"document_id"`
	// GroupID is set when the changed document carries a group reference,
	// so subscribers can ignore groups they are not viewing.
	GroupID primitive.ObjectID `json:"group_id,omitempty"`
}

// Feed is a background worker that owns the change stream and the
// subscriber set.
type Feed struct {
	db  *mongo.Database
	log *zap.Logger

	mu     sync.Mutex
	subs   map[uint64]chan Event
	nextID uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a feed for the given database.
func New(db *mongo.Database, logger *zap.Logger) *Feed {
	return &Feed{
		db:     db,
		log:    logger,
		subs:   make(map[uint64]chan Event),
		stopCh: make(chan struct{}),
	}
}

// Start begins tailing the change stream in the background. The stream is
// reopened with backoff on error; change streams require a replica set, so
// on a standalone deployment the feed logs once and viewers fall back to
// quiet-window reconciles only.
func (f *Feed) Start() {
	f.wg.Add(1)
	go f.run()
	f.log.Info("change feed started", zap.Strings("collections", watched))
}

// Stop shuts the feed down and closes all subscriber channels.
func (f *Feed) Stop() {
	close(f.stopCh)
	f.wg.Wait()

	f.mu.Lock()
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
	f.mu.Unlock()
	f.log.Info("change feed stopped")
}

// Subscribe registers a listener. The returned cancel function unregisters
// it and closes the channel; callers must cancel on teardown so events stop
// arriving after the viewer is gone.
func (f *Feed) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *Feed) run() {
	defer f.wg.Done()

	backoff := time.Second
	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		if err := f.tail(); err != nil {
			f.log.Warn("change stream interrupted", zap.Error(err), zap.Duration("retry_in", backoff))
		}

		select {
		case <-f.stopCh:
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// tail opens one change stream and pumps it until error or shutdown.
func (f *Feed) tail() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tie stream lifetime to Stop.
	go func() {
		select {
		case <-f.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "ns.coll", Value: bson.D{{Key: "$in", Value: watched}}},
		}}},
	}
	stream, err := f.db.Watch(ctx, pipeline)
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var raw struct {
			OperationType string `bson:"operationType"`
			Ns            struct {
				Coll string `bson:"coll"`
			} `bson:"ns"`
			DocumentKey struct {
				ID primitive.ObjectID `bson:"_id"`
			} `bson:"documentKey"`
			FullDocument struct {
				GroupID primitive.ObjectID `bson:"group_id"`
			} `bson:"fullDocument"`
		}
		if err := stream.Decode(&raw); err != nil {
			f.log.Warn("change event decode failed", zap.Error(err))
			continue
		}
		f.publish(Event{
			Collection: raw.Ns.Coll,
			Op:         raw.OperationType,
			DocumentID: raw.DocumentKey.ID,
			GroupID:    raw.FullDocument.GroupID,
		})
	}
	return stream.Err()
}

// publish delivers to every subscriber without blocking. A full subscriber
// buffer drops the event; the subscriber's next refresh covers it.
func (f *Feed) publish(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
