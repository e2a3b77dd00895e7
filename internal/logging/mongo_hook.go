package logging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	queueSize = 4096 // Buffered entries before new ones are dropped
	batchSize = 50   // Maximum documents per InsertMany
	drainTick = 2 * time.Second
)

// LogDocument is the shape written to MongoDB
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Fields    bson.M    `bson:"fields,omitempty"`
}

// insertFunc writes one batch of documents
type insertFunc func(ctx context.Context, docs []any) error

// MongoHook is a logrus hook that stores entries in MongoDB in the background.
// Fire never blocks; entries are dropped when the queue is full.
type MongoHook struct {
	insert    insertFunc
	client    *mongo.Client
	queue     chan LogDocument
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMongoHook connects to uri and returns a hook writing to db.collection
func NewMongoHook(uri, db, collection string) (*MongoHook, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo hook: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo hook: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "time", Value: -1}},
	})

	h := newMongoHook(func(ctx context.Context, docs []any) error {
		_, err := col.InsertMany(ctx, docs)
		return err
	})
	h.client = client
	return h, nil
}

func newMongoHook(insert insertFunc) *MongoHook {
	h := &MongoHook{
		insert: insert,
		queue:  make(chan LogDocument, queueSize),
		done:   make(chan struct{}),
	}
	h.wg.Add(1)
	go h.drain()
	return h
}

// Levels implements logrus.Hook
func (h *MongoHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook
func (h *MongoHook) Fire(e *logrus.Entry) error {
	doc := LogDocument{
		Time:  e.Time,
		Level: e.Level.String(),
		Msg:   e.Message,
	}
	if len(e.Data) > 0 {
		doc.Fields = bson.M{}
		for k, v := range e.Data {
			switch val := v.(type) {
			case error:
				doc.Fields[k] = val.Error() // bson cannot encode error values
			default:
				if k == "request_id" {
					doc.RequestID = fmt.Sprint(val)
					continue
				}
				doc.Fields[k] = val
			}
		}
	}
	select {
	case h.queue <- doc:
	default:
	}
	return nil
}

func (h *MongoHook) drain() {
	defer h.wg.Done()
	ticker := time.NewTicker(drainTick)
	defer ticker.Stop()

	batch := make([]any, 0, batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.insert(ctx, batch) // Logging about failed logging would loop
		batch = make([]any, 0, batchSize)
	}

	for {
		select {
		case doc := <-h.queue:
			batch = append(batch, doc)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-h.done:
			for {
				select {
				case doc := <-h.queue:
					batch = append(batch, doc)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close flushes queued entries and disconnects. Safe to call more than once.
func (h *MongoHook) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()
		if h.client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = h.client.Disconnect(ctx)
		}
	})
}
