// ============================================================================
// backend/internal/localstore/store.go
// MongoDB-backed admin records for running without the REST backend
// ============================================================================

package localstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"schedule_web/backend/internal/entity"
)

// ErrNoRecord is returned when a remove targets an id that is not stored.
var ErrNoRecord = errors.New("record not found")

// ErrDuplicateID is returned when an edit renames a record onto an id that
// another record already holds.
var ErrDuplicateID = errors.New("รหัสนี้มีอยู่แล้ว")

const queryTimeout = 10 * time.Second

// Store hands out one collection per admin entity.
type Store struct {
	db     *mongo.Database
	prefix string
}

// New wraps db. Collections are named "admin_<entity>".
func New(db *mongo.Database) *Store {
	return &Store{db: db, prefix: "admin_"}
}

// Drop removes every record of one entity.
func (s *Store) Drop(ctx context.Context, name string) error {
	if err := s.db.Collection(s.prefix + name).Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	return nil
}

// document wraps a record with the key and insertion time used for ordering.
type document[T any] struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
	Record    T         `bson:"record"`
}

// Collection implements entity.Remote[T] on a MongoDB collection.
type Collection[T any] struct {
	col   *mongo.Collection
	id    func(T) string
	setID func(*T, string)
}

// NewCollection binds entity name to its collection. id reads a record's key;
// setID writes the key assigned on insert.
func NewCollection[T any](s *Store, name string, id func(T) string, setID func(*T, string)) *Collection[T] {
	return &Collection[T]{
		col:   s.db.Collection(s.prefix + name),
		id:    id,
		setID: setID,
	}
}

func (c *Collection[T]) Capabilities() entity.Capabilities {
	return entity.Capabilities{Load: true, Create: true, Remove: true}
}

// Load returns records in insertion order.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := c.col.Find(queryCtx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.col.Name(), err)
	}
	defer cursor.Close(queryCtx)

	var docs []document[T]
	if err := cursor.All(queryCtx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.col.Name(), err)
	}

	records := make([]T, 0, len(docs))
	for _, d := range docs {
		rec := d.Record
		c.setID(&rec, d.ID)
		records = append(records, rec)
	}
	return records, nil
}

// Create upserts rec. The key is the record's own id when it has one, then
// the id of the record under edit, then a fresh UUID. When an edit changes
// the key the old document is removed; the new key must not be taken.
func (c *Collection[T]) Create(ctx context.Context, rec T, editing *T) error {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	previous := ""
	if editing != nil {
		previous = c.id(*editing)
	}
	key := c.id(rec)
	if key == "" {
		key = previous
	}
	if key == "" {
		key = uuid.NewString()
	}
	c.setID(&rec, key)

	if previous != "" && previous != key {
		n, err := c.col.CountDocuments(queryCtx, bson.M{"_id": key})
		if err != nil {
			return fmt.Errorf("check %s %s: %w", c.col.Name(), key, err)
		}
		if n > 0 {
			return fmt.Errorf("save %s %s: %w", c.col.Name(), key, ErrDuplicateID)
		}
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set":         bson.M{"record": rec, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	if _, err := c.col.UpdateByID(queryCtx, key, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("save %s %s: %w", c.col.Name(), key, err)
	}

	if previous != "" && previous != key {
		if _, err := c.col.DeleteOne(queryCtx, bson.M{"_id": previous}); err != nil {
			return fmt.Errorf("drop %s %s: %w", c.col.Name(), previous, err)
		}
	}
	return nil
}

func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := c.col.DeleteOne(queryCtx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.col.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s %s: %w", c.col.Name(), id, ErrNoRecord)
	}
	return nil
}
