package mongolog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// memCollection records inserted documents in memory.
type memCollection struct {
	name string

	mu        sync.Mutex
	docs      []bson.D
	deadlines []bool
	err       error
}

func (c *memCollection) InsertOne(ctx context.Context, document any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, hasDeadline := ctx.Deadline()
	c.deadlines = append(c.deadlines, hasDeadline)

	if err := ctx.Err(); err != nil {
		return err
	}
	if c.err != nil {
		return c.err
	}
	c.docs = append(c.docs, document.(bson.D))
	return nil
}

func (c *memCollection) Name() string { return c.name }

func (c *memCollection) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deadlines)
}

func (c *memCollection) documents() []bson.D {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bson.D(nil), c.docs...)
}

// newMemSet returns a collection per level named after the level with a
// "_log" suffix so routing and naming are distinguishable.
func newMemSet() (CollectionSet, map[Level]*memCollection) {
	set := make(CollectionSet)
	byLevel := make(map[Level]*memCollection)
	for _, level := range Levels() {
		c := &memCollection{name: level.String() + "_log"}
		set[level] = c
		byLevel[level] = c
	}
	return set, byLevel
}

func newTestRegistry(t *testing.T, opts ...Option) (*Registry, map[Level]*memCollection) {
	t.Helper()
	set, byLevel := newMemSet()
	reg, err := NewRegistry(set, opts...)
	require.NoError(t, err)
	return reg, byLevel
}

func docKeys(doc bson.D) []string {
	keys := make([]string, 0, len(doc))
	for _, e := range doc {
		keys = append(keys, e.Key)
	}
	return keys
}

func docValue(doc bson.D, key string) (any, bool) {
	for _, e := range doc {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}
