package mongolog

import (
	"context"
	"fmt"
)

// Collection is the write side of a MongoDB collection.
// *mongodb.Collection satisfies it; tests use in-memory fakes.
type Collection interface {
	InsertOne(ctx context.Context, document any) error
}

// namedCollection is implemented by collections that can report their name
// for error messages and telemetry.
type namedCollection interface {
	Name() string
}

// CollectionSet maps each level to the collection its records go to.
type CollectionSet map[Level]Collection

// Validate reports the first level without a collection.
func (s CollectionSet) Validate() error {
	for _, level := range Levels() {
		if s[level] == nil {
			return fmt.Errorf("%w for level %s", ErrMissingCollection, level)
		}
	}
	return nil
}

func (s CollectionSet) clone() CollectionSet {
	out := make(CollectionSet, len(s))
	for level, coll := range s {
		out[level] = coll
	}
	return out
}

func collectionName(level Level, coll Collection) string {
	if n, ok := coll.(namedCollection); ok && n.Name() != "" {
		return n.Name()
	}
	return level.String()
}
