package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Collection wraps mongo.Collection down to the single operation the
// adapter performs. It is safe for concurrent use.
type Collection struct {
	coll *mongo.Collection
}

// NewCollection wraps an existing driver collection.
func NewCollection(coll *mongo.Collection) *Collection {
	return &Collection{coll: coll}
}

// InsertOne inserts document and returns the driver error unchanged.
func (c *Collection) InsertOne(ctx context.Context, document any) error {
	_, err := c.coll.InsertOne(ctx, document)
	return err
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.coll.Name()
}
