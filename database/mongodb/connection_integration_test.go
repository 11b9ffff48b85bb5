//go:build integration

package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/gaborage/mongolog/logger"
	"github.com/gaborage/mongolog/testing/containers"
)

func TestIntegrationConnectAndInsert(t *testing.T) {
	ctx := context.Background()
	mongo := containers.StartMongoDBContainer(ctx, t, nil)

	cfg := mongo.Config("conn_test")
	cfg.Mongo.Collections.Info = "infos"

	conn, err := Connect(ctx, &cfg.Mongo, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(context.Background()) })

	require.NoError(t, conn.Health(ctx))
	assert.Equal(t, "conn_test", conn.DatabaseName())

	colls := conn.Collections()
	require.Len(t, colls, 5)
	assert.Equal(t, "infos", colls["info"].Name())

	require.NoError(t, colls["info"].InsertOne(ctx, bson.D{{Key: "name", Value: "svc"}, {Key: "message", Value: "m"}}))

	docs := mongo.Documents(ctx, t, "conn_test", "infos")
	require.Len(t, docs, 1)
	assert.Equal(t, bson.D{{Key: "name", Value: "svc"}, {Key: "message", Value: "m"}}, docs[0])
}

func TestIntegrationCloseStopsInserts(t *testing.T) {
	ctx := context.Background()
	mongo := containers.StartMongoDBContainer(ctx, t, nil)

	cfg := mongo.Config("conn_test")
	conn, err := Connect(ctx, &cfg.Mongo, nil)
	require.NoError(t, err)

	coll := conn.Collections()["error"]
	require.NoError(t, conn.Close(ctx))

	assert.Error(t, coll.InsertOne(ctx, bson.D{{Key: "name", Value: "late"}}))
}
