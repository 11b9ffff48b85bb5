//go:build integration

package containers

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/gaborage/mongolog/config"
)

// MongoDBContainerConfig holds configuration for the MongoDB test container.
type MongoDBContainerConfig struct {
	// ImageTag specifies the MongoDB version (default: "8.0")
	ImageTag string
	// Username and Password enable authentication when both are set.
	Username string
	Password string
	// StartupTimeout for container initialization (default: 60 seconds)
	StartupTimeout time.Duration
}

// DefaultMongoDBConfig returns a MongoDB 8.0 container config with
// authentication enabled.
func DefaultMongoDBConfig() *MongoDBContainerConfig {
	return &MongoDBContainerConfig{
		ImageTag:       "8.0",
		Username:       "testuser",
		Password:       "testpass",
		StartupTimeout: 60 * time.Second,
	}
}

// MongoDBContainer is a running MongoDB server plus a driver client used by
// tests to read back what the adapter wrote.
type MongoDBContainer struct {
	container *mongodb.MongoDBContainer
	connStr   string
	client    *mongo.Client
}

// StartMongoDBContainer starts a MongoDB container. The test is skipped when
// no Docker daemon is reachable. The container is terminated when the test
// finishes.
func StartMongoDBContainer(ctx context.Context, t *testing.T, cfg *MongoDBContainerConfig) *MongoDBContainer {
	t.Helper()

	if cfg == nil {
		cfg = DefaultMongoDBConfig()
	}

	if !isDockerAvailable(ctx) {
		t.Skip("Docker is not available - skipping integration test")
	}

	opts := []testcontainers.ContainerCustomizer{
		testcontainers.WithWaitStrategy(
			wait.ForLog("Waiting for connections").WithStartupTimeout(cfg.StartupTimeout),
		),
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, mongodb.WithUsername(cfg.Username), mongodb.WithPassword(cfg.Password))
	}

	container, err := mongodb.Run(ctx, fmt.Sprintf("mongo:%s", cfg.ImageTag), opts...)
	if err != nil {
		t.Fatalf("failed to start MongoDB container: %v", err)
	}
	m := &MongoDBContainer{container: container}
	t.Cleanup(func() {
		if err := m.terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate MongoDB container: %v", err)
		}
	})

	m.connStr, err = container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get MongoDB connection string: %v", err)
	}

	m.client, err = mongo.Connect(options.Client().ApplyURI(m.connStr))
	if err != nil {
		t.Fatalf("failed to create verification client: %v", err)
	}

	t.Logf("MongoDB container started at %s", redactConnectionString(m.connStr))
	return m
}

// ConnectionString returns the MongoDB connection string, credentials included.
func (m *MongoDBContainer) ConnectionString() string {
	return m.connStr
}

// Config returns a default configuration pointed at the container and at
// database.
func (m *MongoDBContainer) Config(database string) *config.Config {
	cfg := config.Default()
	cfg.Mongo.URI = m.connStr
	cfg.Mongo.Database = database
	cfg.Mongo.Timeout.Connect = 20 * time.Second
	return cfg
}

// Documents returns every document in database.collection in insertion
// order, without the generated _id.
func (m *MongoDBContainer) Documents(ctx context.Context, t *testing.T, database, collection string) []bson.D {
	t.Helper()

	findOpts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.D{{Key: "_id", Value: 0}})

	cur, err := m.client.Database(database).Collection(collection).Find(ctx, bson.D{}, findOpts)
	if err != nil {
		t.Fatalf("failed to query %s.%s: %v", database, collection, err)
	}

	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		t.Fatalf("failed to decode %s.%s: %v", database, collection, err)
	}
	return docs
}

// Stop stops the container without removing it, making the server
// unreachable for the rest of the test.
func (m *MongoDBContainer) Stop(ctx context.Context, t *testing.T) {
	t.Helper()
	timeout := 10 * time.Second
	if err := m.container.Stop(ctx, &timeout); err != nil {
		t.Fatalf("failed to stop MongoDB container: %v", err)
	}
}

func (m *MongoDBContainer) terminate(ctx context.Context) error {
	if m.client != nil {
		_ = m.client.Disconnect(ctx)
	}
	if m.container == nil {
		return nil
	}
	return m.container.Terminate(ctx)
}

// redactConnectionString masks the password for log output.
func redactConnectionString(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "mongodb://****:****@<host>:<port>"
	}

	if u.User != nil {
		if username := u.User.Username(); username != "" {
			u.User = url.UserPassword(username, "****")
		}
	}

	return u.String()
}

func isDockerAvailable(ctx context.Context) bool {
	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return false
	}
	defer provider.Close()

	_, err = provider.DaemonHost(ctx)
	return err == nil
}
