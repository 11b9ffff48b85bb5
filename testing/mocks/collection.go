package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCollection is a testify mock satisfying mongolog.Collection.
//
// Example usage:
//
//	coll := &mocks.MockCollection{CollectionName: "error"}
//	coll.On("InsertOne", mock.Anything, mock.Anything).Return(errors.New("not primary")).Once()
//
//	set := mongolog.CollectionSet{mongolog.LevelError: coll, ...}
type MockCollection struct {
	mock.Mock

	// CollectionName is returned by Name. Empty means the level name is used.
	CollectionName string
}

// InsertOne implements mongolog.Collection
func (m *MockCollection) InsertOne(ctx context.Context, document any) error {
	arguments := m.Called(ctx, document)
	return arguments.Error(0)
}

// Name returns CollectionName.
func (m *MockCollection) Name() string {
	return m.CollectionName
}
