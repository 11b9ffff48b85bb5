package mongolog

import "errors"

var (
	// ErrConnect wraps every failure to establish the MongoDB connection in New.
	ErrConnect = errors.New("mongolog: connection failed")
	// ErrUnknownLevel is returned for levels outside trace..error.
	ErrUnknownLevel = errors.New("mongolog: unknown level")
	// ErrMissingCollection is returned when a CollectionSet lacks a level.
	ErrMissingCollection = errors.New("mongolog: missing collection")
)
