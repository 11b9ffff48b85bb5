// Package testing provides test helpers for code that uses mongolog.
//
// The mocks subpackage holds a testify-based Collection mock for unit tests
// that need to script insert outcomes. The containers subpackage (build tag
// "integration") starts a disposable MongoDB server with testcontainers.
//
//	import (
//		"github.com/gaborage/mongolog/testing/mocks"
//		"github.com/gaborage/mongolog/testing/containers"
//	)
package testing
