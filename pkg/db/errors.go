package db

import "errors"

var (
	// ErrOverload is returned by Load when the backend cannot accept more data at the moment.
	ErrOverload = errors.New("db: overloaded, try again later")

	ErrDriverNil        = errors.New("db: driver is nil")
	ErrUninitialized    = errors.New("db: database is not initialized")
	ErrInitialized      = errors.New("db: database is already initialized")
	ErrInvalidChunkSize = errors.New("db: objects per chunk must not be negative")
	ErrInvalidData      = errors.New("db: data is not valid under the latest schema")
	ErrUnknownType      = errors.New("db: unknown object type")
)
