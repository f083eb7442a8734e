// Package storage provides the key-value persistence backends behind the
// entity stores. Values are opaque serialized blobs.
package storage

import "errors"

// ErrKeyNotFound is returned by Get when nothing is stored under the key.
var ErrKeyNotFound = errors.New("storage: key not found")

// Backend is a synchronous key-value store.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}
