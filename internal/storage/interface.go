// Package storage provides the key/value persistence backends for the
// recency snapshot.
package storage

import "github.com/cristianoliveira/tab-recall/internal/ports"

// Storage is a closable key/value store.
type Storage interface {
	ports.KeyValueStore
	Close() error
}
