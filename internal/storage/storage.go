// Package storage provides the key-value persistence port used by the chat
// session store, with memory, JSON file and bbolt backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("key not found")
	ErrInvalidKey  = errors.New("invalid key")
	ErrUnknownKind = errors.New("unknown store driver")
)

// Store is a minimal key-value persistence port.
type Store interface {
	// Get returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverBolt   = "bolt"
)

// Open builds the Store selected by driver, rooted at dir for the on-disk
// backends.
func Open(driver, dir string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile, "":
		return NewFileStore(dir)
	case DriverBolt:
		return NewBoltStore(dir)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, driver)
	}
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
