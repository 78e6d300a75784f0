package port

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// KeyValueStorage is durable per-profile storage, the server-side stand-in
// for browser local storage. GetItem returns ErrKeyNotFound for unknown keys.
type KeyValueStorage interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
}
