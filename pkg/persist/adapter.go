package persist

import (
	"context"
	"errors"

	"war-room-be/internal/pkg/logger"
	"war-room-be/pkg/thread"
)

// ErrNotFound is returned by a KV when the storage key has never been written.
var ErrNotFound = errors.New("persist: key not found")

// KV is the durable string-keyed store the thread snapshot is written to.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// StorageKey is the single fixed key the whole ThreadStore snapshot lives under.
const StorageKey = "war-room:threads:v1"

// Adapter snapshots a thread.Store to durable storage and restores it on
// startup. Writes are fire-and-forget; load failures degrade to an empty
// store. No error from this adapter ever reaches a caller.
type Adapter struct {
	kv     KV
	logger logger.ILogger
}

func NewAdapter(kv KV, log logger.ILogger) *Adapter {
	return &Adapter{kv: kv, logger: log}
}

// Save serializes the entire store and writes it under StorageKey. Failures
// are logged and swallowed so persistence never blocks interaction.
func (a *Adapter) Save(ctx context.Context, store *thread.Store) {
	if a.kv == nil {
		return
	}

	data, err := store.Serialize()
	if err != nil {
		a.warn("failed to serialize thread store", err)
		return
	}
	if err := a.kv.Set(ctx, StorageKey, data); err != nil {
		a.warn("failed to write thread snapshot", err)
	}
}

// Load reads the last snapshot and rebuilds the store. Absence and corruption
// both yield a fresh empty store; corruption is logged as a recoverable
// warning.
func (a *Adapter) Load(ctx context.Context) *thread.Store {
	if a.kv == nil {
		return thread.NewStore()
	}

	data, err := a.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.warn("failed to read thread snapshot", err)
		}
		return thread.NewStore()
	}

	store, err := thread.Deserialize(data)
	if err != nil {
		a.warn("corrupt thread snapshot, starting empty", err)
		return thread.NewStore()
	}
	return store
}

func (a *Adapter) warn(message string, err error) {
	if a.logger == nil {
		return
	}
	a.logger.Warn("PersistenceAdapter", message, map[string]interface{}{"error": err.Error()})
}
