package repository

import (
	"context"

	"github.com/akinalp/mygames/game"
)

// ClientStorageRepository, kullanıcı başına anahtar/değer slot deposu.
// Tarayıcıdaki local storage'ın sunucu tarafı karşılığı.
type ClientStorageRepository interface {
	// Get, anahtar yoksa (nil, false, nil) döner.
	Get(ctx context.Context, ownerID, key string) ([]byte, bool, error)
	Put(ctx context.Context, ownerID, key string, value []byte) error
	Delete(ctx context.Context, ownerID, key string) error

	// Scoped, tek bir sahibe bağlı game.KV döner.
	Scoped(ownerID string) game.KV

	// Atomic, fn'e verilen KV üzerinden yapılan tüm yazmaları tek transaction'da
	// çalıştırır. fn error dönerse hiçbiri kalıcı olmaz.
	Atomic(ctx context.Context, ownerID string, fn func(kv game.KV) error) error
}
