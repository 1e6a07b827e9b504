package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ocelo_loyalty_backend/pkg/utils"
)

// loadBlob decodes the blob under key. A missing or malformed blob reports false and the
// caller keeps its default; only the log line surfaces it.
func loadBlob[T any](ctx context.Context, kv KVRepository, key string) (T, bool) {
	var out T
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.LogInfo("No stored data, using defaults", map[string]interface{}{"key": key})
		} else {
			utils.LogWarn("Failed to read stored data, using defaults", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var zero T
		utils.LogWarn("Stored data is malformed, using defaults", map[string]interface{}{"key": key, "error": err.Error()})
		return zero, false
	}
	return out, true
}

// saveBlob encodes v and overwrites key.
func saveBlob(ctx context.Context, kv KVRepository, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}
