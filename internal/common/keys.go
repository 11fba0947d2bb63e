package common

import (
	"context"
	"fmt"

	"github.com/ternarybob/quaestio/internal/interfaces"
)

// ResolveAPIKey resolves an API key, preferring the configured value and
// falling back to the key/value store. Returns an error when neither is set;
// missing credentials are job-fatal.
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, key, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if kvStorage != nil {
		if value, err := kvStorage.Get(ctx, key); err == nil && value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("no API key configured for %s", key)
}
