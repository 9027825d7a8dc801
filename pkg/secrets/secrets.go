package secrets

import (
	"context"
	"errors"
	"sync"

	"ai-persona-advisors/backend/pkg/logger"
)

var ErrManagerNotInitialized = errors.New("secrets manager not initialized")

// Manager resolves secrets by key from some backing store.
type Manager interface {
	GetSecret(ctx context.Context, key string) (string, error)
	GetSecretWithDefault(ctx context.Context, key, defaultValue string) string
}

var (
	defaultManager Manager
	managerOnce    sync.Once
)

// Init sets up the process-wide manager backed by Vault (or environment
// fallback when Vault is disabled). Safe to call more than once.
func Init(log *logger.Logger) error {
	var err error
	managerOnce.Do(func() {
		manager, initErr := NewVaultManager(log)
		if initErr != nil {
			err = initErr
			return
		}
		defaultManager = manager
	})
	return err
}

// GetSecret resolves a secret through the default manager.
func GetSecret(ctx context.Context, key string) (string, error) {
	if defaultManager == nil {
		return "", ErrManagerNotInitialized
	}
	return defaultManager.GetSecret(ctx, key)
}

// GetSecretWithDefault resolves a secret, returning defaultValue when the
// manager is not initialized or the key cannot be resolved.
func GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	if defaultManager == nil {
		return defaultValue
	}
	return defaultManager.GetSecretWithDefault(ctx, key, defaultValue)
}

// SetManager replaces the default manager, primarily for tests.
func SetManager(manager Manager) {
	defaultManager = manager
}
