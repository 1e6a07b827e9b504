package repositories

import (
	"context"
	"sync"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/pkg/utils"
)

// SettingRepository holds the singleton application config.
type SettingRepository interface {
	Get() models.AppConfig
	Replace(ctx context.Context, cfg models.AppConfig) error
	Reload(ctx context.Context) error
}

type settingRepository struct {
	mu       sync.RWMutex
	kv       KVRepository
	defaults models.AppConfig
	config   models.AppConfig
}

// NewSettingRepository loads the config, falling back to defaults.
func NewSettingRepository(ctx context.Context, kv KVRepository, defaults models.AppConfig) (SettingRepository, error) {
	r := &settingRepository{kv: kv, defaults: defaults}
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the config from storage, adopting and persisting the defaults when needed.
func (r *settingRepository) Reload(ctx context.Context) error {
	loaded, ok := loadBlob[models.AppConfig](ctx, r.kv, KeyConfig)

	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.config = loaded
		return nil
	}
	r.config = r.defaults
	if err := saveBlob(ctx, r.kv, KeyConfig, r.config); err != nil {
		utils.LogError(err, "Failed to persist default config")
	}
	return nil
}

// Get returns the current config.
func (r *settingRepository) Get() models.AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

// Replace stores cfg wholesale.
func (r *settingRepository) Replace(ctx context.Context, cfg models.AppConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := saveBlob(ctx, r.kv, KeyConfig, cfg); err != nil {
		return err
	}
	r.config = cfg
	return nil
}
