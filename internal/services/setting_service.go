package services

import (
	"context"
	"fmt"
	"strings"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/repositories"
	"ocelo_loyalty_backend/pkg/utils"
)

// SettingService manages the branding and business configuration.
type SettingService interface {
	GetConfig() models.AppConfig
	ReplaceConfig(ctx context.Context, cfg models.AppConfig) (*models.AppConfig, error)
}

type settingService struct {
	settingRepo repositories.SettingRepository
}

// NewSettingService creates a new instance of SettingService.
func NewSettingService(repo repositories.SettingRepository) SettingService {
	return &settingService{settingRepo: repo}
}

func (s *settingService) GetConfig() models.AppConfig {
	return s.settingRepo.Get()
}

// ReplaceConfig stores cfg wholesale after validating its business fields.
func (s *settingService) ReplaceConfig(ctx context.Context, cfg models.AppConfig) (*models.AppConfig, error) {
	if cfg.PointExpiryDays <= 0 {
		return nil, fmt.Errorf("%w: point expiry days must be positive", ErrValidation)
	}
	if cfg.PointsPerArs < 0 {
		return nil, fmt.Errorf("%w: points per currency unit cannot be negative", ErrValidation)
	}
	if utils.IsEmpty(cfg.Currency) {
		return nil, fmt.Errorf("%w: currency cannot be empty", ErrValidation)
	}
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))

	if err := s.settingRepo.Replace(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to replace config: %w", err)
	}
	utils.LogInfo("Configuration replaced", map[string]interface{}{"language": cfg.Language, "points_per_ars": cfg.PointsPerArs})
	return &cfg, nil
}
