package services

import (
	"context"
	"errors"
	"fmt"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/repositories"
	"ocelo_loyalty_backend/pkg/utils"
)

var ErrUnknownCollection = errors.New("unknown storage collection")

// Collection names accepted by StorageService.
const (
	CollectionConfig    = "config"
	CollectionProducts  = "products"
	CollectionCustomers = "customers"
)

// Reloader is implemented by every collection repository.
type Reloader interface {
	Reload(ctx context.Context) error
}

// StorageService lets staff inspect the persisted collections, re-read them and restore defaults.
type StorageService interface {
	Status(ctx context.Context) (*models.StorageStatus, error)
	Reload(ctx context.Context) error
	Reset(ctx context.Context, collection string) error
}

type storedCollection struct {
	name string
	key  string
	repo Reloader
}

type storageService struct {
	kv          repositories.KVRepository
	collections []storedCollection
}

// NewStorageService creates a new instance of StorageService.
func NewStorageService(kv repositories.KVRepository, config, products, customers Reloader) StorageService {
	return &storageService{
		kv: kv,
		collections: []storedCollection{
			{name: CollectionConfig, key: repositories.KeyConfig, repo: config},
			{name: CollectionProducts, key: repositories.KeyProducts, repo: products},
			{name: CollectionCustomers, key: repositories.KeyCustomers, repo: customers},
		},
	}
}

func (s *storageService) Status(ctx context.Context) (*models.StorageStatus, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage keys: %w", err)
	}
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}

	status := &models.StorageStatus{OtherKeys: []string{}}
	known := make(map[string]bool, len(s.collections))
	for _, col := range s.collections {
		known[col.key] = true
		status.Collections = append(status.Collections, models.StoredCollection{Name: col.name, Key: col.key, Stored: present[col.key]})
	}
	for _, k := range keys {
		if !known[k] {
			status.OtherKeys = append(status.OtherKeys, k)
		}
	}
	return status, nil
}

// Reload re-reads every collection from storage, picking up blobs written by another process.
func (s *storageService) Reload(ctx context.Context) error {
	for _, col := range s.collections {
		if err := col.repo.Reload(ctx); err != nil {
			return fmt.Errorf("failed to reload %s: %w", col.name, err)
		}
	}
	utils.LogInfo("Storage reloaded")
	return nil
}

// Reset drops the stored blob of one collection; the reload that follows restores its defaults.
func (s *storageService) Reset(ctx context.Context, collection string) error {
	for _, col := range s.collections {
		if col.name != collection {
			continue
		}
		if err := s.kv.Delete(ctx, col.key); err != nil {
			return fmt.Errorf("failed to reset %s: %w", col.name, err)
		}
		if err := col.repo.Reload(ctx); err != nil {
			return fmt.Errorf("failed to reload %s: %w", col.name, err)
		}
		utils.LogWarn("Collection reset to defaults", map[string]interface{}{"collection": col.name})
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
}
