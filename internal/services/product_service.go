package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/repositories"
	"ocelo_loyalty_backend/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// --- Product DTOs ---
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Price       int    `json:"price"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Price       *int    `json:"price"`
	Stock       *int    `json:"stock"`
	ImageURL    *string `json:"imageUrl"`
	Description *string `json:"description"`
}

// --- ProductService Interface ---
type ProductService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error)
	GetProductByID(productID string) (*models.Product, error)
	GetProducts(category string) ([]models.Product, error)
	UpdateProduct(ctx context.Context, productID string, req UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

type productService struct {
	productRepo repositories.ProductRepository
}

// NewProductService creates a new instance of ProductService.
func NewProductService(repo repositories.ProductRepository) ProductService {
	return &productService{productRepo: repo}
}

func validateProduct(p models.Product) error {
	if utils.IsEmpty(p.Name) {
		return fmt.Errorf("%w: product name cannot be empty", ErrValidation)
	}
	if utils.IsEmpty(p.Category) {
		return fmt.Errorf("%w: product category cannot be empty", ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	product := models.Product{
		ID:          "prod_" + uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

func (s *productService) GetProductByID(productID string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}
	return product, nil
}

// GetProducts lists the catalog, optionally narrowed to one category.
func (s *productService) GetProducts(category string) ([]models.Product, error) {
	products := s.productRepo.List()
	if category = strings.TrimSpace(category); category == "" {
		return products, nil
	}
	filtered := []models.Product{}
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *productService) UpdateProduct(ctx context.Context, productID string, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product for update: %w", err)
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if err := validateProduct(*product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, *product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
