package models

// Product is a catalog item redeemable for points.
type Product struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Price       int    `json:"price" yaml:"price"` // In points
	Stock       int    `json:"stock" yaml:"stock"`
	ImageURL    string `json:"imageUrl" yaml:"imageUrl"`
	Description string `json:"description" yaml:"description"`
}
