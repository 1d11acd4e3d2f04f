package models

import (
	"time"
)

type Product struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Currency    string    `json:"currency" db:"currency"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	CategoryID  *string   `json:"category_id" db:"category_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	Stock       int       `json:"stock" db:"stock"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type ProductCreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Currency    string  `json:"currency"`
	ImageURL    *string `json:"image_url,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
	Stock       int     `json:"stock"`
}

type ProductUpdateRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	CategoryID  *string  `json:"category_id,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

type ProductListResponse struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}
