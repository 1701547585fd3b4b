package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"go.uber.org/zap"
)

// ErrValidation marks input rejected before any store call.
var ErrValidation = errors.New("invalid input")

// AllCategories is the category filter value that selects every product.
const AllCategories = "all"

// Service defines catalog business logic.
type Service interface {
	// ListProducts returns products, restricted to one category unless
	// categoryID is "" or AllCategories.
	ListProducts(ctx context.Context, categoryID string) ([]*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)

	// CreateProduct uploads the image first, if any, then creates the product.
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)

	// UpdateProduct patches only the fields that differ from the stored product.
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error)

	// DeleteProduct fails with docstore.ErrReferenced while an order points at the product.
	DeleteProduct(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]*Category, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	UpdateCategory(ctx context.Context, id string, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// Upload is an image file submitted with a form.
type Upload struct {
	Filename string
	Body     io.Reader
}

// CreateProductRequest holds the data for creating a product.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  string  `json:"category_id"`
	Image       *Upload `json:"-"`
}

// UpdateProductRequest carries the edited fields; nil means unchanged.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	CategoryID  *string  `json:"category_id,omitempty"`
	Image       *Upload  `json:"-"`
}

type CreateCategoryRequest struct {
	Name  string  `json:"name"`
	Image *Upload `json:"-"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Image *Upload `json:"-"`
}

type service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s *service) ListProducts(ctx context.Context, categoryID string) ([]*Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByCategory(products, categoryID), nil
}

// FilterByCategory keeps products in categoryID; "" and AllCategories keep all.
func FilterByCategory(products []*Product, categoryID string) []*Product {
	if categoryID == "" || categoryID == AllCategories {
		return products
	}
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if p.CategoryID() == categoryID {
			out = append(out, p)
		}
	}
	return out
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: product description is required", ErrValidation)
	}
	if err := validateAmounts(&req.Price, &req.Stock); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"name":        name,
		"slug":        docstore.Slug{Type: "slug", Current: Slugify(name)},
		"description": req.Description,
		"price":       req.Price,
		"stock":       req.Stock,
	}
	if req.CategoryID != "" {
		fields["category"] = docstore.Ref(req.CategoryID)
	}
	assetID, err := s.upload(ctx, req.Image)
	if err != nil {
		return nil, err
	}
	if assetID != "" {
		fields["image"] = docstore.ImageOf(assetID)
	}

	p, err := s.repo.CreateProduct(ctx, fields)
	if err != nil {
		if assetID != "" {
			s.log.Warn("product create failed after image upload; asset left orphaned",
				zap.String("asset_id", assetID), zap.Error(err))
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.log.Info("product created", zap.String("id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		return nil, fmt.Errorf("%w: product description is required", ErrValidation)
	}
	if err := validateAmounts(req.Price, req.Stock); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	set := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != p.Name {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil && *req.Description != p.Description {
		set["description"] = *req.Description
	}
	if req.Price != nil && *req.Price != p.Price {
		set["price"] = *req.Price
	}
	if req.Stock != nil && *req.Stock != p.Stock {
		set["stock"] = *req.Stock
	}
	if req.CategoryID != nil && *req.CategoryID != p.CategoryID() {
		if *req.CategoryID == "" {
			set["category"] = nil
		} else {
			set["category"] = docstore.Ref(*req.CategoryID)
		}
	}
	assetID, err := s.upload(ctx, req.Image)
	if err != nil {
		return nil, err
	}
	if assetID != "" {
		set["image"] = docstore.ImageOf(assetID)
	}
	if len(set) == 0 {
		return p, nil
	}

	updated, err := s.repo.PatchProduct(ctx, id, set)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", ErrValidation)
	}
	fields := map[string]any{"name": name}
	assetID, err := s.upload(ctx, req.Image)
	if err != nil {
		return nil, err
	}
	if assetID != "" {
		fields["image"] = docstore.ImageOf(assetID)
	}
	c, err := s.repo.CreateCategory(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

func (s *service) UpdateCategory(ctx context.Context, id string, req UpdateCategoryRequest) (*Category, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", ErrValidation)
	}
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	set := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != c.Name {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	assetID, err := s.upload(ctx, req.Image)
	if err != nil {
		return nil, err
	}
	if assetID != "" {
		set["image"] = docstore.ImageOf(assetID)
	}
	if len(set) == 0 {
		return c, nil
	}
	updated, err := s.repo.PatchCategory(ctx, id, set)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return updated, nil
}

func (s *service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// upload stores the image, if one was submitted, and returns its asset id.
func (s *service) upload(ctx context.Context, u *Upload) (string, error) {
	if u == nil || u.Body == nil {
		return "", nil
	}
	asset, err := s.repo.UploadImage(ctx, u.Filename, u.Body)
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	s.log.Debug("image uploaded", zap.String("asset_id", asset.ID), zap.String("filename", u.Filename))
	return asset.ID, nil
}

func validateAmounts(price *float64, stock *int) error {
	if price != nil && *price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if stock != nil && *stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}
	return nil
}
