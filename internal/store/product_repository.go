package store

import (
	"context"
	"errors"
	"fmt"

	"go_productlabel/internal/label"
	"go_productlabel/internal/model"

	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a product id does not exist.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository resolves products and their attribute values.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a repository over db.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByID loads one product.
func (r *ProductRepository) FindByID(ctx context.Context, id int) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product %d: %w", id, err)
	}
	return &product, nil
}

// FindByIDs loads the products that exist among ids, ordered by id.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []int) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	var products []model.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

type attributeValueRow struct {
	AttributeID   int
	FrontendLabel string
	Value         *string
}

// ResolveAttributes returns the product's selected options for each of the
// given attributes, keyed by attribute id. Attributes without a value for the
// product resolve to an empty option set; unknown attribute ids are absent.
func (r *ProductRepository) ResolveAttributes(ctx context.Context, productID int, attributeIDs []int) (map[int]label.ResolvedAttribute, error) {
	resolved := make(map[int]label.ResolvedAttribute, len(attributeIDs))
	if len(attributeIDs) == 0 {
		return resolved, nil
	}

	var rows []attributeValueRow
	if err := r.db.WithContext(ctx).
		Table("eav_attributes AS a").
		Select("a.id AS attribute_id, a.frontend_label, v.value").
		Joins("LEFT JOIN product_attribute_values AS v ON v.attribute_id = a.id AND v.product_id = ?", productID).
		Where("a.id IN ?", attributeIDs).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve attributes of product %d: %w", productID, err)
	}

	for _, row := range rows {
		var value any
		if row.Value != nil {
			value = *row.Value
		}
		resolved[row.AttributeID] = label.ResolvedAttribute{
			AttributeID: row.AttributeID,
			Label:       row.FrontendLabel,
			Options:     label.ParseOptions(value),
		}
	}
	return resolved, nil
}
