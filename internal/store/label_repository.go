package store

import (
	"context"
	"fmt"
	"strconv"

	"go_productlabel/internal/label"
	"go_productlabel/internal/model"

	"gorm.io/gorm"
)

// LabelRepository reads product label rules.
type LabelRepository struct {
	db *gorm.DB
}

// NewLabelRepository creates a repository over db.
func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// ActiveRules returns every active label, ordered by id, with display_on
// already split into views.
func (r *LabelRepository) ActiveRules(ctx context.Context) ([]label.Rule, error) {
	var rows []model.ProductLabel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list active product labels: %w", err)
	}

	rules := make([]label.Rule, len(rows))
	for i, row := range rows {
		rules[i] = toRule(row)
	}
	return rules, nil
}

func toRule(row model.ProductLabel) label.Rule {
	return label.Rule{
		ID:                   row.ID,
		Identifier:           row.Identifier,
		Name:                 row.Name,
		AttributeID:          row.AttributeID,
		OptionID:             strconv.Itoa(row.OptionID),
		DisplayOn:            label.ParseDisplayOn(row.DisplayOn),
		PositionProductView:  row.PositionProductView,
		PositionCategoryList: row.PositionCategoryList,
		IsActive:             row.IsActive,
		ImageName:            row.Image,
		Alt:                  row.Alt,
	}
}
