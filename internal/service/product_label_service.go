package service

import (
	"context"
	"fmt"
	"time"

	"go_productlabel/internal/cache"
	"go_productlabel/internal/label"
	"go_productlabel/internal/model"

	"github.com/sirupsen/logrus"
)

// RuleSource provides the currently active label rules.
type RuleSource interface {
	ActiveRules(ctx context.Context) ([]label.Rule, error)
}

// AttributeResolver yields a product's selected options per attribute.
type AttributeResolver interface {
	ResolveAttributes(ctx context.Context, productID int, attributeIDs []int) (map[int]label.ResolvedAttribute, error)
}

// MemoLoader is the read-through cache the rule list is kept in.
type MemoLoader interface {
	Get(ctx context.Context, key string, tags []string, ttl time.Duration, compute cache.ComputeFunc, out any) error
	Invalidate(ctx context.Context, tag string) error
}

// ImageLocator turns a label image name into a URL.
type ImageLocator interface {
	URL(imageName string) string
}

// MatchObserver records how many labels each render produced and how often
// rules or attributes failed to load. It may be nil.
type MatchObserver interface {
	ObserveMatched(view string, n int)
	ObserveResolveError()
}

// LabelView 渲染用的商品标签
type LabelView struct {
	label.MatchedLabel
	ImageURL string `json:"image_url"`
}

// ProductLabelService 商品标签服务
type ProductLabelService struct {
	rules    RuleSource
	products AttributeResolver
	loader   MemoLoader
	images   ImageLocator
	observer MatchObserver
	cacheTTL time.Duration
	logger   *logrus.Entry
}

// ProductLabelConfig holds the collaborators of the service
type ProductLabelConfig struct {
	Rules    RuleSource
	Products AttributeResolver
	Loader   MemoLoader
	Images   ImageLocator
	Observer MatchObserver
	CacheTTL time.Duration
	Logger   *logrus.Entry
}

// NewProductLabelService 创建商品标签服务实例
func NewProductLabelService(cfg *ProductLabelConfig) *ProductLabelService {
	return &ProductLabelService{
		rules:    cfg.Rules,
		products: cfg.Products,
		loader:   cfg.Loader,
		images:   cfg.Images,
		observer: cfg.Observer,
		cacheTTL: cfg.CacheTTL,
		logger:   cfg.Logger.WithField("component", "product-label"),
	}
}

// LabelsList returns all active label rules. The list is loaded from the
// rule source once and then served from cache until the label tag is flushed.
func (s *ProductLabelService) LabelsList(ctx context.Context) ([]label.Rule, error) {
	var rules []label.Rule
	err := s.loader.Get(ctx, cache.LabelListKey, []string{cache.LabelCacheTag}, s.cacheTTL,
		func(ctx context.Context) (any, error) {
			active, err := s.rules.ActiveRules(ctx)
			if err != nil {
				return nil, err
			}
			s.logger.WithField("count", len(active)).Debug("Loaded active product labels")
			return active, nil
		}, &rules)
	if err != nil {
		s.resolveError()
		return nil, fmt.Errorf("failed to load product labels list: %w", err)
	}
	return rules, nil
}

// ProductLabels returns the labels to render for product in view.
// A nil product has no labels.
func (s *ProductLabelService) ProductLabels(ctx context.Context, product *model.Product, view label.View) ([]LabelView, error) {
	if product == nil {
		return []LabelView{}, nil
	}

	rules, err := s.LabelsList(ctx)
	if err != nil {
		return nil, err
	}
	return s.productLabels(ctx, rules, product, view)
}

// ListingLabels returns the labels of several products rendered on one
// listing page, keyed by product id. The rule list is read once.
func (s *ProductLabelService) ListingLabels(ctx context.Context, products []model.Product, view label.View) (map[int][]LabelView, error) {
	result := make(map[int][]LabelView, len(products))
	if len(products) == 0 {
		return result, nil
	}

	rules, err := s.LabelsList(ctx)
	if err != nil {
		return nil, err
	}

	for i := range products {
		labels, err := s.productLabels(ctx, rules, &products[i], view)
		if err != nil {
			return nil, err
		}
		result[products[i].ID] = labels
	}
	return result, nil
}

func (s *ProductLabelService) productLabels(ctx context.Context, rules []label.Rule, product *model.Product, view label.View) ([]LabelView, error) {
	if len(rules) == 0 {
		s.observe(view, 0)
		return []LabelView{}, nil
	}

	attrs, err := s.products.ResolveAttributes(ctx, product.ID, label.AttributeIDs(rules))
	if err != nil {
		s.resolveError()
		return nil, fmt.Errorf("failed to resolve attributes of product %d: %w", product.ID, err)
	}

	matched := label.Match(rules, attrs, view)
	views := make([]LabelView, len(matched))
	for i, m := range matched {
		views[i] = LabelView{
			MatchedLabel: m,
			ImageURL:     s.images.URL(m.ImageName),
		}
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"view":       view,
		"matched":    len(views),
	}).Debug("Matched product labels")
	s.observe(view, len(views))
	return views, nil
}

// Identities returns the full page cache tags the rendered labels of
// product depend on.
func (s *ProductLabelService) Identities(product *model.Product) []string {
	identities := []string{}
	if product != nil {
		identities = append(identities, product.Identities()...)
	}
	return append(identities, cache.LabelCacheTag)
}

// FlushCache drops the cached label list.
func (s *ProductLabelService) FlushCache(ctx context.Context) error {
	if err := s.loader.Invalidate(ctx, cache.LabelCacheTag); err != nil {
		return fmt.Errorf("failed to flush product labels cache: %w", err)
	}
	return nil
}

func (s *ProductLabelService) observe(view label.View, n int) {
	if s.observer != nil {
		s.observer.ObserveMatched(string(view), n)
	}
}

func (s *ProductLabelService) resolveError() {
	if s.observer != nil {
		s.observer.ObserveResolveError()
	}
}
