package labels

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go_productlabel/internal/httpx"
	"go_productlabel/internal/label"
	"go_productlabel/internal/model"
	"go_productlabel/internal/service"
	"go_productlabel/internal/store"

	"github.com/gin-gonic/gin"
)

// CacheTagsHeader lists the full page cache tags of a response
const CacheTagsHeader = "X-Cache-Tags"

// Controller names the storefront routes to
const (
	ControllerProduct  = label.ProductController
	ControllerCategory = "category"
)

const maxListingProducts = 100

// ProductFinder loads products by id
type ProductFinder interface {
	FindByID(ctx context.Context, id int) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []int) ([]model.Product, error)
}

// LabelService computes the labels of products
type LabelService interface {
	ProductLabels(ctx context.Context, product *model.Product, view label.View) ([]service.LabelView, error)
	ListingLabels(ctx context.Context, products []model.Product, view label.View) (map[int][]service.LabelView, error)
	Identities(product *model.Product) []string
	FlushCache(ctx context.Context) error
}

// Handler 商品标签handler
type Handler struct {
	products ProductFinder
	labels   LabelService
}

// NewHandler 创建handler实例
func NewHandler(products ProductFinder, labels LabelService) *Handler {
	return &Handler{products: products, labels: labels}
}

// ProductResponse 商品详情页标签响应
type ProductResponse struct {
	ProductID    int                 `json:"productId"`
	View         label.View          `json:"view"`
	WrapperClass string              `json:"wrapperClass"`
	Labels       []service.LabelView `json:"labels"`
}

// Product 商品详情页标签
// GET /api/v1/labels/product/:id
func (h *Handler) Product(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid product id"))
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("product not found"))
		} else {
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to find product", err))
		}
		return
	}

	view := label.ViewFromController(ControllerProduct)
	labels, err := h.labels.ProductLabels(c.Request.Context(), product, view)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load product labels", err))
		return
	}

	c.Header(CacheTagsHeader, strings.Join(h.labels.Identities(product), ","))
	httpx.OK(c, ProductResponse{
		ProductID:    product.ID,
		View:         view,
		WrapperClass: label.WrapperClass(view),
		Labels:       labels,
	})
}

// ListingItem 列表页单个商品的标签
type ListingItem struct {
	ProductID int                 `json:"productId"`
	Labels    []service.LabelView `json:"labels"`
}

// ListingResponse 列表页标签响应
type ListingResponse struct {
	View         label.View    `json:"view"`
	WrapperClass string        `json:"wrapperClass"`
	Items        []ListingItem `json:"items"`
}

// Category 列表页标签（批量）
// GET /api/v1/labels/category?ids=1,2,3
func (h *Handler) Category(c *gin.Context) {
	ids, err := parseIDs(c.Query("ids"))
	if err != nil {
		httpx.FailErr(c, err)
		return
	}

	products, dbErr := h.products.FindByIDs(c.Request.Context(), ids)
	if dbErr != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list products", dbErr))
		return
	}

	view := label.ViewFromController(ControllerCategory)
	byProduct, dbErr := h.labels.ListingLabels(c.Request.Context(), products, view)
	if dbErr != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load product labels", dbErr))
		return
	}

	// Keep the order the page asked for; unknown ids are skipped.
	found := make(map[int]*model.Product, len(products))
	for i := range products {
		found[products[i].ID] = &products[i]
	}

	items := make([]ListingItem, 0, len(products))
	tags := make([]string, 0, len(products)+1)
	seen := make(map[string]bool)
	for _, id := range ids {
		product, ok := found[id]
		if !ok {
			continue
		}
		items = append(items, ListingItem{ProductID: id, Labels: byProduct[id]})
		for _, tag := range h.labels.Identities(product) {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}

	if len(tags) > 0 {
		c.Header(CacheTagsHeader, strings.Join(tags, ","))
	}
	httpx.OK(c, ListingResponse{
		View:         view,
		WrapperClass: label.WrapperClass(view),
		Items:        items,
	})
}

// Flush 清除标签缓存
// POST /api/v1/labels/cache/flush
func (h *Handler) Flush(c *gin.Context) {
	if err := h.labels.FlushCache(c.Request.Context()); err != nil {
		httpx.FailErr(c, httpx.ErrCacheError("failed to flush label cache", err))
		return
	}
	httpx.OKMsg(c, "label cache flushed", nil)
}

func parseIDs(raw string) ([]int, *httpx.AppError) {
	if strings.TrimSpace(raw) == "" {
		return nil, httpx.ErrParamMissing("parameter 'ids' is required")
	}

	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	seen := make(map[int]bool, len(parts))
	var invalid []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil || id < 1 {
			invalid = append(invalid, p)
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(invalid) > 0 {
		return nil, httpx.ErrParamInvalid("invalid product ids").WithData(gin.H{"invalid": invalid})
	}
	if len(ids) == 0 {
		return nil, httpx.ErrParamMissing("parameter 'ids' is required")
	}
	if len(ids) > maxListingProducts {
		return nil, httpx.ErrParamInvalid("too many product ids")
	}
	return ids, nil
}
