package model

import "fmt"

// ProductCacheTag 商品页面缓存标签前缀
const ProductCacheTag = "cat_p"

// Product 商品
type Product struct {
	BaseModel
	SKU    string `gorm:"type:varchar(64);uniqueIndex;not null" json:"sku"`
	Name   string `gorm:"type:varchar(255);not null" json:"name"`
	Status bool   `gorm:"default:true;not null" json:"status"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// Identities returns the full page cache tags of the product.
func (p *Product) Identities() []string {
	return []string{fmt.Sprintf("%s_%d", ProductCacheTag, p.ID)}
}
