package model

// ProductLabel 商品标签规则
type ProductLabel struct {
	BaseModel
	Identifier           string `gorm:"type:varchar(64);uniqueIndex;not null" json:"identifier"`
	Name                 string `gorm:"type:varchar(128);not null" json:"name"`
	AttributeID          int    `gorm:"index;not null" json:"attribute_id"`
	OptionID             int    `gorm:"not null" json:"option_id"`
	IsActive             bool   `gorm:"default:true;not null;index" json:"is_active"`
	Image                string `gorm:"type:varchar(255)" json:"image"`
	PositionCategoryList string `gorm:"type:varchar(32);not null;default:'top-left'" json:"position_category_list"`
	PositionProductView  string `gorm:"type:varchar(32);not null;default:'top-left'" json:"position_product_view"`
	DisplayOn            string `gorm:"type:varchar(32);not null;default:'listing,product'" json:"display_on"`
	Alt                  string `gorm:"type:varchar(255)" json:"alt"`
}

// TableName 指定表名
func (ProductLabel) TableName() string {
	return "product_labels"
}

// Label positions
const (
	PositionTopLeft     = "top-left"
	PositionTopRight    = "top-right"
	PositionBottomLeft  = "bottom-left"
	PositionBottomRight = "bottom-right"
)
