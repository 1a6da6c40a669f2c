package model

// EavAttribute 商品属性
type EavAttribute struct {
	BaseModel
	Code          string `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	FrontendLabel string `gorm:"type:varchar(255)" json:"frontend_label"`
	FrontendInput string `gorm:"type:enum('select','multiselect','text','boolean');not null;default:'select'" json:"frontend_input"`
}

// TableName 指定表名
func (EavAttribute) TableName() string {
	return "eav_attributes"
}

// ProductAttributeValue 商品属性值（multiselect 以逗号分隔存储）
type ProductAttributeValue struct {
	BaseModel
	ProductID   int    `gorm:"not null;uniqueIndex:idx_product_attribute" json:"product_id"`
	AttributeID int    `gorm:"not null;uniqueIndex:idx_product_attribute" json:"attribute_id"`
	Value       string `gorm:"type:varchar(1024)" json:"value"`
}

// TableName 指定表名
func (ProductAttributeValue) TableName() string {
	return "product_attribute_values"
}
