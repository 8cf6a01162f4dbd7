package models

import (
	"time"

	"gorm.io/gorm"
)

// Sale 销售单
type Sale struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	InvoiceNo   string         `json:"invoice_no" gorm:"uniqueIndex;size:50;not null"`
	SaleTime    time.Time      `json:"sale_time" gorm:"not null;index"`
	TotalAmount float64        `json:"total_amount" gorm:"type:decimal(14,2);not null;default:0"`
	UserID      uint           `json:"user_id" gorm:"index;not null"` // 录入人
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	Items       []SaleLineItem `json:"items,omitempty" gorm:"foreignKey:SaleID"`
}

// TableName 设置表名
func (Sale) TableName() string {
	return "sales"
}

// SaleLineItem 销售单明细，归属唯一销售单并引用唯一商品
// 存在明细引用时商品不可删除（应用层守卫，见商品删除接口）
type SaleLineItem struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	SaleID    uint           `json:"sale_id" gorm:"index;not null"`
	ProductID uint           `json:"product_id" gorm:"index;not null"`
	Quantity  int            `json:"quantity" gorm:"not null"` // >= 1
	UnitPrice float64        `json:"unit_price" gorm:"type:decimal(14,2);not null"`
	Subtotal  float64        `json:"subtotal" gorm:"type:decimal(14,2);not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (SaleLineItem) TableName() string {
	return "sale_items"
}
