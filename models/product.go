package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品模型
type Product struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Code      string         `json:"code" gorm:"uniqueIndex;size:50;not null"`
	Name      string         `json:"name" gorm:"size:100;not null"`
	BuyPrice  float64        `json:"buy_price" gorm:"type:decimal(14,2);not null;default:0"`
	SellPrice float64        `json:"sell_price" gorm:"type:decimal(14,2);not null;default:0"`
	Stock     int            `json:"stock" gorm:"not null;default:0"` // 非负库存计数，销售不自动扣减
	Category  string         `json:"category" gorm:"size:50"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Product) TableName() string {
	return "products"
}

// Profit 单件毛利 = 售价 - 进价
func (p *Product) Profit() float64 {
	return p.SellPrice - p.BuyPrice
}

// ProfitPercentage 毛利率 = 毛利/进价*100，进价为 0 时定义为 0
func (p *Product) ProfitPercentage() float64 {
	if p.BuyPrice <= 0 {
		return 0
	}
	return p.Profit() / p.BuyPrice * 100
}
