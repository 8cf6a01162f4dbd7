package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// FlowKindInflow 流入
	FlowKindInflow = "inflow"
	// FlowKindOutflow 流出
	FlowKindOutflow = "outflow"
	// FlowKindBoth 类别专用：流入流出均可使用
	FlowKindBoth = "both"
)

// CashFlowEntry 现金流水记录
// Balance 为写入时刻的余额快照，历史记录被修改后不回溯重算（与老系统保持一致）
type CashFlowEntry struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	EntryTime    time.Time      `json:"entry_time" gorm:"not null;index"`
	Kind         string         `json:"kind" gorm:"size:20;not null;index"` // inflow/outflow
	Category     string         `json:"category" gorm:"size:50;not null;index"`
	Description  string         `json:"description" gorm:"size:255"`
	Amount       float64        `json:"amount" gorm:"type:decimal(14,2);not null"` // > 0
	Balance      float64        `json:"balance" gorm:"type:decimal(14,2);not null"`
	EvidencePath string         `json:"evidence_path" gorm:"size:255"` // 凭证文件路径，文件内容不归本系统管理
	UserID       uint           `json:"user_id" gorm:"index;not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (CashFlowEntry) TableName() string {
	return "cash_flow_entries"
}

// SignedAmount 带符号金额，流入为正、流出为负
func (e *CashFlowEntry) SignedAmount() float64 {
	return SignedAmount(e.Kind, e.Amount)
}

// SignedAmount 带符号金额，流入为正、流出为负
func SignedAmount(kind string, amount float64) float64 {
	if kind == FlowKindOutflow {
		return -amount
	}
	return amount
}

// NextBalance 在上一余额基础上叠加一笔流水后的余额
func NextBalance(previous float64, kind string, amount float64) float64 {
	return previous + SignedAmount(kind, amount)
}

// CashFlowCategory 现金流类别，仅用于流水分类与校验
type CashFlowCategory struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"uniqueIndex;size:50;not null"`
	Kind        string         `json:"kind" gorm:"size:20;not null;default:both"` // inflow/outflow/both
	Description string         `json:"description" gorm:"size:255"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (CashFlowCategory) TableName() string {
	return "cash_flow_categories"
}

// AllowsKind 类别是否允许记录该方向的流水
func (c *CashFlowCategory) AllowsKind(kind string) bool {
	return c.Kind == FlowKindBoth || c.Kind == kind
}
