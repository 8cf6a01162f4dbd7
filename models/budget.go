package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// PeriodMonthly 月度预算
	PeriodMonthly = "monthly"
	// PeriodYearly 年度预算
	PeriodYearly = "yearly"
)

// FixedCost 固定成本（房租、工资等周期性支出）
type FixedCost struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"size:100;not null"`
	ActualAmount float64        `json:"actual_amount" gorm:"type:decimal(14,2);not null;default:0"`
	BudgetAmount float64        `json:"budget_amount" gorm:"type:decimal(14,2);not null;default:0"`
	Period       string         `json:"period" gorm:"size:20;not null;default:monthly"` // monthly/yearly
	Note         string         `json:"note" gorm:"size:255"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (FixedCost) TableName() string {
	return "fixed_costs"
}

// VariableCost 变动成本（原料、耗材等随业务量变化的支出）
type VariableCost struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"size:100;not null"`
	ActualAmount float64        `json:"actual_amount" gorm:"type:decimal(14,2);not null;default:0"`
	BudgetAmount float64        `json:"budget_amount" gorm:"type:decimal(14,2);not null;default:0"`
	Period       string         `json:"period" gorm:"size:20;not null;default:monthly"`
	Note         string         `json:"note" gorm:"size:255"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (VariableCost) TableName() string {
	return "variable_costs"
}

// Revenue 营收记录
type Revenue struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Source       string         `json:"source" gorm:"size:100;not null"`
	ActualAmount float64        `json:"actual_amount" gorm:"type:decimal(14,2);not null;default:0"`
	BudgetAmount float64        `json:"budget_amount" gorm:"type:decimal(14,2);not null;default:0"`
	Period       string         `json:"period" gorm:"size:20;not null;default:monthly"`
	Note         string         `json:"note" gorm:"size:255"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Revenue) TableName() string {
	return "revenues"
}

// RealizationPercentage 预算达成率 = 实际/预算*100
// 预算为 0 时定义为 0，不产生除零
func RealizationPercentage(actual, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return actual / budget * 100
}

// CostVariance 成本差异 = 预算 - 实际，正值表示低于预算
func CostVariance(budget, actual float64) float64 {
	return budget - actual
}

// RevenueVariance 营收差异 = 实际 - 预算，正值表示超额完成
func RevenueVariance(budget, actual float64) float64 {
	return actual - budget
}

// BudgetSummary 预算汇总
type BudgetSummary struct {
	TotalBudget    float64 `json:"total_budget"`
	TotalActual    float64 `json:"total_actual"`
	Variance       float64 `json:"variance"`
	RealizationPct float64 `json:"realization_pct"`
}

// CostSummary 成本口径汇总（差异取 预算-实际）
func CostSummary(totalBudget, totalActual float64) BudgetSummary {
	return BudgetSummary{
		TotalBudget:    totalBudget,
		TotalActual:    totalActual,
		Variance:       CostVariance(totalBudget, totalActual),
		RealizationPct: RealizationPercentage(totalActual, totalBudget),
	}
}

// RevenueSummary 营收口径汇总（差异取 实际-预算）
func RevenueSummary(totalBudget, totalActual float64) BudgetSummary {
	return BudgetSummary{
		TotalBudget:    totalBudget,
		TotalActual:    totalActual,
		Variance:       RevenueVariance(totalBudget, totalActual),
		RealizationPct: RealizationPercentage(totalActual, totalBudget),
	}
}

// NetRealizationPercentage 净利润达成率
// 预算净利润 <= 0 时比值无意义，定义为 0，仅作参考指标
func NetRealizationPercentage(netProfit, budgetedNetProfit float64) float64 {
	if budgetedNetProfit <= 0 {
		return 0
	}
	return netProfit / budgetedNetProfit * 100
}
