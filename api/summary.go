package api

import (
	"bookkeeping/database"
	"bookkeeping/models"

	"github.com/gin-gonic/gin"
)

// SummaryHandler 经营汇总处理器
type SummaryHandler struct{}

// NewSummaryHandler 创建经营汇总处理器
func NewSummaryHandler() *SummaryHandler {
	return &SummaryHandler{}
}

// NetPositionResponse 经营汇总返回
// NetRealizationPct 在预算净利润接近 0 或为负时无参考意义，仅作提示指标
type NetPositionResponse struct {
	FixedCost    models.BudgetSummary `json:"fixed_cost"`
	VariableCost models.BudgetSummary `json:"variable_cost"`
	Revenue      models.BudgetSummary `json:"revenue"`

	NetProfit         float64 `json:"net_profit"`
	BudgetedNetProfit float64 `json:"budgeted_net_profit"`
	NetRealizationPct float64 `json:"net_realization_pct"`
}

// GetSummary 获取经营汇总
// @Summary 经营汇总
// @Description 各口径预算汇总 + 净利润：净利润 = 营收实际 - (固定成本实际 + 变动成本实际)，预算口径同理
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=NetPositionResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	fixedBudget, fixedActual, err := sumBudgetTable(&models.FixedCost{})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	variableBudget, variableActual, err := sumBudgetTable(&models.VariableCost{})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	revenueBudget, revenueActual, err := sumBudgetTable(&models.Revenue{})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	netProfit := revenueActual - (fixedActual + variableActual)
	budgetedNetProfit := revenueBudget - (fixedBudget + variableBudget)

	Success(c, NetPositionResponse{
		FixedCost:         models.CostSummary(fixedBudget, fixedActual),
		VariableCost:      models.CostSummary(variableBudget, variableActual),
		Revenue:           models.RevenueSummary(revenueBudget, revenueActual),
		NetProfit:         netProfit,
		BudgetedNetProfit: budgetedNetProfit,
		NetRealizationPct: models.NetRealizationPercentage(netProfit, budgetedNetProfit),
	})
}

func sumBudgetTable(model interface{}) (totalBudget, totalActual float64, err error) {
	var row struct {
		TotalBudget float64
		TotalActual float64
	}
	err = database.DB.Model(model).
		Select("COALESCE(SUM(budget_amount), 0) AS total_budget, COALESCE(SUM(actual_amount), 0) AS total_actual").
		Scan(&row).Error
	return row.TotalBudget, row.TotalActual, err
}
