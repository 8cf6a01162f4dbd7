package api

import (
	"strconv"
	"time"

	"bookkeeping/database"
	"bookkeeping/models"

	"github.com/gin-gonic/gin"
)

// 预算台账口径
const (
	ledgerFixedCost    = "fixed_cost"
	ledgerVariableCost = "variable_cost"
	ledgerRevenue      = "revenue"
)

// BudgetHandler 预算台账处理器，固定成本/变动成本/营收共用一套操作
type BudgetHandler struct {
	kind string
}

// NewFixedCostHandler 固定成本台账
func NewFixedCostHandler() *BudgetHandler {
	return &BudgetHandler{kind: ledgerFixedCost}
}

// NewVariableCostHandler 变动成本台账
func NewVariableCostHandler() *BudgetHandler {
	return &BudgetHandler{kind: ledgerVariableCost}
}

// NewRevenueHandler 营收台账
func NewRevenueHandler() *BudgetHandler {
	return &BudgetHandler{kind: ledgerRevenue}
}

// BudgetEntryRequest 创建/更新台账条目请求
// 金额字段用指针以区分"未填写"与合法的 0
type BudgetEntryRequest struct {
	Name         string   `json:"name" binding:"required,min=1,max=100" example:"Sewa Ruko"`
	ActualAmount *float64 `json:"actual_amount" binding:"required,gte=0" example:"800"`
	BudgetAmount *float64 `json:"budget_amount" binding:"required,gte=0" example:"1000"`
	Period       string   `json:"period" binding:"omitempty,oneof=monthly yearly" example:"monthly"`
	Note         string   `json:"note" binding:"omitempty,max=255" example:"dibayar tiap tanggal 5"`
}

// BudgetEntryView 台账条目返回，含派生指标
type BudgetEntryView struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	ActualAmount   float64   `json:"actual_amount"`
	BudgetAmount   float64   `json:"budget_amount"`
	Period         string    `json:"period"`
	Note           string    `json:"note"`
	Variance       float64   `json:"variance"`
	RealizationPct float64   `json:"realization_pct"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (h *BudgetHandler) view(id uint, name string, actual, budget float64, period, note string, created, updated time.Time) BudgetEntryView {
	variance := models.CostVariance(budget, actual)
	if h.kind == ledgerRevenue {
		variance = models.RevenueVariance(budget, actual)
	}
	return BudgetEntryView{
		ID:             id,
		Name:           name,
		ActualAmount:   actual,
		BudgetAmount:   budget,
		Period:         period,
		Note:           note,
		Variance:       variance,
		RealizationPct: models.RealizationPercentage(actual, budget),
		CreatedAt:      created,
		UpdatedAt:      updated,
	}
}

// Create 创建台账条目
// @Summary 创建台账条目
// @Description 记录一条固定成本/变动成本/营收，金额与预算均允许为 0
// @Tags 预算台账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BudgetEntryRequest true "条目信息"
// @Success 200 {object} Response{data=BudgetEntryView} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/fixed-costs [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	var req BudgetEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.Period == "" {
		req.Period = models.PeriodMonthly
	}

	var view BudgetEntryView
	var err error
	switch h.kind {
	case ledgerRevenue:
		rec := models.Revenue{Source: req.Name, ActualAmount: *req.ActualAmount,
			BudgetAmount: *req.BudgetAmount, Period: req.Period, Note: req.Note}
		if err = database.DB.Create(&rec).Error; err == nil {
			view = h.view(rec.ID, rec.Source, rec.ActualAmount, rec.BudgetAmount, rec.Period, rec.Note, rec.CreatedAt, rec.UpdatedAt)
		}
	case ledgerVariableCost:
		rec := models.VariableCost{Name: req.Name, ActualAmount: *req.ActualAmount,
			BudgetAmount: *req.BudgetAmount, Period: req.Period, Note: req.Note}
		if err = database.DB.Create(&rec).Error; err == nil {
			view = h.view(rec.ID, rec.Name, rec.ActualAmount, rec.BudgetAmount, rec.Period, rec.Note, rec.CreatedAt, rec.UpdatedAt)
		}
	default:
		rec := models.FixedCost{Name: req.Name, ActualAmount: *req.ActualAmount,
			BudgetAmount: *req.BudgetAmount, Period: req.Period, Note: req.Note}
		if err = database.DB.Create(&rec).Error; err == nil {
			view = h.view(rec.ID, rec.Name, rec.ActualAmount, rec.BudgetAmount, rec.Period, rec.Note, rec.CreatedAt, rec.UpdatedAt)
		}
	}
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", view)
}

// List 台账列表，按创建顺序返回
// @Summary 台账列表
// @Description 按创建顺序返回全部条目，附带差异与达成率
// @Tags 预算台账
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]BudgetEntryView} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/fixed-costs [get]
func (h *BudgetHandler) List(c *gin.Context) {
	views := make([]BudgetEntryView, 0)

	switch h.kind {
	case ledgerRevenue:
		var recs []models.Revenue
		if err := database.DB.Order("id ASC").Find(&recs).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "查询失败"))
			return
		}
		for _, r := range recs {
			views = append(views, h.view(r.ID, r.Source, r.ActualAmount, r.BudgetAmount, r.Period, r.Note, r.CreatedAt, r.UpdatedAt))
		}
	case ledgerVariableCost:
		var recs []models.VariableCost
		if err := database.DB.Order("id ASC").Find(&recs).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "查询失败"))
			return
		}
		for _, r := range recs {
			views = append(views, h.view(r.ID, r.Name, r.ActualAmount, r.BudgetAmount, r.Period, r.Note, r.CreatedAt, r.UpdatedAt))
		}
	default:
		var recs []models.FixedCost
		if err := database.DB.Order("id ASC").Find(&recs).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "查询失败"))
			return
		}
		for _, r := range recs {
			views = append(views, h.view(r.ID, r.Name, r.ActualAmount, r.BudgetAmount, r.Period, r.Note, r.CreatedAt, r.UpdatedAt))
		}
	}

	Success(c, views)
}

// Update 更新台账条目
// @Summary 更新台账条目
// @Description 更新指定条目，条目不存在返回 404
// @Tags 预算台账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "条目ID"
// @Param request body BudgetEntryRequest true "条目信息"
// @Success 200 {object} Response{data=BudgetEntryView} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "条目不存在"
// @Router /api/v1/fixed-costs/{id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var req BudgetEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.Period == "" {
		req.Period = models.PeriodMonthly
	}

	updates := map[string]interface{}{
		"actual_amount": *req.ActualAmount,
		"budget_amount": *req.BudgetAmount,
		"period":        req.Period,
		"note":          req.Note,
	}

	var view BudgetEntryView
	switch h.kind {
	case ledgerRevenue:
		var rec models.Revenue
		if err := database.DB.First(&rec, id).Error; err != nil {
			NotFound(c, "条目不存在")
			return
		}
		updates["source"] = req.Name
		if err := database.DB.Model(&rec).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
		database.DB.First(&rec, rec.ID)
		view = h.view(rec.ID, rec.Source, rec.ActualAmount, rec.BudgetAmount, rec.Period, rec.Note, rec.CreatedAt, rec.UpdatedAt)
	case ledgerVariableCost:
		var rec models.VariableCost
		if err := database.DB.First(&rec, id).Error; err != nil {
			NotFound(c, "条目不存在")
			return
		}
		updates["name"] = req.Name
		if err := database.DB.Model(&rec).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
		database.DB.First(&rec, rec.ID)
		view = h.view(rec.ID, rec.Name, rec.ActualAmount, rec.BudgetAmount, rec.Period, rec.Note, rec.CreatedAt, rec.UpdatedAt)
	default:
		var rec models.FixedCost
		if err := database.DB.First(&rec, id).Error; err != nil {
			NotFound(c, "条目不存在")
			return
		}
		updates["name"] = req.Name
		if err := database.DB.Model(&rec).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
		database.DB.First(&rec, rec.ID)
		view = h.view(rec.ID, rec.Name, rec.ActualAmount, rec.BudgetAmount, rec.Period, rec.Note, rec.CreatedAt, rec.UpdatedAt)
	}

	SuccessWithMessage(c, "更新成功", view)
}

// Delete 删除台账条目
// @Summary 删除台账条目
// @Description 删除指定条目，条目不存在返回 404
// @Tags 预算台账
// @Produce json
// @Security BearerAuth
// @Param id path int true "条目ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "条目不存在"
// @Router /api/v1/fixed-costs/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	switch h.kind {
	case ledgerRevenue:
		var rec models.Revenue
		if err := database.DB.First(&rec, id).Error; err != nil {
			NotFound(c, "条目不存在")
			return
		}
		if err := database.DB.Delete(&rec).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "删除失败"))
			return
		}
	case ledgerVariableCost:
		var rec models.VariableCost
		if err := database.DB.First(&rec, id).Error; err != nil {
			NotFound(c, "条目不存在")
			return
		}
		if err := database.DB.Delete(&rec).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "删除失败"))
			return
		}
	default:
		var rec models.FixedCost
		if err := database.DB.First(&rec, id).Error; err != nil {
			NotFound(c, "条目不存在")
			return
		}
		if err := database.DB.Delete(&rec).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "删除失败"))
			return
		}
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// Aggregate 单口径预算汇总
// @Summary 台账汇总
// @Description 返回该口径的预算合计、实际合计、差异与达成率。预算合计为 0 时达成率为 0。
// @Tags 预算台账
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.BudgetSummary} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/fixed-costs/summary [get]
func (h *BudgetHandler) Aggregate(c *gin.Context) {
	totalBudget, totalActual, err := h.totals()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	if h.kind == ledgerRevenue {
		Success(c, models.RevenueSummary(totalBudget, totalActual))
		return
	}
	Success(c, models.CostSummary(totalBudget, totalActual))
}

// totals 汇总该口径的预算与实际合计
func (h *BudgetHandler) totals() (totalBudget, totalActual float64, err error) {
	var model interface{}
	switch h.kind {
	case ledgerRevenue:
		model = &models.Revenue{}
	case ledgerVariableCost:
		model = &models.VariableCost{}
	default:
		model = &models.FixedCost{}
	}

	var row struct {
		TotalBudget float64
		TotalActual float64
	}
	err = database.DB.Model(model).
		Select("COALESCE(SUM(budget_amount), 0) AS total_budget, COALESCE(SUM(actual_amount), 0) AS total_actual").
		Scan(&row).Error
	return row.TotalBudget, row.TotalActual, err
}
