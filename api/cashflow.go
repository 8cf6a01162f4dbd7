package api

import (
	"strconv"
	"time"

	"bookkeeping/database"
	"bookkeeping/middleware"
	"bookkeeping/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CashFlowHandler 现金流水处理器
type CashFlowHandler struct{}

// NewCashFlowHandler 创建现金流水处理器
func NewCashFlowHandler() *CashFlowHandler {
	return &CashFlowHandler{}
}

// CreateEntryRequest 追加流水请求
type CreateEntryRequest struct {
	EntryTime    string  `json:"entry_time" binding:"omitempty" example:"2024-01-15 12:30:00"` // 缺省为当前时间
	Kind         string  `json:"kind" binding:"required,oneof=inflow outflow" example:"inflow"`
	Category     string  `json:"category" binding:"required,min=1,max=50" example:"销售收入"`
	Description  string  `json:"description" binding:"omitempty,max=255" example:"penjualan tunai"`
	Amount       float64 `json:"amount" binding:"required,gt=0" example:"500"`
	EvidencePath string  `json:"evidence_path" binding:"omitempty,max=255" example:"uploads/nota-001.jpg"`
}

// UpdateEntryRequest 更新流水请求
type UpdateEntryRequest struct {
	EntryTime    string   `json:"entry_time" binding:"omitempty" example:"2024-01-15 12:30:00"`
	Kind         string   `json:"kind" binding:"omitempty,oneof=inflow outflow" example:"outflow"`
	Category     string   `json:"category" binding:"omitempty,min=1,max=50" example:"采购支出"`
	Description  *string  `json:"description" binding:"omitempty,max=255"`
	Amount       *float64 `json:"amount" binding:"omitempty,gt=0" example:"200"`
	EvidencePath *string  `json:"evidence_path" binding:"omitempty,max=255"`
}

// validateCategory 类别必须存在且方向匹配
func validateCategory(name, kind string) (string, bool) {
	var cat models.CashFlowCategory
	if err := database.DB.Where("name = ?", name).First(&cat).Error; err != nil {
		return "类别不存在，请先在类别管理中维护", false
	}
	if !cat.AllowsKind(kind) {
		return "类别方向不匹配：该类别不允许记录 " + kind + " 流水", false
	}
	return "", true
}

// previousBalance 取时间排序上最近一笔流水的余额快照
// 同一时刻按 ID 取后写入的一笔，保证同时间追加链式累计
func previousBalance(tx *gorm.DB, at time.Time, excludeID uint) (float64, error) {
	var prev models.CashFlowEntry
	q := tx.Where("entry_time <= ?", at)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Order("entry_time DESC, id DESC").First(&prev).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return prev.Balance, nil
}

// Create 追加流水
// @Summary 追加现金流水
// @Description 追加一笔流入/流出，写入时刻根据上一笔余额快照计算并固化本笔余额
// @Tags 现金流水
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEntryRequest true "流水信息"
// @Success 200 {object} Response{data=models.CashFlowEntry} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/cash-flow/entries [post]
func (h *CashFlowHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	entryTime := time.Now()
	if req.EntryTime != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", req.EntryTime, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		entryTime = t
	}

	if msg, ok := validateCategory(req.Category, req.Kind); !ok {
		BadRequest(c, msg)
		return
	}

	entry := models.CashFlowEntry{
		EntryTime:    entryTime,
		Kind:         req.Kind,
		Category:     req.Category,
		Description:  req.Description,
		Amount:       req.Amount,
		EvidencePath: req.EvidencePath,
		UserID:       userID,
	}

	// 余额快照与插入放在同一事务，避免并发追加读到同一个"上一笔"
	if err := database.DB.Transaction(func(tx *gorm.DB) error {
		prev, err := previousBalance(tx, entryTime, 0)
		if err != nil {
			return err
		}
		entry.Balance = models.NextBalance(prev, entry.Kind, entry.Amount)
		return tx.Create(&entry).Error
	}); err != nil {
		InternalError(c, SafeErrorMessage(err, "创建流水失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", entry)
}

// Update 更新流水
// @Summary 更新现金流水
// @Description 覆盖流水字段并按上一笔重算本笔余额快照。后续流水的余额快照不回溯重算，与老系统行为保持一致。
// @Tags 现金流水
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "流水ID"
// @Param request body UpdateEntryRequest true "流水信息"
// @Success 200 {object} Response{data=models.CashFlowEntry} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "流水不存在"
// @Router /api/v1/cash-flow/entries/{id} [put]
func (h *CashFlowHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var entry models.CashFlowEntry
	if err := database.DB.First(&entry, id).Error; err != nil {
		NotFound(c, "流水不存在")
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.EntryTime != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", req.EntryTime, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		entry.EntryTime = t
	}
	if req.Kind != "" {
		entry.Kind = req.Kind
	}
	if req.Category != "" {
		entry.Category = req.Category
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.Amount != nil {
		entry.Amount = *req.Amount
	}
	if req.EvidencePath != nil {
		entry.EvidencePath = *req.EvidencePath
	}

	if msg, ok := validateCategory(entry.Category, entry.Kind); !ok {
		BadRequest(c, msg)
		return
	}

	// 只重算本笔快照，后续流水保持原快照不动
	if err := database.DB.Transaction(func(tx *gorm.DB) error {
		prev, err := previousBalance(tx, entry.EntryTime, entry.ID)
		if err != nil {
			return err
		}
		entry.Balance = models.NextBalance(prev, entry.Kind, entry.Amount)
		return tx.Save(&entry).Error
	}); err != nil {
		InternalError(c, SafeErrorMessage(err, "更新流水失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", entry)
}

// Delete 删除流水
// @Summary 删除现金流水
// @Description 删除指定流水。后续流水的余额快照不回溯重算。
// @Tags 现金流水
// @Produce json
// @Security BearerAuth
// @Param id path int true "流水ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "流水不存在"
// @Router /api/v1/cash-flow/entries/{id} [delete]
func (h *CashFlowHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var entry models.CashFlowEntry
	if err := database.DB.First(&entry, id).Error; err != nil {
		NotFound(c, "流水不存在")
		return
	}

	if err := database.DB.Delete(&entry).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// EntryListRequest 流水列表请求
type EntryListRequest struct {
	StartTime string `form:"start_time" example:"2024-01-01"`
	EndTime   string `form:"end_time" example:"2024-12-31"`
	Category  string `form:"category" example:"销售收入"`
	Kind      string `form:"kind" binding:"omitempty,oneof=inflow outflow" example:"inflow"`
}

// EntryListResponse 流水列表返回
// 合计基于筛选后的数据集实时计算，与历史余额快照是否过期无关
type EntryListResponse struct {
	List         []models.CashFlowEntry `json:"list"`
	TotalInflow  float64                `json:"total_inflow"`
	TotalOutflow float64                `json:"total_outflow"`
	NetBalance   float64                `json:"net_balance"`
}

// List 流水列表
// @Summary 现金流水列表
// @Description 按时间范围/类别/方向筛选，按时间倒序返回，并附带筛选集上实时计算的流入/流出/净额
// @Tags 现金流水
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Param category query string false "类别筛选"
// @Param kind query string false "方向筛选 inflow/outflow"
// @Success 200 {object} Response{data=EntryListResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/cash-flow/entries [get]
func (h *CashFlowHandler) List(c *gin.Context) {
	var req EntryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	query := database.DB.Model(&models.CashFlowEntry{})
	query = applyEntryFilters(query, req)

	var entries []models.CashFlowEntry
	if err := query.Order("entry_time DESC, id DESC").Find(&entries).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var totalInflow, totalOutflow float64
	for _, e := range entries {
		if e.Kind == models.FlowKindInflow {
			totalInflow += e.Amount
		} else {
			totalOutflow += e.Amount
		}
	}

	Success(c, EntryListResponse{
		List:         entries,
		TotalInflow:  totalInflow,
		TotalOutflow: totalOutflow,
		NetBalance:   totalInflow - totalOutflow,
	})
}

func applyEntryFilters(query *gorm.DB, req EntryListRequest) *gorm.DB {
	if req.StartTime != "" {
		if t, err := time.ParseInLocation("2006-01-02", req.StartTime, time.Local); err == nil {
			query = query.Where("entry_time >= ?", t)
		}
	}
	if req.EndTime != "" {
		if t, err := time.ParseInLocation("2006-01-02", req.EndTime, time.Local); err == nil {
			// 包含结束日期当天
			t = t.Add(24*time.Hour - time.Second)
			query = query.Where("entry_time <= ?", t)
		}
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Kind != "" {
		query = query.Where("kind = ?", req.Kind)
	}
	return query
}

// CategoryTotal 单类别合计
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// CategoryReportResponse 分类报表返回
type CategoryReportResponse struct {
	Inflow       []CategoryTotal `json:"inflow"`
	Outflow      []CategoryTotal `json:"outflow"`
	TotalInflow  float64         `json:"total_inflow"`
	TotalOutflow float64         `json:"total_outflow"`
	NetBalance   float64         `json:"net_balance"`
}

// ReportByCategory 分类报表
// @Summary 现金流分类报表
// @Description 按时间范围统计各类别合计，流入/流出分列，并附带总计
// @Tags 现金流水
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=CategoryReportResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/cash-flow/report [get]
func (h *CashFlowHandler) ReportByCategory(c *gin.Context) {
	req := EntryListRequest{
		StartTime: c.Query("start_time"),
		EndTime:   c.Query("end_time"),
	}

	query := database.DB.Model(&models.CashFlowEntry{})
	query = applyEntryFilters(query, req)

	var rows []struct {
		Kind     string
		Category string
		Total    float64
	}
	if err := query.
		Select("kind, category, COALESCE(SUM(amount), 0) AS total").
		Group("kind, category").
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	resp := CategoryReportResponse{
		Inflow:  make([]CategoryTotal, 0),
		Outflow: make([]CategoryTotal, 0),
	}
	for _, row := range rows {
		ct := CategoryTotal{Category: row.Category, Total: row.Total}
		if row.Kind == models.FlowKindInflow {
			resp.Inflow = append(resp.Inflow, ct)
			resp.TotalInflow += row.Total
		} else {
			resp.Outflow = append(resp.Outflow, ct)
			resp.TotalOutflow += row.Total
		}
	}
	resp.NetBalance = resp.TotalInflow - resp.TotalOutflow

	Success(c, resp)
}
