package api

import (
	"strconv"

	"bookkeeping/database"
	"bookkeeping/models"

	"github.com/gin-gonic/gin"
)

// CashFlowCategoryHandler 现金流类别管理
type CashFlowCategoryHandler struct{}

// NewCashFlowCategoryHandler 创建现金流类别处理器
func NewCashFlowCategoryHandler() *CashFlowCategoryHandler {
	return &CashFlowCategoryHandler{}
}

// CategoryCreateRequest 创建类别请求
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=50" example:"销售收入"`
	Kind        string `json:"kind" binding:"required,oneof=inflow outflow both" example:"inflow"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

// CategoryUpdateRequest 更新类别请求
type CategoryUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=50"`
	Kind        *string `json:"kind" binding:"omitempty,oneof=inflow outflow both"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

// List 类别列表
// @Summary 现金流类别列表
// @Tags 现金流类别
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.CashFlowCategory} "获取成功"
// @Router /api/v1/cash-flow/categories [get]
func (h *CashFlowCategoryHandler) List(c *gin.Context) {
	var cats []models.CashFlowCategory
	if err := database.DB.Order("id ASC").Find(&cats).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, cats)
}

// Create 创建类别
// @Summary 创建现金流类别
// @Description 类别名唯一，重名返回 409
// @Tags 现金流类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryCreateRequest true "类别信息"
// @Success 200 {object} Response{data=models.CashFlowCategory} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "类别名已存在"
// @Router /api/v1/cash-flow/categories [post]
func (h *CashFlowCategoryHandler) Create(c *gin.Context) {
	var req CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var existing models.CashFlowCategory
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		Conflict(c, "类别名已存在")
		return
	}

	cat := models.CashFlowCategory{
		Name:        req.Name,
		Kind:        req.Kind,
		Description: req.Description,
	}
	if err := database.DB.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", cat)
}

// Update 更新类别
// @Summary 更新现金流类别
// @Tags 现金流类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Param request body CategoryUpdateRequest true "类别信息"
// @Success 200 {object} Response{data=models.CashFlowCategory} "更新成功"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/cash-flow/categories/{id} [put]
func (h *CashFlowCategoryHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.CashFlowCategory
	if err := database.DB.First(&cat, id).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	var req CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Kind != nil {
		updates["kind"] = *req.Kind
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&cat).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}
	database.DB.First(&cat, cat.ID)

	SuccessWithMessage(c, "更新成功", cat)
}

// Delete 删除类别
// @Summary 删除现金流类别
// @Description 仍有流水引用该类别时拒绝删除，返回 409
// @Tags 现金流类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "类别不存在"
// @Failure 409 {object} Response "存在引用该类别的流水"
// @Router /api/v1/cash-flow/categories/{id} [delete]
func (h *CashFlowCategoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.CashFlowCategory
	if err := database.DB.First(&cat, id).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	// 引用守卫：有流水引用时不可删除
	var refCount int64
	if err := database.DB.Model(&models.CashFlowEntry{}).Where("category = ?", cat.Name).Count(&refCount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if refCount > 0 {
		Conflict(c, "存在引用该类别的流水，无法删除")
		return
	}

	if err := database.DB.Delete(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
