package api

import (
	"strconv"

	"bookkeeping/database"
	"bookkeeping/models"

	"github.com/gin-gonic/gin"
)

// MenuHandler 菜单管理
type MenuHandler struct{}

// NewMenuHandler 创建菜单处理器
func NewMenuHandler() *MenuHandler {
	return &MenuHandler{}
}

// MenuTreeItem 菜单树节点
type MenuTreeItem struct {
	ID        uint           `json:"id"`
	ParentID  uint           `json:"parent_id"`
	Name      string         `json:"name"`
	URL       string         `json:"url"`
	Icon      string         `json:"icon"`
	SortOrder int            `json:"sort_order"`
	IsActive  bool           `json:"is_active"`
	Children  []MenuTreeItem `json:"children,omitempty"`
}

func buildMenuTree(menus []models.Menu, parentID uint) []MenuTreeItem {
	var result []MenuTreeItem
	for _, m := range menus {
		if m.ParentID != parentID {
			continue
		}
		item := MenuTreeItem{
			ID:        m.ID,
			ParentID:  m.ParentID,
			Name:      m.Name,
			URL:       m.URL,
			Icon:      m.Icon,
			SortOrder: m.SortOrder,
			IsActive:  m.IsActive,
		}
		item.Children = buildMenuTree(menus, m.ID)
		result = append(result, item)
	}
	return result
}

// collectMenuDescendantIDs 收集 rootID 的所有子孙节点 ID
func collectMenuDescendantIDs(menus []models.Menu, rootID uint) map[uint]bool {
	byParent := make(map[uint][]models.Menu)
	for _, m := range menus {
		byParent[m.ParentID] = append(byParent[m.ParentID], m)
	}
	set := make(map[uint]bool)
	var dfs func(id uint)
	dfs = func(id uint) {
		for _, c := range byParent[id] {
			set[c.ID] = true
			dfs(c.ID)
		}
	}
	dfs(rootID)
	return set
}

// List 菜单树
// @Summary 菜单树
// @Description 按 sort_order 排序返回任意深度的菜单树
// @Tags 菜单
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]MenuTreeItem} "获取成功"
// @Router /api/v1/menus [get]
func (h *MenuHandler) List(c *gin.Context) {
	var menus []models.Menu
	if err := database.DB.Order("sort_order ASC, id ASC").Find(&menus).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, buildMenuTree(menus, 0))
}

// MenuCreateRequest 创建菜单请求
type MenuCreateRequest struct {
	ParentID  uint   `json:"parent_id" example:"0"`
	Name      string `json:"name" binding:"required,min=1,max=50" example:"现金流水"`
	URL       string `json:"url" binding:"omitempty,max=100" example:"/cash-flow"`
	Icon      string `json:"icon" binding:"omitempty,max=50" example:"money"`
	SortOrder int    `json:"sort_order" example:"1"`
	IsActive  *bool  `json:"is_active"`
}

// MenuUpdateRequest 更新菜单请求
type MenuUpdateRequest struct {
	ParentID  *uint   `json:"parent_id"`
	Name      *string `json:"name" binding:"omitempty,min=1,max=50"`
	URL       *string `json:"url" binding:"omitempty,max=100"`
	Icon      *string `json:"icon" binding:"omitempty,max=50"`
	SortOrder *int    `json:"sort_order"`
	IsActive  *bool   `json:"is_active"`
}

// Create 创建菜单
// @Summary 创建菜单
// @Tags 菜单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MenuCreateRequest true "菜单信息"
// @Success 200 {object} Response{data=models.Menu} "创建成功"
// @Failure 400 {object} Response "父级菜单不存在"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/menus [post]
func (h *MenuHandler) Create(c *gin.Context) {
	var req MenuCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.ParentID > 0 {
		var parent models.Menu
		if err := database.DB.First(&parent, req.ParentID).Error; err != nil {
			BadRequest(c, "父级菜单不存在")
			return
		}
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	menu := models.Menu{
		ParentID:  req.ParentID,
		Name:      req.Name,
		URL:       req.URL,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
		IsActive:  isActive,
	}
	if err := database.DB.Create(&menu).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", menu)
}

// Update 更新菜单
// @Summary 更新菜单
// @Description 父级不能设为自己或自身的子孙菜单
// @Tags 菜单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "菜单ID"
// @Param request body MenuUpdateRequest true "菜单信息"
// @Success 200 {object} Response{data=models.Menu} "更新成功"
// @Failure 400 {object} Response "父级非法"
// @Failure 404 {object} Response "菜单不存在"
// @Router /api/v1/menus/{id} [put]
func (h *MenuHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}
	var req MenuUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	var menu models.Menu
	if err := database.DB.First(&menu, id).Error; err != nil {
		NotFound(c, "菜单不存在")
		return
	}
	if req.ParentID != nil {
		pid := *req.ParentID
		if pid > 0 {
			if pid == uint(id) {
				BadRequest(c, "不能将父级设为自己")
				return
			}
			var parent models.Menu
			if err := database.DB.First(&parent, pid).Error; err != nil {
				BadRequest(c, "父级菜单不存在")
				return
			}
			// 防止循环：parent_id 不能是当前菜单的任意子孙
			var allMenus []models.Menu
			database.DB.Find(&allMenus)
			descendants := collectMenuDescendantIDs(allMenus, uint(id))
			if descendants[pid] {
				BadRequest(c, "不能将父级设为自身的子菜单")
				return
			}
		}
	}

	updates := make(map[string]interface{})
	if req.ParentID != nil {
		updates["parent_id"] = *req.ParentID
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&menu).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}
	database.DB.First(&menu, menu.ID)
	SuccessWithMessage(c, "更新成功", menu)
}

// Delete 删除菜单
// @Summary 删除菜单
// @Description 仍有子菜单时拒绝删除，返回 409
// @Tags 菜单
// @Produce json
// @Security BearerAuth
// @Param id path int true "菜单ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "菜单不存在"
// @Failure 409 {object} Response "存在子菜单"
// @Router /api/v1/menus/{id} [delete]
func (h *MenuHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}
	var menu models.Menu
	if err := database.DB.First(&menu, id).Error; err != nil {
		NotFound(c, "菜单不存在")
		return
	}

	var childCount int64
	if err := database.DB.Model(&models.Menu{}).Where("parent_id = ?", menu.ID).Count(&childCount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if childCount > 0 {
		Conflict(c, "存在子菜单，无法删除")
		return
	}

	if err := database.DB.Delete(&menu).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
