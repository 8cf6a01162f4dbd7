package api

import (
	"strconv"

	"bookkeeping/database"
	"bookkeeping/middleware"
	"bookkeeping/models"
	"bookkeeping/timeutil"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户管理（仅管理员）
type UserHandler struct{}

// NewUserHandler 创建用户管理处理器
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// UserView 用户返回（不含密码）
type UserView struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	LastLoginAt string `json:"last_login_at"`
	CreatedAt   string `json:"created_at"`
}

func userView(u models.User) UserView {
	view := UserView{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		Role:        u.Role,
		CreatedAt:   timeutil.FormatDateTime(u.CreatedAt),
		LastLoginAt: "-",
	}
	if u.LastLoginAt != nil {
		view.LastLoginAt = timeutil.FormatDateTime(*u.LastLoginAt)
	}
	return view
}

// List 用户列表
// @Summary 用户列表
// @Tags 用户管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]UserView} "获取成功"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if err := database.DB.Order("id ASC").Find(&users).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}
	Success(c, views)
}

// ChangeRoleRequest 修改角色请求
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user" example:"admin"`
}

// ChangeRole 修改用户角色
// @Summary 修改用户角色
// @Tags 用户管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body ChangeRoleRequest true "角色"
// @Success 200 {object} Response{data=UserView} "更新成功"
// @Failure 403 {object} Response "权限不足"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/v1/users/{id}/role [put]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	if err := database.DB.Model(&user).Update("role", req.Role).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	user.Role = req.Role

	SuccessWithMessage(c, "更新成功", userView(user))
}

// Delete 删除用户
// @Summary 删除用户
// @Description 管理员不能删除自己的账号
// @Tags 用户管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "不能删除自己"
// @Failure 403 {object} Response "权限不足"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	if uint(id) == middleware.GetCurrentUserID(c) {
		BadRequest(c, "不能删除当前登录的账号")
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	if err := database.DB.Delete(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
