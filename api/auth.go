package api

import (
	"net/http"
	"time"

	"bookkeeping/config"
	"bookkeeping/database"
	"bookkeeping/middleware"
	"bookkeeping/models"
	"bookkeeping/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"budiman"`
	FullName string `json:"full_name" binding:"required,min=3,max=150" example:"Budi Santoso"`
	Email    string `json:"email" binding:"required,email" example:"budi@example.com"`
	Password string `json:"password" binding:"required,min=6,max=50" example:"password123"`
}

// LoginRequest 登录请求（支持用户名或邮箱）
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"budiman"` // 可为用户名或邮箱
	Password string `json:"password" binding:"required" example:"password123"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token    string      `json:"token"`
	UserInfo models.User `json:"user_info"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户账号。系统内首个注册用户自动成为管理员，后续注册均为普通用户。
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} Response{data=models.User} "注册成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "用户名/邮箱/姓名已被使用"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	// 检查唯一字段是否已被占用
	var existingUser models.User
	if err := database.DB.Where("username = ? OR email = ? OR full_name = ?",
		req.Username, req.Email, req.FullName).First(&existingUser).Error; err == nil {
		Conflict(c, "用户名、邮箱或姓名已被使用")
		return
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	user := models.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	// 首个注册用户自动成为管理员
	// 计数与插入放在同一事务中，避免并发注册时出现两个"第一个"用户
	if err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			user.Role = models.RoleAdmin
		} else {
			user.Role = models.RoleUser
		}
		return tx.Create(&user).Error
	}); err != nil {
		InternalError(c, SafeErrorMessage(err, "创建用户失败"))
		return
	}

	SuccessWithMessage(c, "注册成功", user)
}

// Login 用户登录
// @Summary 用户登录
// @Description 用户登录获取 JWT token
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} Response{data=LoginResponse} "登录成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "用户名或密码错误"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	// 查找用户（支持用户名或邮箱）
	var user models.User
	if err := database.DB.Where("username = ? OR email = ?", req.Username, req.Username).First(&user).Error; err != nil {
		Unauthorized(c, "用户名或密码错误")
		return
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "用户名或密码错误")
		return
	}

	// 生成 token
	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "生成 token 失败")
		return
	}

	// 记录最近登录时间
	now := time.Now()
	_ = database.DB.Model(&user).Update("last_login_at", now).Error
	user.LastLoginAt = &now

	Success(c, LoginResponse{
		Token:    token,
		UserInfo: user,
	})
}

// GetProfile 获取用户信息
// @Summary 获取当前用户信息
// @Description 获取当前登录用户的详细信息
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	Success(c, user)
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required" example:"oldpassword123"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=50" example:"newpassword123"`
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Description 修改当前用户密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "密码信息"
// @Success 200 {object} Response "修改成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "原密码错误"
// @Router /api/v1/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	// 验证旧密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		Unauthorized(c, "原密码错误")
		return
	}

	// 加密新密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	if err := database.DB.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		InternalError(c, "更新密码失败")
		return
	}

	SuccessWithMessage(c, "密码修改成功", nil)
}

// ============== 密码重置相关接口 ==============

// RequestPasswordResetRequest 请求密码重置
type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email" example:"budi@example.com"`
}

// RequestPasswordReset 请求密码重置（发送验证码）
// @Summary 请求密码重置
// @Description 通过邮箱发送密码重置验证码
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RequestPasswordResetRequest true "密码重置请求"
// @Success 200 {object} Response "验证码已发送"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/v1/auth/password/request-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请输入有效的邮箱地址")
		return
	}

	// 为了安全，即使用户不存在也返回成功
	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		SuccessWithMessage(c, "如果该邮箱已注册，您将收到密码重置验证码", nil)
		return
	}

	// 检查是否有未使用的有效验证码（防止频繁发送）
	var existingReset models.PasswordReset
	if err := database.DB.Where("user_id = ? AND used = ? AND expires_at > ?",
		user.ID, false, time.Now()).First(&existingReset).Error; err == nil {
		if time.Since(existingReset.CreatedAt) < time.Minute {
			c.JSON(http.StatusTooManyRequests, Response{
				Code:    429,
				Message: "请求过于频繁，请稍后再试",
			})
			return
		}
		database.DB.Model(&existingReset).Update("used", true)
	}

	// 生成6位数字验证码
	code, err := models.GenerateVerificationCode()
	if err != nil {
		InternalError(c, "生成验证码失败")
		return
	}

	passwordReset := models.PasswordReset{
		UserID:    user.ID,
		Email:     req.Email,
		Token:     code,
		ExpiresAt: time.Now().Add(10 * time.Minute), // 10分钟有效期
	}

	if err := database.DB.Create(&passwordReset).Error; err != nil {
		InternalError(c, "创建重置令牌失败")
		return
	}

	if err := h.emailService.SendPasswordResetEmail(req.Email, user.Username, code); err != nil {
		database.DB.Delete(&passwordReset)
		InternalError(c, SafeErrorMessage(err, "邮件发送失败"))
		return
	}

	SuccessWithMessage(c, "密码重置验证码已发送，请查收邮件", nil)
}

// VerifyResetCodeRequest 验证重置验证码
type VerifyResetCodeRequest struct {
	Email string `json:"email" binding:"required,email" example:"budi@example.com"`
	Code  string `json:"code" binding:"required,len=6" example:"123456"`
}

// VerifyResetCode 验证重置验证码
// @Summary 验证重置验证码
// @Description 验证密码重置验证码是否正确
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body VerifyResetCodeRequest true "验证请求"
// @Success 200 {object} Response "验证成功"
// @Failure 400 {object} Response "验证码错误或已过期"
// @Router /api/v1/auth/password/verify-code [post]
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req VerifyResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误")
		return
	}

	var passwordReset models.PasswordReset
	if err := database.DB.Where("email = ? AND token = ?", req.Email, req.Code).First(&passwordReset).Error; err != nil {
		BadRequest(c, "验证码错误")
		return
	}

	if !passwordReset.IsValid() {
		if passwordReset.Used {
			BadRequest(c, "验证码已被使用")
		} else {
			BadRequest(c, "验证码已过期，请重新获取")
		}
		return
	}

	SuccessWithMessage(c, "验证成功", nil)
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email" example:"budi@example.com"`
	Code        string `json:"code" binding:"required,len=6" example:"123456"`
	NewPassword string `json:"new_password" binding:"required,min=6" example:"newpassword123"`
}

// ResetPassword 重置密码
// @Summary 重置密码
// @Description 使用验证码重置密码
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "重置密码请求"
// @Success 200 {object} Response "密码重置成功"
// @Failure 400 {object} Response "验证码错误或已过期"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/auth/password/reset [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误")
		return
	}

	var passwordReset models.PasswordReset
	if err := database.DB.Where("email = ? AND token = ?", req.Email, req.Code).First(&passwordReset).Error; err != nil {
		BadRequest(c, "验证码错误")
		return
	}

	if !passwordReset.IsValid() {
		if passwordReset.Used {
			BadRequest(c, "验证码已被使用")
		} else {
			BadRequest(c, "验证码已过期，请重新获取")
		}
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", passwordReset.UserID).
		Update("password", string(hashedPassword)).Error; err != nil {
		InternalError(c, "更新密码失败")
		return
	}

	// 使该用户所有未使用的重置令牌失效
	database.DB.Model(&models.PasswordReset{}).
		Where("user_id = ? AND used = ?", passwordReset.UserID, false).
		Update("used", true)

	SuccessWithMessage(c, "密码重置成功，请使用新密码登录", nil)
}
