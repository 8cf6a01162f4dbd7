package api

import (
	"strconv"

	"bookkeeping/database"
	"bookkeeping/models"

	"github.com/gin-gonic/gin"
)

// ProductHandler 商品处理器
type ProductHandler struct{}

// NewProductHandler 创建商品处理器
func NewProductHandler() *ProductHandler {
	return &ProductHandler{}
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Code      string   `json:"code" binding:"required,min=1,max=50" example:"KPI-001"`
	Name      string   `json:"name" binding:"required,min=1,max=100" example:"Kopi Susu"`
	BuyPrice  *float64 `json:"buy_price" binding:"required,gte=0" example:"8000"`
	SellPrice *float64 `json:"sell_price" binding:"required,gte=0" example:"15000"`
	Stock     *int     `json:"stock" binding:"required,gte=0" example:"100"`
	Category  string   `json:"category" binding:"omitempty,max=50" example:"minuman"`
}

// UpdateProductRequest 更新商品请求
type UpdateProductRequest struct {
	Code      *string  `json:"code" binding:"omitempty,min=1,max=50"`
	Name      *string  `json:"name" binding:"omitempty,min=1,max=100"`
	BuyPrice  *float64 `json:"buy_price" binding:"omitempty,gte=0"`
	SellPrice *float64 `json:"sell_price" binding:"omitempty,gte=0"`
	Stock     *int     `json:"stock" binding:"omitempty,gte=0"`
	Category  *string  `json:"category" binding:"omitempty,max=50"`
}

// ProductView 商品返回，含派生毛利指标
type ProductView struct {
	models.Product
	Profit    float64 `json:"profit"`
	ProfitPct float64 `json:"profit_pct"`
}

func productView(p models.Product) ProductView {
	return ProductView{
		Product:   p,
		Profit:    p.Profit(),
		ProfitPct: p.ProfitPercentage(),
	}
}

// Create 创建商品
// @Summary 创建商品
// @Description 商品编码唯一，重码返回 409。毛利率在进价为 0 时定义为 0。
// @Tags 商品
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProductRequest true "商品信息"
// @Success 200 {object} Response{data=ProductView} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "商品编码已存在"
// @Router /api/v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var existing models.Product
	if err := database.DB.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		Conflict(c, "商品编码已存在")
		return
	}

	product := models.Product{
		Code:      req.Code,
		Name:      req.Name,
		BuyPrice:  *req.BuyPrice,
		SellPrice: *req.SellPrice,
		Stock:     *req.Stock,
		Category:  req.Category,
	}
	if err := database.DB.Create(&product).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建商品失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", productView(product))
}

// List 商品列表
// @Summary 商品列表
// @Tags 商品
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category query string false "类别筛选"
// @Success 200 {object} Response{data=PageResponse{list=[]ProductView}} "获取成功"
// @Router /api/v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	query := database.DB.Model(&models.Product{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	query.Count(&total)

	var products []models.Product
	if err := query.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&products).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, productView(p))
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     views,
	})
}

// Get 获取单个商品
// @Summary 获取商品详情
// @Tags 商品
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 200 {object} Response{data=ProductView} "获取成功"
// @Failure 404 {object} Response "商品不存在"
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		NotFound(c, "商品不存在")
		return
	}

	Success(c, productView(product))
}

// Update 更新商品
// @Summary 更新商品
// @Tags 商品
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param request body UpdateProductRequest true "商品信息"
// @Success 200 {object} Response{data=ProductView} "更新成功"
// @Failure 404 {object} Response "商品不存在"
// @Failure 409 {object} Response "商品编码已存在"
// @Router /api/v1/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		NotFound(c, "商品不存在")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Code != nil && *req.Code != product.Code {
		var existing models.Product
		if err := database.DB.Where("code = ? AND id <> ?", *req.Code, product.ID).First(&existing).Error; err == nil {
			Conflict(c, "商品编码已存在")
			return
		}
		updates["code"] = *req.Code
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.BuyPrice != nil {
		updates["buy_price"] = *req.BuyPrice
	}
	if req.SellPrice != nil {
		updates["sell_price"] = *req.SellPrice
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&product).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}
	database.DB.First(&product, product.ID)

	SuccessWithMessage(c, "更新成功", productView(product))
}

// Delete 删除商品
// @Summary 删除商品
// @Description 存在销售明细引用的商品不可删除，返回 409
// @Tags 商品
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "商品不存在"
// @Failure 409 {object} Response "存在引用该商品的销售明细"
// @Router /api/v1/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		NotFound(c, "商品不存在")
		return
	}

	// 引用守卫：有销售明细引用时不可删除
	var refCount int64
	if err := database.DB.Model(&models.SaleLineItem{}).Where("product_id = ?", product.ID).Count(&refCount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if refCount > 0 {
		Conflict(c, "存在引用该商品的销售明细，无法删除")
		return
	}

	if err := database.DB.Delete(&product).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
