package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"bookkeeping/database"
	"bookkeeping/middleware"
	"bookkeeping/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleHandler 销售单处理器
type SaleHandler struct{}

// NewSaleHandler 创建销售单处理器
func NewSaleHandler() *SaleHandler {
	return &SaleHandler{}
}

// SaleItemRequest 销售明细请求
type SaleItemRequest struct {
	ProductID uint     `json:"product_id" binding:"required" example:"1"`
	Quantity  int      `json:"quantity" binding:"required,gte=1" example:"2"`
	UnitPrice *float64 `json:"unit_price" binding:"omitempty,gte=0" example:"15000"` // 缺省取商品售价
}

// CreateSaleRequest 创建销售单请求
type CreateSaleRequest struct {
	InvoiceNo string            `json:"invoice_no" binding:"omitempty,max=50" example:"INV-20240115-0001"` // 缺省自动生成
	SaleTime  string            `json:"sale_time" binding:"omitempty" example:"2024-01-15 12:30:00"`       // 缺省为当前时间
	Items     []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// generateInvoiceNo 生成发票号：INV-日期-uuid片段
func generateInvoiceNo(at time.Time) string {
	return "INV-" + at.Format("20060102") + "-" + strings.Split(uuid.NewString(), "-")[0]
}

// Create 创建销售单
// @Summary 创建销售单
// @Description 销售单与全部明细在同一事务中写入，任一明细失败则整单回滚。单价缺省取商品售价，合计自动汇总。
// @Tags 销售
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSaleRequest true "销售单信息"
// @Success 200 {object} Response{data=models.Sale} "创建成功"
// @Failure 400 {object} Response "请求参数错误或商品不存在"
// @Failure 409 {object} Response "发票号已存在"
// @Router /api/v1/sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	saleTime := time.Now()
	if req.SaleTime != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", req.SaleTime, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		saleTime = t
	}

	invoiceNo := req.InvoiceNo
	if invoiceNo == "" {
		invoiceNo = generateInvoiceNo(saleTime)
	} else {
		var existing models.Sale
		if err := database.DB.Where("invoice_no = ?", invoiceNo).First(&existing).Error; err == nil {
			Conflict(c, "发票号已存在")
			return
		}
	}

	sale := models.Sale{
		InvoiceNo: invoiceNo,
		SaleTime:  saleTime,
		UserID:    userID,
	}

	// 销售单与明细整体成败，避免孤儿明细
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		items := make([]models.SaleLineItem, 0, len(req.Items))
		var total float64
		for _, item := range req.Items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				return errProductNotFound
			}
			unitPrice := product.SellPrice
			if item.UnitPrice != nil {
				unitPrice = *item.UnitPrice
			}
			subtotal := unitPrice * float64(item.Quantity)
			total += subtotal
			items = append(items, models.SaleLineItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: unitPrice,
				Subtotal:  subtotal,
			})
		}
		sale.TotalAmount = total
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].SaleID = sale.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		sale.Items = items
		return nil
	})
	if err != nil {
		if err == errProductNotFound {
			BadRequest(c, "明细引用的商品不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "创建销售单失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", sale)
}

var errProductNotFound = errors.New("商品不存在")

// List 销售单列表
// @Summary 销售单列表
// @Tags 销售
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Sale}} "获取成功"
// @Router /api/v1/sales [get]
func (h *SaleHandler) List(c *gin.Context) {
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

	query := database.DB.Model(&models.Sale{})
	if startTime := c.Query("start_time"); startTime != "" {
		if t, err := time.ParseInLocation("2006-01-02", startTime, time.Local); err == nil {
			query = query.Where("sale_time >= ?", t)
		}
	}
	if endTime := c.Query("end_time"); endTime != "" {
		if t, err := time.ParseInLocation("2006-01-02", endTime, time.Local); err == nil {
			t = t.Add(24*time.Hour - time.Second)
			query = query.Where("sale_time <= ?", t)
		}
	}

	var total int64
	query.Count(&total)

	var sales []models.Sale
	if err := query.Order("sale_time DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&sales).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     sales,
	})
}

// Get 获取销售单（含明细）
// @Summary 获取销售单详情
// @Tags 销售
// @Produce json
// @Security BearerAuth
// @Param id path int true "销售单ID"
// @Success 200 {object} Response{data=models.Sale} "获取成功"
// @Failure 404 {object} Response "销售单不存在"
// @Router /api/v1/sales/{id} [get]
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var sale models.Sale
	if err := database.DB.Preload("Items").First(&sale, id).Error; err != nil {
		NotFound(c, "销售单不存在")
		return
	}

	Success(c, sale)
}

// Delete 删除销售单
// @Summary 删除销售单
// @Description 级联删除全部明细，与销售单在同一事务中完成，不留孤儿明细
// @Tags 销售
// @Produce json
// @Security BearerAuth
// @Param id path int true "销售单ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "销售单不存在"
// @Router /api/v1/sales/{id} [delete]
func (h *SaleHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var sale models.Sale
	if err := database.DB.First(&sale, id).Error; err != nil {
		NotFound(c, "销售单不存在")
		return
	}

	if err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleLineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sale).Error
	}); err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// TopProductItem 热销商品条目
type TopProductItem struct {
	Product       models.Product `json:"product"`
	TotalQuantity int            `json:"total_quantity"`
}

// TopProducts 热销商品排行
// @Summary 热销商品排行
// @Description 按累计销量倒序返回，销量为 0 的商品不出现在排行中
// @Tags 销售
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数" default(10)
// @Success 200 {object} Response{data=[]TopProductItem} "获取成功"
// @Router /api/v1/sales/top-products [get]
func (h *SaleHandler) TopProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var rows []struct {
		ProductID     uint
		TotalQuantity int
	}
	if err := database.DB.Model(&models.SaleLineItem{}).
		Select("product_id, SUM(quantity) AS total_quantity").
		Group("product_id").
		Order("total_quantity DESC, product_id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	result := make([]TopProductItem, 0, len(rows))
	for _, row := range rows {
		var product models.Product
		if err := database.DB.First(&product, row.ProductID).Error; err != nil {
			// 商品被软删除后排行中跳过
			continue
		}
		result = append(result, TopProductItem{
			Product:       product,
			TotalQuantity: row.TotalQuantity,
		})
	}

	Success(c, result)
}
