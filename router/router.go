package router

import (
	"time"

	"bookkeeping/api"
	"bookkeeping/config"
	_ "bookkeeping/docs"
	"bookkeeping/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)

			// 密码重置
			auth.POST("/password/request-reset", authHandler.RequestPasswordReset)
			auth.POST("/password/verify-code", authHandler.VerifyResetCode)
			auth.POST("/password/reset", authHandler.ResetPassword)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 固定成本预算
			fixedCostHandler := api.NewFixedCostHandler()
			fixedCosts := authorized.Group("/fixed-costs")
			{
				fixedCosts.POST("", fixedCostHandler.Create)
				fixedCosts.GET("", fixedCostHandler.List)
				fixedCosts.GET("/summary", fixedCostHandler.Aggregate)
				fixedCosts.PUT("/:id", fixedCostHandler.Update)
				fixedCosts.DELETE("/:id", fixedCostHandler.Delete)
			}

			// 变动成本预算
			variableCostHandler := api.NewVariableCostHandler()
			variableCosts := authorized.Group("/variable-costs")
			{
				variableCosts.POST("", variableCostHandler.Create)
				variableCosts.GET("", variableCostHandler.List)
				variableCosts.GET("/summary", variableCostHandler.Aggregate)
				variableCosts.PUT("/:id", variableCostHandler.Update)
				variableCosts.DELETE("/:id", variableCostHandler.Delete)
			}

			// 营收预算
			revenueHandler := api.NewRevenueHandler()
			revenues := authorized.Group("/revenues")
			{
				revenues.POST("", revenueHandler.Create)
				revenues.GET("", revenueHandler.List)
				revenues.GET("/summary", revenueHandler.Aggregate)
				revenues.PUT("/:id", revenueHandler.Update)
				revenues.DELETE("/:id", revenueHandler.Delete)
			}

			// 经营汇总
			summaryHandler := api.NewSummaryHandler()
			authorized.GET("/summary", summaryHandler.GetSummary)

			// 现金流水
			cashFlowHandler := api.NewCashFlowHandler()
			cashFlow := authorized.Group("/cash-flow")
			{
				cashFlow.POST("/entries", cashFlowHandler.Create)
				cashFlow.GET("/entries", cashFlowHandler.List)
				cashFlow.PUT("/entries/:id", cashFlowHandler.Update)
				cashFlow.DELETE("/entries/:id", cashFlowHandler.Delete)
				cashFlow.GET("/report", cashFlowHandler.ReportByCategory)
			}

			// 现金流类别（查看）
			categoryHandler := api.NewCashFlowCategoryHandler()
			cashFlow.GET("/categories", categoryHandler.List)

			// 商品
			productHandler := api.NewProductHandler()
			products := authorized.Group("/products")
			{
				products.POST("", productHandler.Create)
				products.GET("", productHandler.List)
				products.GET("/:id", productHandler.Get)
				products.PUT("/:id", productHandler.Update)
				products.DELETE("/:id", productHandler.Delete)
			}

			// 销售
			saleHandler := api.NewSaleHandler()
			sales := authorized.Group("/sales")
			{
				sales.POST("", saleHandler.Create)
				sales.GET("", saleHandler.List)
				sales.GET("/top-products", saleHandler.TopProducts)
				sales.GET("/:id", saleHandler.Get)
				sales.DELETE("/:id", saleHandler.Delete)
			}

			// 菜单（查看）
			menuHandler := api.NewMenuHandler()
			authorized.GET("/menus", menuHandler.List)

			// 导出
			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
			}

			// 需要管理员角色的路由
			adminOnly := authorized.Group("")
			adminOnly.Use(middleware.AdminRequired())
			{
				// 菜单管理
				adminOnly.POST("/menus", menuHandler.Create)
				adminOnly.PUT("/menus/:id", menuHandler.Update)
				adminOnly.DELETE("/menus/:id", menuHandler.Delete)

				// 现金流类别管理
				adminOnly.POST("/cash-flow/categories", categoryHandler.Create)
				adminOnly.PUT("/cash-flow/categories/:id", categoryHandler.Update)
				adminOnly.DELETE("/cash-flow/categories/:id", categoryHandler.Delete)

				// 用户管理
				userHandler := api.NewUserHandler()
				adminOnly.GET("/users", userHandler.List)
				adminOnly.PUT("/users/:id/role", userHandler.ChangeRole)
				adminOnly.DELETE("/users/:id", userHandler.Delete)

				// Excel 导出
				adminOnly.GET("/export/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
