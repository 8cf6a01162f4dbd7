package database

import (
	"fmt"
	"log"

	"bookkeeping/config"
	"bookkeeping/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	// 构建 MySQL DSN 连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	// 自动迁移数据库表
	if err := DB.AutoMigrate(
		&models.User{},
		&models.FixedCost{},
		&models.VariableCost{},
		&models.Revenue{},
		&models.Product{},
		&models.Sale{},
		&models.SaleLineItem{},
		&models.Menu{},
		&models.CashFlowEntry{},
		&models.CashFlowCategory{},
		&models.PasswordReset{},
	); err != nil {
		return err
	}

	// 兼容历史数据：老版本预算表没有 budget_amount/period 字段，
	// 一次性回填默认值，之后读取路径不再做字段存在性判断
	for _, table := range []string{"fixed_costs", "variable_costs", "revenues"} {
		_ = DB.Exec(fmt.Sprintf("UPDATE %s SET budget_amount = 0 WHERE budget_amount IS NULL", table)).Error
		_ = DB.Exec(fmt.Sprintf("UPDATE %s SET period = ? WHERE period IS NULL OR period = ''", table),
			models.PeriodMonthly).Error
	}

	// 初始化默认现金流类别（仅当表为空时）
	var catCount int64
	DB.Model(&models.CashFlowCategory{}).Count(&catCount)
	if catCount == 0 {
		defaultCats := []models.CashFlowCategory{
			{Name: "销售收入", Kind: models.FlowKindInflow, Description: "商品与服务销售款"},
			{Name: "其他收入", Kind: models.FlowKindInflow, Description: "利息、补贴等"},
			{Name: "采购支出", Kind: models.FlowKindOutflow, Description: "原料与商品采购"},
			{Name: "运营支出", Kind: models.FlowKindOutflow, Description: "房租、水电、工资"},
			{Name: "调整", Kind: models.FlowKindBoth, Description: "盘点差异等双向调整"},
		}
		_ = DB.Create(&defaultCats).Error
	}

	// 初始化默认菜单（仅当表为空时）
	var menuCount int64
	DB.Model(&models.Menu{}).Count(&menuCount)
	if menuCount == 0 {
		defaultMenus := []models.Menu{
			{Name: "仪表盘", URL: "/dashboard", Icon: "fa-chart-pie", SortOrder: 10, IsActive: true},
			{Name: "固定成本", URL: "/fixed-costs", Icon: "fa-building", SortOrder: 20, IsActive: true},
			{Name: "变动成本", URL: "/variable-costs", Icon: "fa-cart-shopping", SortOrder: 30, IsActive: true},
			{Name: "营收", URL: "/revenues", Icon: "fa-money-bill-trend-up", SortOrder: 40, IsActive: true},
			{Name: "现金流水", URL: "/cash-flow", Icon: "fa-money-bill-transfer", SortOrder: 50, IsActive: true},
			{Name: "商品与销售", URL: "/sales", Icon: "fa-receipt", SortOrder: 60, IsActive: true},
		}
		_ = DB.Create(&defaultMenus).Error
	}

	log.Println("数据库初始化成功")
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
