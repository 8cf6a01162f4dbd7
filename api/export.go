package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"bookkeeping/database"
	"bookkeeping/models"
	"bookkeeping/timeutil"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 现金流水导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

func parseExportRange(c *gin.Context) (start, end time.Time, ok bool) {
	startStr := c.Query("start_time")
	endStr := c.Query("end_time")

	if startStr == "" || endStr == "" {
		BadRequest(c, "请提供开始时间和结束时间")
		return
	}

	start, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
	if err != nil {
		BadRequest(c, "开始时间格式错误，应为: 2006-01-02")
		return
	}

	end, err = time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err != nil {
		BadRequest(c, "结束时间格式错误，应为: 2006-01-02")
		return
	}
	end = end.Add(24*time.Hour - time.Second)
	ok = true
	return
}

func queryExportEntries(start, end time.Time) ([]models.CashFlowEntry, error) {
	var entries []models.CashFlowEntry
	err := database.DB.Where("entry_time >= ? AND entry_time <= ?", start, end).
		Order("entry_time DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

func kindLabel(kind string) string {
	if kind == models.FlowKindInflow {
		return "收入"
	}
	return "支出"
}

// ExportCSV 导出现金流水为 CSV
// @Summary 导出现金流水 CSV
// @Description 根据时间范围导出现金流水为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	start, end, ok := parseExportRange(c)
	if !ok {
		return
	}

	entries, err := queryExportEntries(start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"ID", "时间", "方向", "类别", "描述", "金额", "余额"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	for _, entry := range entries {
		row := []string{
			fmt.Sprintf("%d", entry.ID),
			timeutil.UTCToLocal(entry.EntryTime).Format("2006-01-02 15:04:05"),
			kindLabel(entry.Kind),
			entry.Category,
			entry.Description,
			fmt.Sprintf("%.2f", entry.Amount),
			fmt.Sprintf("%.2f", entry.Balance),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("cash_flow_%s_%s.csv", c.Query("start_time"), c.Query("end_time"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出现金流水为 JSON
// @Summary 导出现金流水 JSON
// @Description 根据时间范围导出现金流水及汇总为 JSON 格式
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {object} Response "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	start, end, ok := parseExportRange(c)
	if !ok {
		return
	}

	entries, err := queryExportEntries(start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	var totalInflow, totalOutflow float64
	for _, entry := range entries {
		if entry.Kind == models.FlowKindInflow {
			totalInflow += entry.Amount
		} else {
			totalOutflow += entry.Amount
		}
	}

	Success(c, gin.H{
		"start_time":    c.Query("start_time"),
		"end_time":      c.Query("end_time"),
		"total_count":   len(entries),
		"total_inflow":  totalInflow,
		"total_outflow": totalOutflow,
		"net_balance":   totalInflow - totalOutflow,
		"entries":       entries,
	})
}

// ExportExcel 导出现金流水为 Excel
// @Summary 导出现金流水 Excel
// @Description 根据时间范围导出带样式的 Excel 文件，含汇总行（仅管理员）
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	start, end, ok := parseExportRange(c)
	if !ok {
		return
	}

	type entryWithUser struct {
		models.CashFlowEntry
		Username string
	}

	var entries []entryWithUser
	if err := database.DB.Model(&models.CashFlowEntry{}).
		Select("cash_flow_entries.*, users.username").
		Joins("LEFT JOIN users ON cash_flow_entries.user_id = users.id").
		Where("cash_flow_entries.entry_time >= ? AND cash_flow_entries.entry_time <= ?", start, end).
		Order("cash_flow_entries.entry_time DESC, cash_flow_entries.id DESC").
		Scan(&entries).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "现金流水"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "D", 15)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 15)
	f.SetColWidth(sheetName, "G", "G", 15)
	f.SetColWidth(sheetName, "H", "H", 15)

	headers := []string{"ID", "时间", "方向", "类别", "描述", "金额", "余额", "记账人"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	var totalInflow, totalOutflow float64
	for i, entry := range entries {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), entry.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), timeutil.UTCToLocal(entry.EntryTime).Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), kindLabel(entry.Kind))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), entry.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), entry.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), entry.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), entry.Balance)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), entry.Username)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), dataStyle)

		if entry.Kind == models.FlowKindInflow {
			totalInflow += entry.Amount
		} else {
			totalOutflow += entry.Amount
		}
	}

	summaryRow := len(entries) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "合计")
	f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("C%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("收入 %.2f", totalInflow))
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", summaryRow), fmt.Sprintf("支出 %.2f", totalOutflow))
	f.SetCellValue(sheetName, fmt.Sprintf("F%d", summaryRow), fmt.Sprintf("净额 %.2f", totalInflow-totalOutflow))
	f.SetCellValue(sheetName, fmt.Sprintf("G%d", summaryRow), fmt.Sprintf("共 %d 条记录", len(entries)))
	f.MergeCell(sheetName, fmt.Sprintf("G%d", summaryRow), fmt.Sprintf("H%d", summaryRow))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("H%d", summaryRow), summaryStyle)

	filename := fmt.Sprintf("现金流水_%s_%s.xlsx", c.Query("start_time"), c.Query("end_time"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
}
