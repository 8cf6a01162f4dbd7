package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func budgetColumns() []string {
	return []string{"id", "name", "actual_amount", "budget_amount", "period", "note", "created_at", "updated_at", "deleted_at"}
}

func TestBudgetHandler_Create_FixedCost(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `fixed_costs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.POST("/fixed-costs", NewFixedCostHandler().Create)

	body := `{"name":"Sewa Ruko","actual_amount":800,"budget_amount":1000}`
	req := httptest.NewRequest("POST", "/fixed-costs", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	// 成本差异 = 预算 - 实际，达成率 = 实际/预算*100
	assert.Equal(t, 200.0, data["variance"])
	assert.Equal(t, 80.0, data["realization_pct"])
	assert.Equal(t, "monthly", data["period"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Create_Revenue_VarianceSign(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `revenues`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.POST("/revenues", NewRevenueHandler().Create)

	body := `{"name":"Penjualan Toko","actual_amount":1200,"budget_amount":1000}`
	req := httptest.NewRequest("POST", "/revenues", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	// 营收差异 = 实际 - 预算
	assert.Equal(t, 200.0, data["variance"])
	assert.Equal(t, 120.0, data["realization_pct"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Create_ZeroBudgetRealizationZero(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `variable_costs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.POST("/variable-costs", NewVariableCostHandler().Create)

	body := `{"name":"Bahan Baku","actual_amount":500,"budget_amount":0}`
	req := httptest.NewRequest("POST", "/variable-costs", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	// 预算为 0 时达成率定义为 0，不做除法
	assert.Equal(t, 0.0, data["realization_pct"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Update_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `fixed_costs`").
		WithArgs(99).
		WillReturnError(gorm.ErrRecordNotFound)

	router := gin.New()
	router.PUT("/fixed-costs/:id", NewFixedCostHandler().Update)

	body := `{"name":"Sewa Ruko","actual_amount":900,"budget_amount":1000}`
	req := httptest.NewRequest("PUT", "/fixed-costs/99", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "条目不存在", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Delete_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `revenues`").
		WithArgs(99).
		WillReturnError(gorm.ErrRecordNotFound)

	router := gin.New()
	router.DELETE("/revenues/:id", NewRevenueHandler().Delete)

	req := httptest.NewRequest("DELETE", "/revenues/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `fixed_costs`").
		WillReturnRows(sqlmock.NewRows(budgetColumns()).
			AddRow(1, "Sewa Ruko", 800.0, 1000.0, "monthly", "", now, now, nil).
			AddRow(2, "Listrik", 250.0, 200.0, "monthly", "", now, now, nil))

	router := gin.New()
	router.GET("/fixed-costs", NewFixedCostHandler().List)

	req := httptest.NewRequest("GET", "/fixed-costs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	require.Len(t, list, 2)
	second := list[1].(map[string]interface{})
	// 超支时成本差异为负
	assert.Equal(t, -50.0, second["variance"])
	assert.Equal(t, 125.0, second["realization_pct"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Aggregate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(budget_amount\\), 0\\) AS total_budget").
		WillReturnRows(sqlmock.NewRows([]string{"total_budget", "total_actual"}).
			AddRow(1000.0, 800.0))

	router := gin.New()
	router.GET("/fixed-costs/summary", NewFixedCostHandler().Aggregate)

	req := httptest.NewRequest("GET", "/fixed-costs/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 1000.0, data["total_budget"])
	assert.Equal(t, 800.0, data["total_actual"])
	assert.Equal(t, 200.0, data["variance"])
	assert.Equal(t, 80.0, data["realization_pct"])
	require.NoError(t, mock.ExpectationsWereMet())
}
