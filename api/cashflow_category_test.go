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

func TestCashFlowCategoryHandler_Create_DuplicateName(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `cash_flow_categories`").
		WithArgs("销售收入").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(1, "销售收入", "inflow", "", time.Now(), time.Now(), nil))

	router := gin.New()
	router.POST("/categories", NewCashFlowCategoryHandler().Create)

	body := `{"name":"销售收入","kind":"inflow"}`
	req := httptest.NewRequest("POST", "/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 409, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "类别名已存在", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCashFlowCategoryHandler_Delete_ReferencedByEntries(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `cash_flow_categories`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(1, "销售收入", "inflow", "", time.Now(), time.Now(), nil))

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `cash_flow_entries`").
		WithArgs("销售收入").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(3))

	router := gin.New()
	router.DELETE("/categories/:id", NewCashFlowCategoryHandler().Delete)

	req := httptest.NewRequest("DELETE", "/categories/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 409, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "存在引用该类别的流水，无法删除", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCashFlowCategoryHandler_Delete_Unreferenced(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `cash_flow_categories`").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(5, "调整", "both", "", time.Now(), time.Now(), nil))

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `cash_flow_entries`").
		WithArgs("调整").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `cash_flow_categories`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.DELETE("/categories/:id", NewCashFlowCategoryHandler().Delete)

	req := httptest.NewRequest("DELETE", "/categories/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCashFlowCategoryHandler_Update_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `cash_flow_categories`").
		WithArgs(99).
		WillReturnError(gorm.ErrRecordNotFound)

	router := gin.New()
	router.PUT("/categories/:id", NewCashFlowCategoryHandler().Update)

	body := `{"name":"其他收入"}`
	req := httptest.NewRequest("PUT", "/categories/99", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
