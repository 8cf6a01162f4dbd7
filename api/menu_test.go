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

func menuColumns() []string {
	return []string{"id", "parent_id", "name", "url", "icon", "sort_order", "is_active", "created_at", "updated_at", "deleted_at"}
}

func TestMenuHandler_List_BuildsTree(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `menus`").
		WillReturnRows(sqlmock.NewRows(menuColumns()).
			AddRow(1, 0, "经营台账", "/ledger", "book", 1, true, now, now, nil).
			AddRow(2, 1, "固定成本", "/ledger/fixed-costs", "", 1, true, now, now, nil).
			AddRow(3, 1, "营收", "/ledger/revenues", "", 2, true, now, now, nil).
			AddRow(4, 0, "现金流水", "/cash-flow", "money", 2, true, now, now, nil))

	router := gin.New()
	router.GET("/menus", NewMenuHandler().List)

	req := httptest.NewRequest("GET", "/menus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	tree := resp["data"].([]interface{})
	require.Len(t, tree, 2)
	first := tree[0].(map[string]interface{})
	assert.Equal(t, "经营台账", first["name"])
	children := first["children"].([]interface{})
	assert.Len(t, children, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_Create_ParentNotExists(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `menus`").
		WithArgs(999).
		WillReturnError(gorm.ErrRecordNotFound)

	router := gin.New()
	router.POST("/menus", NewMenuHandler().Create)

	body := `{"parent_id":999,"name":"子菜单","url":"/child"}`
	req := httptest.NewRequest("POST", "/menus", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "父级菜单不存在", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_Update_SelfAsParent(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `menus`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(menuColumns()).
			AddRow(1, 0, "菜单1", "/m1", "", 0, true, time.Now(), time.Now(), nil))

	router := gin.New()
	router.PUT("/menus/:id", NewMenuHandler().Update)

	body := `{"parent_id":1}`
	req := httptest.NewRequest("PUT", "/menus/1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "不能将父级设为自己", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_Update_DescendantAsParent(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	// 当前菜单
	mock.ExpectQuery("SELECT .* FROM `menus`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(menuColumns()).
			AddRow(1, 0, "父菜单", "/parent", "", 0, true, now, now, nil))
	// 目标父级存在
	mock.ExpectQuery("SELECT .* FROM `menus`").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(menuColumns()).
			AddRow(2, 1, "子菜单", "/child", "", 0, true, now, now, nil))
	// 全量菜单用于子孙检查
	mock.ExpectQuery("SELECT .* FROM `menus`").
		WillReturnRows(sqlmock.NewRows(menuColumns()).
			AddRow(1, 0, "父菜单", "/parent", "", 0, true, now, now, nil).
			AddRow(2, 1, "子菜单", "/child", "", 0, true, now, now, nil))

	router := gin.New()
	router.PUT("/menus/:id", NewMenuHandler().Update)

	body := `{"parent_id":2}`
	req := httptest.NewRequest("PUT", "/menus/1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "不能将父级设为自身的子菜单", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_Delete_WithChildren(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `menus`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(menuColumns()).
			AddRow(1, 0, "父菜单", "/parent", "", 0, true, time.Now(), time.Now(), nil))

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `menus`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))

	router := gin.New()
	router.DELETE("/menus/:id", NewMenuHandler().Delete)

	req := httptest.NewRequest("DELETE", "/menus/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 409, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "存在子菜单，无法删除", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_Delete_Leaf(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `menus`").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(menuColumns()).
			AddRow(3, 1, "叶子菜单", "/leaf", "", 0, true, time.Now(), time.Now(), nil))

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `menus`").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `menus`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.DELETE("/menus/:id", NewMenuHandler().Delete)

	req := httptest.NewRequest("DELETE", "/menus/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
