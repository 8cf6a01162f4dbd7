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

func TestUserHandler_Delete_Self(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/users/:id", NewUserHandler().Delete)

	req := httptest.NewRequest("DELETE", "/users/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "不能删除当前登录的账号", resp["message"])
}

func TestUserHandler_Delete_OtherUser(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(2, "siti", "Siti Rahma", "siti@example.com", "hash", "user", nil, time.Now(), time.Now(), nil))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/users/:id", NewUserHandler().Delete)

	req := httptest.NewRequest("DELETE", "/users/2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserHandler_ChangeRole(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(2, "siti", "Siti Rahma", "siti@example.com", "hash", "user", nil, time.Now(), time.Now(), nil))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/users/:id/role", NewUserHandler().ChangeRole)

	body := `{"role":"admin"}`
	req := httptest.NewRequest("PUT", "/users/2/role", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "admin", data["role"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserHandler_ChangeRole_InvalidRole(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/users/:id/role", NewUserHandler().ChangeRole)

	body := `{"role":"superuser"}`
	req := httptest.NewRequest("PUT", "/users/2/role", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestUserHandler_ChangeRole_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(99).
		WillReturnError(gorm.ErrRecordNotFound)

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/users/:id/role", NewUserHandler().ChangeRole)

	body := `{"role":"admin"}`
	req := httptest.NewRequest("PUT", "/users/99/role", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
