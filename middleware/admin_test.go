package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookkeeping/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupAdminMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func userRows(id uint, role string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "full_name", "email", "password", "role", "last_login_at", "created_at", "updated_at", "deleted_at"}).
		AddRow(id, "u", "U", "u@example.com", "x", role, nil, time.Now(), time.Now(), nil)
}

func adminTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin-only", func(c *gin.Context) {
		c.Set("userID", uint(1))
	}, AdminRequired(), func(c *gin.Context) {
		c.String(200, "ok")
	})
	return r
}

func TestAdminRequired_Admin(t *testing.T) {
	mock, cleanup := setupAdminMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").WithArgs(uint(1)).
		WillReturnRows(userRows(1, "admin"))

	w := httptest.NewRecorder()
	adminTestRouter().ServeHTTP(w, httptest.NewRequest("GET", "/admin-only", nil))

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRequired_NormalUserForbidden(t *testing.T) {
	mock, cleanup := setupAdminMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").WithArgs(uint(1)).
		WillReturnRows(userRows(1, "user"))

	w := httptest.NewRecorder()
	adminTestRouter().ServeHTTP(w, httptest.NewRequest("GET", "/admin-only", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "权限不足")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRequired_NoSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin-only", AdminRequired(), func(c *gin.Context) {
		c.String(200, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/admin-only", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
