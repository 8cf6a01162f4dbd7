package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLoginRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginRateLimit(3, time.Minute), func(c *gin.Context) {
		c.String(200, "ok")
	})

	// 前 3 次放行
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		assert.Equal(t, 200, w.Code)
	}

	// 第 4 次被限流
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "过于频繁")
}

func TestLoginRateLimit_WindowExpiry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginRateLimit(1, 50*time.Millisecond), func(c *gin.Context) {
		c.String(200, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
	assert.Equal(t, 200, w.Code)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest("POST", "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)

	// 窗口滑出后恢复
	time.Sleep(60 * time.Millisecond)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest("POST", "/login", nil))
	assert.Equal(t, 200, w3.Code)
}
