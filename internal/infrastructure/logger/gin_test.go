package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-77")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	for _, path := range []string{"/ok", "/bad?x=1", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	logs := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, logs, 3)
	assert.Equal(t, zapcore.InfoLevel, logs[0].Level)
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs[2].Level)
	assert.Equal(t, "req-77", logs[0].ContextMap()["request_id"])
	assert.Equal(t, "x=1", logs[1].ContextMap()["query"])
}

func TestGinMiddleware_ContextLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-5")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/session", func(c *gin.Context) {
		L(c.Request.Context()).Info("from handler")
		assert.NotNil(t, GetGinLogger(c))
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/session", nil))

	logs := recorded.FilterMessage("from handler").All()
	require.Len(t, logs, 1)
	assert.Equal(t, "req-5", logs[0].ContextMap()["request_id"])
	assert.Equal(t, "/session", logs[0].ContextMap()["path"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Len(t, recorded.FilterMessage("Panic recovered").All(), 1)
}

func TestGetGinLogger_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
