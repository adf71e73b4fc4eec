package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	routes := r.Register(group).Setup()

	assert.Equal(t, []RouteInfo{{Group: "test", Method: http.MethodGet, Path: "/api/v1/test/ping"}}, routes)
	w := serve(engine, http.MethodGet, "/api/v1/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterWithMiddleware(t *testing.T) {
	engine := gin.New()
	var calls []string
	r := NewRouter(engine, WithMiddleware(func(c *gin.Context) {
		calls = append(calls, "api")
		c.Next()
	}))

	group := NewDomainGroup("test", "/test").Use(func(c *gin.Context) {
		calls = append(calls, "group")
		c.Next()
	})
	group.GET("/ping", func(c *gin.Context) {
		calls = append(calls, "handler")
		c.Status(http.StatusOK)
	})
	r.Register(group).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"api", "group", "handler"}, calls)

	// outside the versioned group
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	calls = nil
	serve(engine, http.MethodGet, "/health")
	assert.Empty(t, calls)
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("cash", "/cash")
		assert.Equal(t, "cash", g.Name())
		assert.Equal(t, "/cash", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		g := NewDomainGroup("test", "/test")
		g.GET("/items", ok)
		g.POST("/items", ok)
		g.PUT("/items/:id", ok)
		g.DELETE("/items/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		for _, tc := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/test/items"},
			{http.MethodPost, "/api/v1/test/items"},
			{http.MethodPut, "/api/v1/test/items/1"},
			{http.MethodDelete, "/api/v1/test/items/1"},
		} {
			w := serve(engine, tc.method, tc.path)
			assert.Equal(t, http.StatusOK, w.Code, tc.method)
			assert.Equal(t, tc.method, w.Body.String())
		}
	})

	t.Run("registers subgroups under the parent prefix", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("tellers", "/tellers")
		g.Group("assignments", "/assignments").GET("/me", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		routes := g.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/tellers/assignments/me").Code)
		assert.Equal(t, []RouteInfo{{Group: "assignments", Method: http.MethodGet, Path: "/api/v1/tellers/assignments/me"}}, routes)
	})
}
