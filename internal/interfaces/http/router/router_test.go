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
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("import", "/import")
	group.GET("/configs", func(c *gin.Context) {
		c.String(http.StatusOK, "configs")
	})

	r.Register(group).Setup()

	w := serve(engine, "GET", "/api/v1/import/configs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "configs", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("exposes name and prefix", func(t *testing.T) {
		g := NewDomainGroup("receiving", "/receiving")
		assert.Equal(t, "receiving", g.Name())
		assert.Equal(t, "/receiving", g.Prefix())
	})

	t.Run("mounts every declared method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("receiving", "/receiving")
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }
		g.GET("/transfers", ok).
			POST("/transfers", ok).
			PUT("/transfers/:id", ok).
			PATCH("/transfers/:id", ok).
			DELETE("/transfers/:id", ok)

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		for _, method := range []string{"GET", "POST"} {
			w := serve(engine, method, "/api/v1/receiving/transfers")
			assert.Equal(t, http.StatusOK, w.Code, method)
		}
		for _, method := range []string{"PUT", "PATCH", "DELETE"} {
			w := serve(engine, method, "/api/v1/receiving/transfers/123")
			assert.Equal(t, http.StatusOK, w.Code, method)
		}
	})

	t.Run("applies group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("import", "/import")
		g.Use(func(c *gin.Context) {
			c.Header("X-Marked", "yes")
			c.Next()
		})
		g.GET("/unmatched", func(c *gin.Context) { c.Status(http.StatusOK) })

		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, "GET", "/api/v1/import/unmatched")
		assert.Equal(t, "yes", w.Header().Get("X-Marked"))
	})

	t.Run("mounts subgroups under the parent prefix", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("import", "/import")
		configs := g.Group("configs", "/configs")
		configs.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "configs")
		})

		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, "GET", "/api/v1/import/configs")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "configs", w.Body.String())
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/products", func(c *gin.Context) {
		c.String(http.StatusOK, "products")
	})

	partner := NewDomainGroup("partner", "/partner")
	partner.GET("/suppliers", func(c *gin.Context) {
		c.String(http.StatusOK, "suppliers")
	})

	r.Register(catalog).Register(partner)
	r.Setup()

	w := serve(engine, "GET", "/api/v1/catalog/products")
	assert.Equal(t, "products", w.Body.String())

	w = serve(engine, "GET", "/api/v1/partner/suppliers")
	assert.Equal(t, "suppliers", w.Body.String())
}
