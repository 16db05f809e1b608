package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/mahin-dev/catalog-console/internal/handlers"
)

// CORSMiddleware lets the browser console (a separate origin during
// development) talk to this API.
func CORSMiddleware() gin.HandlerFunc {
	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware())

	v1 := router.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Product listing & editor ---
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/export", h.ExportProducts)
		v1.POST("/products", h.CreateProduct)
		v1.GET("/products/:id", h.GetProduct)
		v1.PUT("/products/:id", h.UpdateProduct)
		v1.DELETE("/products/:id", h.DeleteProduct)

		// --- Reference option lists ---
		v1.GET("/reference/:kind", h.ListReference)
	}

	return router
}
