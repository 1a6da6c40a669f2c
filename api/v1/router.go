package v1

import (
	"go_productlabel/api/v1/labels"
	"go_productlabel/api/v1/middleware"
	"go_productlabel/internal/auth"
	"go_productlabel/internal/httpx"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Deps holds what the API v1 routes need
type Deps struct {
	Products labels.ProductFinder
	Labels   labels.LabelService
	Verifier *auth.Verifier
	Gatherer prometheus.Gatherer
	Logger   *logrus.Entry
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, deps *Deps) {
	r.Use(middleware.RequestID(), middleware.AccessLog(deps.Logger.WithField("component", "http")))

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", pingHandler)

		labelsHandler := labels.NewHandler(deps.Products, deps.Labels)
		labelsGroup := v1.Group("/labels")
		{
			labelsGroup.GET("/product/:id", labelsHandler.Product)
			labelsGroup.GET("/category", labelsHandler.Category)

			// Protected routes (authentication required)
			labelsGroup.POST("/cache/flush", middleware.AuthRequired(deps.Verifier), labelsHandler.Flush)
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}
