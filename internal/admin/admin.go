// Package admin wires the optional health/metrics HTTP surface. It is
// purely ambient observability, not part of the aggregation pipeline:
// the gRPC service keeps working whether or not this is enabled.
package admin

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	_ "github.com/keyrock-quant/obagg/docs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router serves /healthz, /metrics, and /swagger/*any.
type Router struct {
	ready atomic.Bool
	*gin.Engine
}

// NewRouter builds the admin router. Marking the service ready is the
// caller's job, the router starts out unready so a process that wires
// this up before its first merge reports 503 honestly.
func NewRouter() *Router {
	r := &Router{Engine: gin.New()}
	r.Use(gin.Recovery())

	r.GET("/healthz", r.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// MarkReady flips /healthz to 200. Called once the aggregator has
// completed its first merge.
func (r *Router) MarkReady() {
	r.ready.Store(true)
}

func (r *Router) healthz(c *gin.Context) {
	if !r.ready.Load() {
		c.String(http.StatusServiceUnavailable, "not ready")
		return
	}
	c.String(http.StatusOK, "ok")
}
