package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-gin-social-graph/internal/core/config"
	"go-gin-social-graph/internal/core/server"
	"go-gin-social-graph/internal/transport/http/ez"
	mdw "go-gin-social-graph/internal/transport/http/middleware"
	resp "go-gin-social-graph/internal/transport/http/response"
)

type Deps struct {
	Log      *zap.Logger
	HTTP     config.HTTP
	Verifier mdw.TokenVerifier
	// Ready reports whether backing stores answer; nil means always ready.
	Ready   func(ctx context.Context) error
	Modules []Module
}

func NewAPIEngine(d Deps) *gin.Engine {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	r := server.NewRouter(d.HTTP.CORSOrigins)

	mws := []gin.HandlerFunc{mdw.RequestID(), mdw.Recovery(l)}
	if d.HTTP.MaxConcurrent > 0 {
		mws = append(mws, mdw.ConcurrencyLimit(d.HTTP.MaxConcurrent))
	}
	if d.HTTP.MaxBodyMB > 0 {
		mws = append(mws, mdw.MaxBodyBytes(d.HTTP.MaxBodyMB<<20))
	}
	if t := d.HTTP.RequestTimeout(); t > 0 {
		mws = append(mws, mdw.Timeout(t))
	}
	mws = append(mws, mdw.Metrics(), mdw.AccessLog(l))
	r.Use(mws...)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error(http.StatusNotFound, "route not found"))
	})

	r.GET("/health", func(c *gin.Context) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				l.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, resp.Error(http.StatusServiceUnavailable, "unhealthy"))
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK("", gin.H{"ok": 1}))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var authn gin.HandlerFunc
	if d.Verifier != nil {
		authn = mdw.Authenticate(d.Verifier)
	}
	MountAll(ez.New(r.Group("/api/v1"), l, authn), d.Modules...)
	return r
}
