package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-social-graph/internal/core/config"
	"go-gin-social-graph/internal/core/logger"
)

// NewRouter returns a bare engine with CORS applied. No origins means any
// origin, without credentials.
func NewRouter(origins []string) *gin.Engine {
	r := gin.New()
	cc := cors.DefaultConfig()
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "X-Request-ID")
	cc.ExposeHeaders = []string{"X-Request-ID"}
	cc.MaxAge = 12 * time.Hour
	r.Use(cors.New(cc))
	return r
}

func StartHTTP(srv *http.Server, l *zap.Logger) error {
	l.Info("http starting", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}

// BuildServer applies the http section of the config; net/http's own error
// log goes to l.
func BuildServer(h config.HTTP, handler http.Handler, l *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:           Addr(h.Host, h.Port),
		Handler:        handler,
		ReadTimeout:    time.Duration(h.ReadTimeoutSec) * time.Second,
		WriteTimeout:   time.Duration(h.WriteTimeoutSec) * time.Second,
		IdleTimeout:    time.Duration(h.IdleTimeoutSec) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	if std, err := logger.ToStdLogger(l, zapcore.WarnLevel); err == nil {
		srv.ErrorLog = std
	}
	return srv
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
