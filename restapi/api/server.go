package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/airportinternet/airport/conn"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// DefaultHttpApiPort is the port on which the status API of a running connector listens
const DefaultHttpApiPort = 28200

// Controller is the part of a connector the API exposes.
type Controller interface {
	Status() conn.Status
	FullLog() string
	Stop() error
}

// NewRouter creates the gin engine serving the API of c and its swagger UI. Connector metrics are registered
// with reg and exposed on /metrics.
func NewRouter(c Controller, reg *prometheus.Registry) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(log.StandardLogger()), gin.Recovery())

	v1 := router.Group("/api/v1")
	registerRoutes(v1, c)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if reg != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	return router
}

// Serve runs the API on 127.0.0.1:port until ctx is done.
func Serve(ctx context.Context, port int, c Controller) error {
	reg := prometheus.NewRegistry()
	conn.MustRegisterMetrics(reg)

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: NewRouter(c, reg),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("status api did not shut down cleanly")
		}
	}()

	log.WithField("port", port).Info("status api up")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("Serve: failed to start http server: %w", err)
	}
	return nil
}
