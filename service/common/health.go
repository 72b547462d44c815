package common

import (
	"fmt"
	"net/http"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"
)

type HealthCheckArgs struct {
	HealthPort uint `arg:"--health-port,env:HEALTH_PORT" default:"8082"`
}

// StartHealthCheckServer exposes liveness/readiness endpoints. The registry
// holds everything in memory, so liveness is the only meaningful signal.
func StartHealthCheckServer(port uint) {
	health := healthcheck.NewHandler()
	go func() {
		err := http.ListenAndServe(fmt.Sprintf(":%d", port), health)
		if err != nil {
			zap.L().Fatal("health check server stopped unexpectedly", zap.Error(err))
		}
	}()
}
