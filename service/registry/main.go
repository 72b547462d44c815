package main

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"skema/manager"
	"skema/registry"
	"skema/scache"
	"skema/service/common"
)

var totalRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Number of incoming HTTP requests.",
	},
	[]string{"path"},
)

var responseStatus = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "response_status",
		Help: "Status of HTTP response",
	},
	[]string{"path", "status"},
)

var httpDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
	Name: "http_response_time_seconds",
	Help: "Duration of HTTP requests.",
	// Track quantiles within small error
	Objectives: map[float64]float64{
		0.25: 0.05,
		0.50: 0.05,
		0.75: 0.05,
		0.90: 0.05,
		0.95: 0.02,
		0.99: 0.01,
	},
}, []string{"path"})

// response writer to capture status code from header.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func prometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := mux.CurrentRoute(r)
		path, _ := route.GetPathTemplate()
		totalRequests.WithLabelValues(path).Inc()
		timer := prometheus.NewTimer(httpDuration.WithLabelValues(path))
		rw := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(rw, r)
		timer.ObserveDuration()
		responseStatus.WithLabelValues(path, strconv.Itoa(rw.statusCode)).Inc()
	})
}

type serverArgs struct {
	manager.Args
	common.PrometheusArgs
	common.HealthCheckArgs

	Port uint `arg:"--port,env:PORT" default:"2425"`
	Dev  bool `arg:"--dev" default:"false"`
}

func main() {
	var flags serverArgs
	arg.MustParse(&flags)

	var logger *zap.Logger
	var err error
	if flags.Dev {
		logger, err = zap.NewDevelopment()
	} else {
		config := zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		logger, err = config.Build(
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
		)
	}
	if err != nil {
		panic(fmt.Errorf("failed to construct logger: %v", err))
	}
	_ = zap.ReplaceGlobals(logger)

	mgr, err := manager.CreateFromArgs(&flags.Args)
	if err != nil {
		logger.Fatal("failed to create schema manager", zap.Error(err))
	}
	defer mgr.Close()
	reg := registry.New(mgr, logger)

	common.StartPromMetricsServer(flags.MetricsPort)
	common.StartHealthCheckServer(flags.HealthPort)
	common.StartPprofServer()

	// Publish cache gauges on a fixed cadence; prometheus pulls them from
	// the metrics port.
	go func() {
		for range time.Tick(10 * time.Second) {
			scache.RecordStats("schema", mgr.Cache())
		}
	}()

	router := mux.NewRouter()
	router.Use(prometheusMiddleware)
	controller := server{reg: reg, mgr: mgr}
	controller.setHandlers(router)

	addr := fmt.Sprintf(":%d", flags.Port)
	logger.Info("starting schema registry service", zap.String("addr", addr))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}
	if err = http.Serve(l, router); err != http.ErrServerClosed {
		log.Fatalf("Serve(): %v", err)
	}
}
