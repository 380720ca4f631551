package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"github.com/chatpp/relay/common"
	"github.com/chatpp/relay/common/client"
	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/common/logger"
	"github.com/chatpp/relay/middleware"
	"github.com/chatpp/relay/model"
	"github.com/chatpp/relay/router"
)

func main() {
	logger.Logger.Info("chatpp relay started")

	if os.Getenv("GIN_MODE") != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := common.InitRedisClient(); err != nil {
		logger.Logger.Fatal("failed to initialize Redis", zap.Error(err))
	}
	model.InitStore()
	if err := model.InitAuditDB(); err != nil {
		logger.Logger.Fatal("failed to initialize audit log", zap.Error(err))
	}
	client.Init()

	logLevel := glog.LevelInfo
	if config.DebugEnabled {
		logLevel = glog.LevelDebug
	}

	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logLevel.String()),
			gmw.WithLogger(logger.Logger.Named("gin")),
		),
	)
	// Response compression would buffer streamed chunks; only the status route
	// opts into gzip inside the router.
	server.Use(middleware.RequestId())

	router.SetRouter(server)

	srv := &http.Server{
		Addr:    ":" + config.ServerPort,
		Handler: server,
	}

	go func() {
		logger.Logger.Info("listening", zap.String("port", config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Logger.Info("shutting down")

	// In-flight streams get a grace window; detached charge commits are quick
	// and finish well inside it.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Logger.Info("server exited")
}
