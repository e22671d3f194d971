package main

import (
	"log"

	_ "khanmall/internal/domain/catalog"
	_ "khanmall/internal/domain/discount"
	_ "khanmall/internal/domain/order"
	_ "khanmall/internal/domain/payment"
	"khanmall/internal/pkg/config"
	"khanmall/internal/pkg/middleware"
	"khanmall/internal/pkg/registry"
	"khanmall/pkg/database"
	"khanmall/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	config.LoadConfig()

	logger.Init(config.GlobalConfig.Server.Mode)
	defer logger.Sync()

	db := database.InitDatabase()
	rdb := database.InitRedis()

	gin.SetMode(config.GlobalConfig.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.RateLimitMiddleware())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ctx := &registry.ModuleContext{
		DB:     db,
		Redis:  rdb,
		Router: r,
	}
	if err := registry.InitModules(ctx); err != nil {
		log.Fatalf("Failed to initialize modules: %v", err)
	}

	addr := ":" + config.GlobalConfig.Server.Port
	logger.Log.Sugar().Infof("Server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
