package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"webtraffic/config"
	"webtraffic/handler"
	"webtraffic/middleware"
	"webtraffic/repository"
	"webtraffic/services"
	"webtraffic/usecase"
	"webtraffic/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("No .env file found: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	utils.InitValidator()
}

func setupRouter(tracker *usecase.SessionTracker, analytics *handler.AnalyticsHandler, mongoClient *mongo.Client) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestSizeLimiter(64 * 1024))

	api := router.Group("/api")
	{
		api.POST("/track", func(c *gin.Context) {
			handler.TrackSessionHandler(c, tracker)
		})

		api.POST("/analytics", analytics.GetAnalytics)
		api.GET("/analytics",
			middleware.CacheControlMiddleware("30"),
			analytics.GetAnalytics)

		api.GET("/health", func(c *gin.Context) {
			handler.HealthCheck(c, mongoClient)
		})
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func main() {
	dbCfg := config.LoadDatabaseConfig()
	trkCfg := config.LoadTrackingConfig()

	var store usecase.SessionStore
	var mongoClient *mongo.Client

	switch trkCfg.StoreDriver {
	case "memory":
		log.Println("Using in-memory session store")
		store = repository.NewMemorySessionRepo()
	default:
		utils.InitMongoClient(dbCfg.ClientOptions())
		mongoClient = utils.MongoClient
		if err := repository.SetupIndexes(
			mongoClient.Database(dbCfg.DatabaseName),
			dbCfg.Collection,
			trkCfg.RetentionDays,
		); err != nil {
			log.Fatalf("Failed to set up indexes: %v", err)
		}
		store = repository.GetSessionRepo(mongoClient, dbCfg.DatabaseName, dbCfg.Collection)
	}

	var reportCache handler.ReportCache
	if trkCfg.RedisURL != "" {
		cache, err := services.NewReportCache(trkCfg.RedisURL, trkCfg.ReportCacheTTL)
		if err != nil {
			log.Fatalf("Failed to initialize report cache: %v", err)
		}
		reportCache = cache
	} else {
		log.Println("REDIS_URL not set, report caching disabled")
	}

	tracker := usecase.NewSessionTracker(store)
	analyticsService := usecase.NewAnalyticsService(store, trkCfg.RecentSessionsN)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, reportCache)

	router := setupRouter(tracker, analyticsHandler, mongoClient)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Traffic analytics server starting on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), trkCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if mongoClient != nil {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}

	log.Println("Server exiting.")
}
