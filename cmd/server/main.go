package main

import (
	"context"
	"log"
	"time"

	"commerce-core/internal/config"
	httpctl "commerce-core/internal/controllers/http"
	"commerce-core/internal/infra"
	mmysql "commerce-core/internal/infra/mysql"
	"commerce-core/internal/infra/rabbitmq"
	"commerce-core/internal/metrics"
	mysqlrepo "commerce-core/internal/repository/mysql"
	"commerce-core/internal/services"
	"commerce-core/internal/shipping"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	cfg := config.FromEnv()

	db, err := mmysql.New(cfg.MySQL)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	cartRepo := mysqlrepo.NewCartRepository(db)
	zoneRepo := mysqlrepo.NewZoneRepository(db)

	carrierClient := infra.NewCarrierClient(cfg.CarrierBaseURL, cfg.CarrierAPIKey, cfg.CarrierTimeout)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.Exchange)
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	resolver := shipping.NewResolver(zoneRepo, carrierClient, cfg.OriginPostalCode, cfg.DomesticCountryCode)

	s := services.NewOrderService(orderRepo, cartRepo, resolver, carrierClient, publisher, cfg)
	s.SetMetrics(metrics.NewOrderMetrics())

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	s.SetRedisClient(redisClient)
	resolver.SetRedisClient(redisClient)

	scheduler := services.NewScheduler(s, orderRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler.Start(ctx)

	handler := httpctl.NewHandler(s, scheduler, resolver)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	log.Printf("Starting commerce core on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
