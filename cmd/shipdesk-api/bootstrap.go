package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/ShipDesk/config"
	"github.com/BearBump/ShipDesk/internal/broker/kafka"
	"github.com/BearBump/ShipDesk/internal/cache/rediscache"
	"github.com/BearBump/ShipDesk/internal/services/leads"
	"github.com/BearBump/ShipDesk/internal/services/shipments"
	"github.com/BearBump/ShipDesk/internal/storage/pgshipments"
	"github.com/BearBump/ShipDesk/internal/tracknum"
)

type shipDeskAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     shipDeskAPIOpts
	shipSvc  *shipments.Service
	leadSvc  *leads.Service
	limiter  *rediscache.RateLimiter
	consumer *kafka.Consumer
	closeDB  func()
}

func mustBootstrapShipDeskAPI() *shipDeskAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		swaggerPath = "api/swagger.json"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	httpAddr := cfg.ShipDesk.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.ShipDesk.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "shipdesk-api"
	}
	statusTopic := cfg.Kafka.StatusChangedTopicName
	if statusTopic == "" {
		statusTopic = "shipment.status.changed"
	}
	updatesTopic := cfg.Kafka.CarrierUpdatesTopicName
	if updatesTopic == "" {
		updatesTopic = "carrier.updates"
	}
	rateLimit := cfg.ShipDesk.RateLimitPerMinute
	if rateLimit <= 0 {
		rateLimit = 120
	}

	cacheTTL := time.Duration(cfg.ShipDesk.CurrentShipmentTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}

	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
	st := mustOpenPostgresWithRetry(connString, 60*time.Second)

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	rc := rediscache.New(redisAddr)
	limiter := rediscache.NewRateLimiter(redisAddr)

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	producer := kafka.NewProducer(brokers)
	consumer := kafka.NewConsumer(brokers, updatesTopic, consumerGroup)

	shipSvc := shipments.New(st, tracknum.New(), rc, producer, statusTopic, cacheTTL)
	leadSvc := leads.New(st, tracknum.New())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &shipDeskAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: shipDeskAPIOpts{
			httpAddr:      httpAddr,
			swaggerPath:   swaggerPath,
			topic:         updatesTopic,
			consumerGroup: consumerGroup,
			rateLimit:     rateLimit,
		},
		shipSvc:  shipSvc,
		leadSvc:  leadSvc,
		limiter:  limiter,
		consumer: consumer,
		closeDB:  st.Close,
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgshipments.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgshipments.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *shipDeskAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.consumer != nil {
		_ = a.consumer.Close()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}

func (a *shipDeskAPIApp) Run() error {
	return runShipDeskAPI(a.ctx, a.opts, a.shipSvc, a.leadSvc, a.limiter, a.consumer)
}
