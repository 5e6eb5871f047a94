package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/BearBump/ShipDesk/internal/api/shipdesk_api"
	"github.com/BearBump/ShipDesk/internal/apperr"
	"github.com/BearBump/ShipDesk/internal/broker/messages"
	"github.com/BearBump/ShipDesk/internal/services/leads"
	"github.com/BearBump/ShipDesk/internal/services/shipments"
)

type shipDeskAPIOpts struct {
	httpAddr    string
	swaggerPath string

	topic         string
	consumerGroup string

	rateLimit int64

	onListen func(httpAddr string)
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

func runShipDeskAPI(ctx context.Context, opts shipDeskAPIOpts, shipSvc *shipments.Service, leadSvc *leads.Service, limiter shipdesk_api.Limiter, consumer kafkaConsumer) error {
	if opts.swaggerPath == "" {
		return fmt.Errorf("swaggerPath env var is required")
	}
	if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
		return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
	}

	r := shipdesk_api.Router(shipSvc, leadSvc, limiter, opts.rateLimit)
	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, opts.swaggerPath)
	})
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger.json"),
	))

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	go func() {
		slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
		_ = consumer.Consume(ctx, func(_key, value []byte) error {
			var m messages.CarrierUpdate
			if err := json.Unmarshal(value, &m); err != nil {
				return err
			}
			_, err := shipSvc.ApplyCarrierUpdate(ctx, m)
			// обновления по неизвестным номерам пропускаем, офсет коммитим
			if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidInput) {
				slog.Warn("carrier update skipped", "tracking_number", m.TrackingNumber, "err", err)
				return nil
			}
			return err
		})
	}()

	srv := &http.Server{Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
