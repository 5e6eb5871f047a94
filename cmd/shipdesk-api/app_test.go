package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BearBump/ShipDesk/internal/broker/messages"
	"github.com/BearBump/ShipDesk/internal/models"
	"github.com/BearBump/ShipDesk/internal/services/leads"
	"github.com/BearBump/ShipDesk/internal/services/shipments"
	"github.com/BearBump/ShipDesk/internal/storage/pgshipments"
	"github.com/BearBump/ShipDesk/internal/tracknum"
)

type fakeRepo struct {
	mu      sync.Mutex
	updates []pgshipments.StatusChange
}

func (r *fakeRepo) TrackingNumberExists(ctx context.Context, tn string) (bool, error) {
	return false, nil
}
func (r *fakeRepo) CreateShipment(ctx context.Context, tn string, in models.ShipmentCreateInput) (*models.Shipment, error) {
	return &models.Shipment{ID: 1, TrackingNumber: tn, Status: models.ShipmentStatusPending}, nil
}
func (r *fakeRepo) GetShipmentByTrackingNumber(ctx context.Context, tn string) (*models.Shipment, error) {
	return &models.Shipment{ID: 1, TrackingNumber: tn, Status: models.ShipmentStatusPending}, nil
}
func (r *fakeRepo) ListTrackingEvents(ctx context.Context, shipID uint64, limit, offset int) ([]*models.TrackingEvent, error) {
	return nil, nil
}
func (r *fakeRepo) UpdateShipmentStatus(ctx context.Context, tn string, ch pgshipments.StatusChange) (*models.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, ch)
	return &models.Shipment{ID: 1, TrackingNumber: tn, Status: ch.Status}, nil
}
func (r *fakeRepo) ListShipments(ctx context.Context, f pgshipments.ShipmentFilter) ([]*pgshipments.ShipmentListItem, int, error) {
	return nil, 0, nil
}
func (r *fakeRepo) DeleteShipment(ctx context.Context, tn string) error { return nil }

func (r *fakeRepo) CreateLead(ctx context.Context, in models.LeadCreateInput) (*models.Lead, error) {
	return &models.Lead{ID: 1, Name: in.Name, Contact: in.Contact, Status: models.LeadStatusNew}, nil
}
func (r *fakeRepo) GetLead(ctx context.Context, id uint64) (*models.Lead, error) {
	return &models.Lead{ID: id, Status: models.LeadStatusNew}, nil
}
func (r *fakeRepo) UpdateLeadStatus(ctx context.Context, id uint64, status string) (*models.Lead, error) {
	return &models.Lead{ID: id, Status: status}, nil
}
func (r *fakeRepo) ConvertLead(ctx context.Context, leadID uint64, tn string, in models.ShipmentCreateInput) (*models.Shipment, error) {
	return &models.Shipment{ID: 1, TrackingNumber: tn, Status: models.ShipmentStatusPending}, nil
}

func (r *fakeRepo) statusUpdates() []pgshipments.StatusChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pgshipments.StatusChange(nil), r.updates...)
}

// fakeConsumer отдаёт одно сообщение и висит до отмены контекста.
type fakeConsumer struct {
	value []byte
}

func (c fakeConsumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	if c.value != nil {
		if err := handler(nil, c.value); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunShipDeskAPI_SwaggerAndHealth(t *testing.T) {
	dir := t.TempDir()
	sw := filepath.Join(dir, "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))

	repo := &fakeRepo{}
	shipSvc := shipments.New(repo, tracknum.New(), nil, nil, "shipment.status.changed", 0)
	leadSvc := leads.New(repo, tracknum.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	opts := shipDeskAPIOpts{
		httpAddr:      "127.0.0.1:0",
		swaggerPath:   sw,
		topic:         "carrier.updates",
		consumerGroup: "g",
		rateLimit:     100,
		onListen:      func(addr string) { addrCh <- addr },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- runShipDeskAPI(ctx, opts, shipSvc, leadSvc, nil, fakeConsumer{})
	}()

	addr := <-addrCh

	resp, err := http.Get("http://" + addr + "/swagger.json")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	require.Contains(t, string(body), "\"swagger\"")

	resp, err = http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	cancel()
	require.Error(t, <-errCh)
}

func TestRunShipDeskAPI_ConsumerAppliesCarrierUpdate(t *testing.T) {
	dir := t.TempDir()
	sw := filepath.Join(dir, "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))

	repo := &fakeRepo{}
	shipSvc := shipments.New(repo, tracknum.New(), nil, nil, "shipment.status.changed", 0)
	leadSvc := leads.New(repo, tracknum.New())

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg, err := json.Marshal(messages.CarrierUpdate{
		TrackingNumber: "TN0000000001",
		Status:         models.ShipmentStatusInTransit,
		Description:    "Departed facility",
		Timestamp:      &at,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	opts := shipDeskAPIOpts{
		httpAddr:      "127.0.0.1:0",
		swaggerPath:   sw,
		topic:         "carrier.updates",
		consumerGroup: "g",
		rateLimit:     100,
		onListen:      func(addr string) { addrCh <- addr },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- runShipDeskAPI(ctx, opts, shipSvc, leadSvc, nil, fakeConsumer{value: msg})
	}()

	<-addrCh

	require.Eventually(t, func() bool {
		return len(repo.statusUpdates()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	upd := repo.statusUpdates()[0]
	require.Equal(t, models.ShipmentStatusInTransit, upd.Status)
	require.Equal(t, "Departed facility", upd.Description)
	require.True(t, upd.EffectiveAt.Equal(at))

	cancel()
	require.Error(t, <-errCh)
}
