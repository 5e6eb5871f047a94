package shipments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/BearBump/ShipDesk/internal/apperr"
	"github.com/BearBump/ShipDesk/internal/broker/messages"
	"github.com/BearBump/ShipDesk/internal/cache"
	"github.com/BearBump/ShipDesk/internal/models"
	"github.com/BearBump/ShipDesk/internal/storage/pgshipments"
	"github.com/BearBump/ShipDesk/internal/tracknum"
	"github.com/pkg/errors"
)

// Сколько событий отдаём в полной истории отправления.
const maxHistory = 500

type Repository interface {
	TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error)
	CreateShipment(ctx context.Context, trackingNumber string, in models.ShipmentCreateInput) (*models.Shipment, error)
	GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	ListTrackingEvents(ctx context.Context, shipmentID uint64, limit, offset int) ([]*models.TrackingEvent, error)
	UpdateShipmentStatus(ctx context.Context, trackingNumber string, ch pgshipments.StatusChange) (*models.Shipment, error)
	ListShipments(ctx context.Context, f pgshipments.ShipmentFilter) ([]*pgshipments.ShipmentListItem, int, error)
	DeleteShipment(ctx context.Context, trackingNumber string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Service struct {
	repo        Repository
	alloc       tracknum.Allocator
	cache       cache.BytesCache
	producer    Producer
	statusTopic string
	currentTTL  time.Duration
}

func New(repo Repository, alloc tracknum.Allocator, c cache.BytesCache, producer Producer, statusTopic string, currentTTL time.Duration) *Service {
	return &Service{
		repo:        repo,
		alloc:       alloc,
		cache:       c,
		producer:    producer,
		statusTopic: statusTopic,
		currentTTL:  currentTTL,
	}
}

// CreateShipment выделяет трек-номер и создаёт отправление в статусе
// PENDING. Проверка аллокатора вероятностная: настоящая гарантия — уникальный
// индекс, поэтому проигранную гонку на вставке (unique violation) лечим
// повторной аллокацией в пределах того же бюджета попыток.
func (s *Service) CreateShipment(ctx context.Context, in models.ShipmentCreateInput) (*models.Shipment, error) {
	for attempt := 0; attempt < s.alloc.MaxAttempts(); attempt++ {
		trackingNumber, err := s.alloc.Allocate(ctx, s.repo.TrackingNumberExists)
		if err != nil {
			return nil, err
		}

		created, err := s.repo.CreateShipment(ctx, trackingNumber, in)
		if err == nil {
			s.refreshCache(ctx, created)
			return created, nil
		}
		if !pgshipments.IsUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, apperr.ErrAllocationExhausted
}

// UpdateStatus — переход статуса: апдейт отправления и событие аудита одной
// транзакцией (в хранилище). После коммита — best-effort обновление кэша и
// публикация shipment.status.changed.
func (s *Service) UpdateStatus(ctx context.Context, trackingNumber string, in models.StatusUpdateInput) (*models.Shipment, error) {
	if trackingNumber == "" {
		return nil, errors.Wrap(apperr.ErrInvalidInput, "trackingNumber is required")
	}
	if !models.IsShipmentStatus(in.Status) {
		return nil, errors.Wrapf(apperr.ErrInvalidInput, "unknown status %q", in.Status)
	}
	if in.Description == "" {
		return nil, errors.Wrap(apperr.ErrInvalidInput, "description is required")
	}

	effective := time.Now().UTC()
	if in.Timestamp != nil {
		effective = in.Timestamp.UTC()
	}

	updated, err := s.repo.UpdateShipmentStatus(ctx, trackingNumber, pgshipments.StatusChange{
		Status:      in.Status,
		Description: in.Description,
		Location:    in.Location,
		EffectiveAt: effective,
	})
	if err != nil {
		return nil, err
	}

	s.refreshCache(ctx, updated)
	s.publishStatusChanged(ctx, updated, in, effective)

	return updated, nil
}

// GetShipment возвращает отправление и полную историю, новые события
// первыми (по event_time, не по времени вставки).
func (s *Service) GetShipment(ctx context.Context, trackingNumber string) (*models.Shipment, []*models.TrackingEvent, error) {
	if trackingNumber == "" {
		return nil, nil, errors.Wrap(apperr.ErrInvalidInput, "trackingNumber is required")
	}

	sh, ok := s.cachedShipment(ctx, trackingNumber)
	if !ok {
		var err error
		sh, err = s.repo.GetShipmentByTrackingNumber(ctx, trackingNumber)
		if err != nil {
			return nil, nil, err
		}
		s.refreshCache(ctx, sh)
	}

	evs, err := s.repo.ListTrackingEvents(ctx, sh.ID, maxHistory, 0)
	if err != nil {
		return nil, nil, err
	}
	return sh, evs, nil
}

type Pagination struct {
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// ListShipments — страница отправлений под фильтрами, каждая строка с самым
// свежим событием. page/limit по умолчанию 1/20.
func (s *Service) ListShipments(ctx context.Context, userID *uint64, status *string, page, limit int) ([]*pgshipments.ShipmentListItem, Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if status != nil && !models.IsShipmentStatus(*status) {
		return nil, Pagination{}, errors.Wrapf(apperr.ErrInvalidInput, "unknown status %q", *status)
	}

	items, total, err := s.repo.ListShipments(ctx, pgshipments.ShipmentFilter{
		UserID: userID,
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, Pagination{}, err
	}

	return items, Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *Service) DeleteShipment(ctx context.Context, trackingNumber string) error {
	if trackingNumber == "" {
		return errors.Wrap(apperr.ErrInvalidInput, "trackingNumber is required")
	}
	if err := s.repo.DeleteShipment(ctx, trackingNumber); err != nil {
		return err
	}
	if s.cache != nil && s.currentTTL > 0 {
		_ = s.cache.Del(ctx, currentKey(trackingNumber))
	}
	return nil
}

// ApplyCarrierUpdate применяет обновление, пришедшее из kafka от
// ретранслятора вебхуков перевозчика. Семантика та же, что у UpdateStatus.
func (s *Service) ApplyCarrierUpdate(ctx context.Context, msg messages.CarrierUpdate) (*models.Shipment, error) {
	if msg.TrackingNumber == "" {
		return nil, errors.Wrap(apperr.ErrInvalidInput, "tracking_number is required")
	}
	description := msg.Description
	if description == "" {
		description = "Carrier update"
	}
	return s.UpdateStatus(ctx, msg.TrackingNumber, models.StatusUpdateInput{
		Status:      msg.Status,
		Description: description,
		Location:    msg.Location,
		Timestamp:   msg.Timestamp,
	})
}

func (s *Service) cachedShipment(ctx context.Context, trackingNumber string) (*models.Shipment, bool) {
	if s.cache == nil || s.currentTTL <= 0 {
		return nil, false
	}
	b, ok, err := s.cache.Get(ctx, currentKey(trackingNumber))
	if err != nil || !ok {
		return nil, false
	}
	var sh models.Shipment
	if json.Unmarshal(b, &sh) != nil {
		return nil, false
	}
	return &sh, true
}

func (s *Service) refreshCache(ctx context.Context, sh *models.Shipment) {
	if s.cache == nil || s.currentTTL <= 0 {
		return
	}
	b, _ := json.Marshal(sh)
	_ = s.cache.Set(ctx, currentKey(sh.TrackingNumber), b, s.currentTTL)
}

func (s *Service) publishStatusChanged(ctx context.Context, sh *models.Shipment, in models.StatusUpdateInput, effective time.Time) {
	if s.producer == nil || s.statusTopic == "" {
		return
	}
	b, _ := json.Marshal(messages.ShipmentStatusChanged{
		TrackingNumber: sh.TrackingNumber,
		Status:         sh.Status,
		Description:    in.Description,
		Location:       in.Location,
		Timestamp:      effective,
		ActualDelivery: sh.ActualDelivery,
	})
	if err := s.producer.Publish(ctx, s.statusTopic, []byte(sh.TrackingNumber), b); err != nil {
		// Статус уже закоммичен; событие шины не должно откатывать вызов.
		slog.Warn("publish status changed failed", "tracking_number", sh.TrackingNumber, "err", err)
	}
}

func currentKey(trackingNumber string) string {
	return fmt.Sprintf("shipment:%s:current", trackingNumber)
}
