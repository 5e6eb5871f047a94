package pgshipments

import (
	"context"
	"time"

	"github.com/BearBump/ShipDesk/internal/apperr"
	"github.com/BearBump/ShipDesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const shipmentCols = `
  id, tracking_number, carrier, carrier_tracking_number,
  status, estimated_delivery, actual_delivery, user_id,
  created_at, updated_at`

// StatusChange — одна атомарная смена статуса: апдейт строки отправления и
// вставка события аудита в одной транзакции.
type StatusChange struct {
	Status      string
	Description string
	Location    *string
	EffectiveAt time.Time
}

func (s *Storage) TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shipments WHERE tracking_number = $1)`,
		trackingNumber).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "check tracking number")
	}
	return exists, nil
}

// CreateShipment вставляет отправление со статусом PENDING и синтетическое
// PENDING-событие одной транзакцией, чтобы инвариант "статус равен самому
// свежему событию" держался с момента создания.
// Нарушение уникальности tracking_number пробрасывается наверх как есть:
// сервис распознаёт его через IsUniqueViolation и повторяет аллокацию.
func (s *Storage) CreateShipment(ctx context.Context, trackingNumber string, in models.ShipmentCreateInput) (*models.Shipment, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := insertShipmentTx(ctx, tx, trackingNumber, in, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}

	return s.getShipmentByID(ctx, id)
}

// insertShipmentTx — общий путь создания для CreateShipment и ConvertLead.
func insertShipmentTx(ctx context.Context, tx pgx.Tx, trackingNumber string, in models.ShipmentCreateInput, now time.Time) (uint64, error) {
	var id uint64
	err := tx.QueryRow(ctx, `
INSERT INTO shipments (
  tracking_number, carrier, carrier_tracking_number, status,
  estimated_delivery, user_id, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
RETURNING id
`, trackingNumber, in.Carrier, in.CarrierTrackingNumber, models.ShipmentStatusPending,
		in.EstimatedDelivery, in.UserID, now).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert shipment")
	}

	_, err = tx.Exec(ctx, `
INSERT INTO tracking_events (shipment_id, status, description, event_time, created_at)
VALUES ($1,$2,$3,$4,$4)
`, id, models.ShipmentStatusPending, "Shipment created", now)
	if err != nil {
		return 0, errors.Wrap(err, "insert initial event")
	}

	return id, nil
}

func (s *Storage) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx,
		`SELECT`+shipmentCols+` FROM shipments WHERE tracking_number = $1`, trackingNumber)
	return scanShipment(row)
}

func (s *Storage) getShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx,
		`SELECT`+shipmentCols+` FROM shipments WHERE id = $1`, id)
	return scanShipment(row)
}

// UpdateShipmentStatus выполняет переход статуса: блокирует строку
// отправления (FOR UPDATE — конкурентные апдейты одного номера
// сериализуются), обновляет статус и пишет событие аудита. Либо обе записи,
// либо ни одной.
//
// actual_delivery выставляется при первом переходе в DELIVERED и дальше не
// очищается, даже если следом придёт RETURNED.
func (s *Storage) UpdateShipmentStatus(ctx context.Context, trackingNumber string, ch StatusChange) (*models.Shipment, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		id             uint64
		actualDelivery *time.Time
	)
	err = tx.QueryRow(ctx,
		`SELECT id, actual_delivery FROM shipments WHERE tracking_number = $1 FOR UPDATE`,
		trackingNumber).Scan(&id, &actualDelivery)
	if err == pgx.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "lock shipment")
	}

	if ch.Status == models.ShipmentStatusDelivered && actualDelivery == nil {
		_, err = tx.Exec(ctx, `
UPDATE shipments SET status = $2, actual_delivery = $3, updated_at = now() WHERE id = $1
`, id, ch.Status, ch.EffectiveAt.UTC())
	} else {
		_, err = tx.Exec(ctx, `
UPDATE shipments SET status = $2, updated_at = now() WHERE id = $1
`, id, ch.Status)
	}
	if err != nil {
		return nil, errors.Wrap(err, "update shipment status")
	}

	_, err = tx.Exec(ctx, `
INSERT INTO tracking_events (shipment_id, status, description, location, event_time, created_at)
VALUES ($1,$2,$3,$4,$5, now())
`, id, ch.Status, ch.Description, ch.Location, ch.EffectiveAt.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "insert tracking event")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}

	return s.getShipmentByID(ctx, id)
}

func (s *Storage) DeleteShipment(ctx context.Context, trackingNumber string) error {
	// События удаляются каскадом по FK.
	tag, err := s.db.Exec(ctx, `DELETE FROM shipments WHERE tracking_number = $1`, trackingNumber)
	if err != nil {
		return errors.Wrap(err, "delete shipment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

type ShipmentFilter struct {
	UserID *uint64
	Status *string
	Limit  int
	Offset int
}

// ShipmentListItem — строка списка: отправление плюс его самое свежее
// событие (для сводки, без полной истории).
type ShipmentListItem struct {
	Shipment  *models.Shipment
	LastEvent *models.TrackingEvent
}

// ListShipments возвращает страницу отправлений (created_at DESC) и общее
// число строк под фильтром.
func (s *Storage) ListShipments(ctx context.Context, f ShipmentFilter) ([]*ShipmentListItem, int, error) {
	var total int
	err := s.db.QueryRow(ctx, `
SELECT count(*) FROM shipments
WHERE ($1::bigint IS NULL OR user_id = $1)
  AND ($2::text IS NULL OR status = $2)
`, f.UserID, f.Status).Scan(&total)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count shipments")
	}

	rows, err := s.db.Query(ctx, `
SELECT
  s.id, s.tracking_number, s.carrier, s.carrier_tracking_number,
  s.status, s.estimated_delivery, s.actual_delivery, s.user_id,
  s.created_at, s.updated_at,
  e.id, e.status, e.description, e.location, e.event_time, e.created_at
FROM shipments s
LEFT JOIN LATERAL (
  SELECT id, status, description, location, event_time, created_at
  FROM tracking_events
  WHERE shipment_id = s.id
  ORDER BY event_time DESC
  LIMIT 1
) e ON true
WHERE ($1::bigint IS NULL OR s.user_id = $1)
  AND ($2::text IS NULL OR s.status = $2)
ORDER BY s.created_at DESC
LIMIT $3 OFFSET $4
`, f.UserID, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "select shipments")
	}
	defer rows.Close()

	var out []*ShipmentListItem
	for rows.Next() {
		var t models.Shipment
		var (
			evID        *uint64
			evStatus    *string
			evDesc      *string
			evLocation  *string
			evTime      *time.Time
			evCreatedAt *time.Time
		)
		if err := rows.Scan(
			&t.ID, &t.TrackingNumber, &t.Carrier, &t.CarrierTrackingNumber,
			&t.Status, &t.EstimatedDelivery, &t.ActualDelivery, &t.UserID,
			&t.CreatedAt, &t.UpdatedAt,
			&evID, &evStatus, &evDesc, &evLocation, &evTime, &evCreatedAt,
		); err != nil {
			return nil, 0, errors.Wrap(err, "scan shipment row")
		}

		item := &ShipmentListItem{Shipment: &t}
		if evID != nil {
			item.LastEvent = &models.TrackingEvent{
				ID:          *evID,
				ShipmentID:  t.ID,
				Status:      *evStatus,
				Description: *evDesc,
				Location:    evLocation,
				EventTime:   *evTime,
				CreatedAt:   *evCreatedAt,
			}
		}
		out = append(out, item)
	}
	if rows.Err() != nil {
		return nil, 0, errors.Wrap(rows.Err(), "rows")
	}
	return out, total, nil
}

func scanShipment(row pgx.Row) (*models.Shipment, error) {
	var t models.Shipment
	err := row.Scan(
		&t.ID, &t.TrackingNumber, &t.Carrier, &t.CarrierTrackingNumber,
		&t.Status, &t.EstimatedDelivery, &t.ActualDelivery, &t.UserID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan shipment")
	}
	return &t, nil
}
