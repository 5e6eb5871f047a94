package pgshipments

import (
	"context"

	"github.com/BearBump/ShipDesk/internal/models"
	"github.com/pkg/errors"
)

// ListTrackingEvents возвращает историю отправления, новые события первыми.
// Сортировка по event_time, а не по времени вставки: события могут
// приходить с задержкой и должны выстраиваться по реальному времени.
func (s *Storage) ListTrackingEvents(ctx context.Context, shipmentID uint64, limit, offset int) ([]*models.TrackingEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(ctx, `
SELECT
  id, shipment_id, status, description, location, event_time, created_at
FROM tracking_events
WHERE shipment_id = $1
ORDER BY event_time DESC
LIMIT $2 OFFSET $3
`, shipmentID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "select events")
	}
	defer rows.Close()

	var out []*models.TrackingEvent
	for rows.Next() {
		var e models.TrackingEvent
		if err := rows.Scan(
			&e.ID, &e.ShipmentID, &e.Status, &e.Description,
			&e.Location, &e.EventTime, &e.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		out = append(out, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
