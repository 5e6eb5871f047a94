package models

import "time"

// Статусы отправления (точные wire-значения, фиксированный набор).
const (
	ShipmentStatusPending        = "PENDING"
	ShipmentStatusPickedUp       = "PICKED_UP"
	ShipmentStatusInTransit      = "IN_TRANSIT"
	ShipmentStatusOutForDelivery = "OUT_FOR_DELIVERY"
	ShipmentStatusDelivered      = "DELIVERED"
	ShipmentStatusException      = "EXCEPTION"
	ShipmentStatusReturned       = "RETURNED"
)

var shipmentStatuses = map[string]struct{}{
	ShipmentStatusPending:        {},
	ShipmentStatusPickedUp:       {},
	ShipmentStatusInTransit:      {},
	ShipmentStatusOutForDelivery: {},
	ShipmentStatusDelivered:      {},
	ShipmentStatusException:      {},
	ShipmentStatusReturned:       {},
}

// IsShipmentStatus сообщает, входит ли s в фиксированный набор статусов.
// Граф переходов свободный: любой статус может следовать за любым.
func IsShipmentStatus(s string) bool {
	_, ok := shipmentStatuses[s]
	return ok
}

type Shipment struct {
	ID                    uint64
	TrackingNumber        string
	Carrier               *string
	CarrierTrackingNumber *string
	Status                string
	EstimatedDelivery     *time.Time
	ActualDelivery        *time.Time
	UserID                *uint64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TrackingEvent — запись аудита. После вставки не изменяется.
// EventTime — время события в реальном мире (может приходить с задержкой),
// CreatedAt — время вставки строки.
type TrackingEvent struct {
	ID          uint64
	ShipmentID  uint64
	Status      string
	Description string
	Location    *string
	EventTime   time.Time
	CreatedAt   time.Time
}

type ShipmentCreateInput struct {
	Carrier               *string
	CarrierTrackingNumber *string
	EstimatedDelivery     *time.Time
	UserID                *uint64
}

type StatusUpdateInput struct {
	Status      string
	Description string
	Location    *string
	Timestamp   *time.Time
}
