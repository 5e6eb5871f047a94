package messages

import "time"

// ShipmentStatusChanged публикуется после коммита смены статуса.
// Ключ сообщения — трек-номер.
type ShipmentStatusChanged struct {
	TrackingNumber string     `json:"tracking_number"`
	Status         string     `json:"status"`
	Description    string     `json:"description,omitempty"`
	Location       *string    `json:"location,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
	ActualDelivery *time.Time `json:"actual_delivery,omitempty"`
}

// CarrierUpdate — входящее обновление от ретранслятора вебхуков перевозчика.
// Timestamp может отсутствовать: тогда событие датируется временем приёма.
type CarrierUpdate struct {
	TrackingNumber string     `json:"tracking_number"`
	Status         string     `json:"status"`
	Description    string     `json:"description,omitempty"`
	Location       *string    `json:"location,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}
