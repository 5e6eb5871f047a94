package shipdesk_api

import (
	"time"

	"github.com/BearBump/ShipDesk/internal/models"
	"github.com/BearBump/ShipDesk/internal/services/shipments"
	"github.com/BearBump/ShipDesk/internal/storage/pgshipments"
)

type createShipmentRequest struct {
	Carrier               *string    `json:"carrier"`
	CarrierTrackingNumber *string    `json:"carrierTrackingNumber"`
	EstimatedDelivery     *time.Time `json:"estimatedDelivery"`
	UserID                *uint64    `json:"userId"`
}

type statusUpdateRequest struct {
	Status      string     `json:"status"`
	Description string     `json:"description"`
	Location    *string    `json:"location"`
	Timestamp   *time.Time `json:"timestamp"`
}

type createLeadRequest struct {
	Name     string  `json:"name"`
	Contact  string  `json:"contact"`
	Details  *string `json:"details"`
	ClientID *uint64 `json:"clientId"`
}

type leadStatusRequest struct {
	Status string `json:"status"`
}

type convertLeadRequest struct {
	Carrier               *string    `json:"carrier"`
	CarrierTrackingNumber *string    `json:"carrierTrackingNumber"`
	EstimatedDelivery     *time.Time `json:"estimatedDelivery"`
}

type shipmentResponse struct {
	ID                    uint64     `json:"id"`
	TrackingNumber        string     `json:"trackingNumber"`
	Carrier               *string    `json:"carrier"`
	CarrierTrackingNumber *string    `json:"carrierTrackingNumber"`
	Status                string     `json:"status"`
	EstimatedDelivery     *time.Time `json:"estimatedDelivery"`
	ActualDelivery        *time.Time `json:"actualDelivery"`
	UserID                *uint64    `json:"userId"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

type trackingEventResponse struct {
	ID          uint64    `json:"id"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Location    *string   `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `json:"createdAt"`
}

type shipmentDetailResponse struct {
	shipmentResponse
	Events []trackingEventResponse `json:"events"`
}

type shipmentListItemResponse struct {
	shipmentResponse
	LastEvent *trackingEventResponse `json:"lastEvent"`
}

type paginationResponse struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type shipmentListResponse struct {
	Items      []shipmentListItemResponse `json:"items"`
	Pagination paginationResponse         `json:"pagination"`
}

type leadResponse struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Details   *string   `json:"details"`
	Status    string    `json:"status"`
	ClientID  *uint64   `json:"clientId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toShipmentResponse(sh *models.Shipment) shipmentResponse {
	return shipmentResponse{
		ID:                    sh.ID,
		TrackingNumber:        sh.TrackingNumber,
		Carrier:               sh.Carrier,
		CarrierTrackingNumber: sh.CarrierTrackingNumber,
		Status:                sh.Status,
		EstimatedDelivery:     sh.EstimatedDelivery,
		ActualDelivery:        sh.ActualDelivery,
		UserID:                sh.UserID,
		CreatedAt:             sh.CreatedAt,
		UpdatedAt:             sh.UpdatedAt,
	}
}

func toEventResponse(e *models.TrackingEvent) trackingEventResponse {
	return trackingEventResponse{
		ID:          e.ID,
		Status:      e.Status,
		Description: e.Description,
		Location:    e.Location,
		Timestamp:   e.EventTime,
		CreatedAt:   e.CreatedAt,
	}
}

func toEventResponses(evs []*models.TrackingEvent) []trackingEventResponse {
	out := make([]trackingEventResponse, 0, len(evs))
	for _, e := range evs {
		out = append(out, toEventResponse(e))
	}
	return out
}

func toListResponse(items []*pgshipments.ShipmentListItem, pg shipments.Pagination) shipmentListResponse {
	out := shipmentListResponse{
		Items: make([]shipmentListItemResponse, 0, len(items)),
		Pagination: paginationResponse{
			Total:      pg.Total,
			Page:       pg.Page,
			Limit:      pg.Limit,
			TotalPages: pg.TotalPages,
		},
	}
	for _, it := range items {
		item := shipmentListItemResponse{shipmentResponse: toShipmentResponse(it.Shipment)}
		if it.LastEvent != nil {
			ev := toEventResponse(it.LastEvent)
			item.LastEvent = &ev
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func toLeadResponse(l *models.Lead) leadResponse {
	return leadResponse{
		ID:        l.ID,
		Name:      l.Name,
		Contact:   l.Contact,
		Details:   l.Details,
		Status:    l.Status,
		ClientID:  l.ClientID,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
