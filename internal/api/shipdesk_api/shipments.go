package shipdesk_api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BearBump/ShipDesk/internal/apperr"
	"github.com/BearBump/ShipDesk/internal/models"
	"github.com/BearBump/ShipDesk/internal/services/shipments"
)

type ShipmentsAPI struct {
	svc *shipments.Service
}

func NewShipmentsAPI(svc *shipments.Service) *ShipmentsAPI {
	return &ShipmentsAPI{svc: svc}
}

// Create — POST /api/v1/shipments.
func (a *ShipmentsAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req createShipmentRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	sh, err := a.svc.CreateShipment(r.Context(), models.ShipmentCreateInput{
		Carrier:               req.Carrier,
		CarrierTrackingNumber: req.CarrierTrackingNumber,
		EstimatedDelivery:     req.EstimatedDelivery,
		UserID:                req.UserID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShipmentResponse(sh))
}

// Get — GET /api/v1/shipments/{trackingNumber}. Отдаёт отправление вместе
// с историей событий (новые первыми).
func (a *ShipmentsAPI) Get(w http.ResponseWriter, r *http.Request) {
	tn := chi.URLParam(r, "trackingNumber")

	sh, evs, err := a.svc.GetShipment(r.Context(), tn)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shipmentDetailResponse{
		shipmentResponse: toShipmentResponse(sh),
		Events:           toEventResponses(evs),
	})
}

// List — GET /api/v1/shipments?userId=&status=&page=&limit=.
func (a *ShipmentsAPI) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var userID *uint64
	if s := q.Get("userId"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid userId")
			return
		}
		userID = &v
	}
	var status *string
	if s := q.Get("status"); s != "" {
		status = &s
	}
	page, ok := intQuery(w, q.Get("page"), "invalid page")
	if !ok {
		return
	}
	limit, ok := intQuery(w, q.Get("limit"), "invalid limit")
	if !ok {
		return
	}

	items, pg, err := a.svc.ListShipments(r.Context(), userID, status, page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(items, pg))
}

// AddEvent — POST /api/v1/shipments/{trackingNumber}/events. Смена статуса
// с записью события; возвращает обновлённое отправление.
func (a *ShipmentsAPI) AddEvent(w http.ResponseWriter, r *http.Request) {
	tn := chi.URLParam(r, "trackingNumber")

	var req statusUpdateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	sh, err := a.svc.UpdateStatus(r.Context(), tn, models.StatusUpdateInput{
		Status:      req.Status,
		Description: req.Description,
		Location:    req.Location,
		Timestamp:   req.Timestamp,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentResponse(sh))
}

// Delete — DELETE /api/v1/shipments/{trackingNumber}.
func (a *ShipmentsAPI) Delete(w http.ResponseWriter, r *http.Request) {
	tn := chi.URLParam(r, "trackingNumber")

	if err := a.svc.DeleteShipment(r.Context(), tn); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func intQuery(w http.ResponseWriter, raw, msg string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeError(w, http.StatusBadRequest, msg)
		return 0, false
	}
	return v, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrAlreadyConverted):
		writeError(w, http.StatusConflict, "lead already converted")
	case errors.Is(err, apperr.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrAllocationExhausted):
		writeError(w, http.StatusInternalServerError, "tracking number allocation exhausted")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
