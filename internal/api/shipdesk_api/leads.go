package shipdesk_api

import (
	"net/http"

	"github.com/BearBump/ShipDesk/internal/models"
	"github.com/BearBump/ShipDesk/internal/services/leads"
)

type LeadsAPI struct {
	svc *leads.Service
}

func NewLeadsAPI(svc *leads.Service) *LeadsAPI {
	return &LeadsAPI{svc: svc}
}

// Create — POST /api/v1/leads.
func (a *LeadsAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	lead, err := a.svc.CreateLead(r.Context(), models.LeadCreateInput{
		Name:     req.Name,
		Contact:  req.Contact,
		Details:  req.Details,
		ClientID: req.ClientID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeadResponse(lead))
}

// Get — GET /api/v1/leads/{id}.
func (a *LeadsAPI) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	lead, err := a.svc.GetLead(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeadResponse(lead))
}

// UpdateStatus — PATCH /api/v1/leads/{id}/status. Конвертация этим путём
// запрещена: converted ставится только через Convert.
func (a *LeadsAPI) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req leadStatusRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	if req.Status == models.LeadStatusConverted {
		writeError(w, http.StatusBadRequest, "use convert endpoint")
		return
	}

	lead, err := a.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeadResponse(lead))
}

// Convert — POST /api/v1/leads/{id}/convert. Создаёт отправление из лида;
// владелец берётся из clientId лида, а не из запроса.
func (a *LeadsAPI) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	// тело опционально: детали отправления можно не передавать
	var req convertLeadRequest
	if r.ContentLength != 0 {
		if ok := decodeJSON(w, r, &req); !ok {
			return
		}
	}

	sh, err := a.svc.ConvertToShipment(r.Context(), id, models.ShipmentCreateInput{
		Carrier:               req.Carrier,
		CarrierTrackingNumber: req.CarrierTrackingNumber,
		EstimatedDelivery:     req.EstimatedDelivery,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShipmentResponse(sh))
}
