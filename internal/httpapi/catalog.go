package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gitlab.com/timkado/api/lead-console/internal/apperrors"
	"gitlab.com/timkado/api/lead-console/internal/model"
	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

func (d Dependencies) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := d.Client.GetDashboardMetrics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, metrics)
}

func (d Dependencies) advancedMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := d.Client.GetAdvancedMetrics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, metrics)
}

func (d Dependencies) listSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slots, err := d.Client.ListAppointmentSlots(r.Context(), model.SlotRange{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, slots)
}

func (d Dependencies) createBulkSlots(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateBulkSlotsRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := d.Client.CreateBulkSlots(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

func (d Dependencies) previewBulkSlots(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateBulkSlotsRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	slots, err := payload.Preview()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if slots == nil {
		slots = []model.SlotWindow{}
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"slots": slots,
		"count": len(slots),
	})
}

func (d Dependencies) bookSlot(w http.ResponseWriter, r *http.Request) {
	var payload model.BookSlotRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	slot, err := d.Client.BookSlot(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, slot)
}

func (d Dependencies) listKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	entries, err := d.Client.ListKnowledgeBase(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, entries)
}

func (d Dependencies) upsertKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	var payload model.KnowledgeBaseUpsert
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := d.Client.UpsertKnowledgeBase(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

func (d Dependencies) searchKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	var payload model.KnowledgeBaseSearchRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := d.Client.SearchKnowledgeBase(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

func (d Dependencies) quickSearchKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	topK, err := queryInt(q.Get("top_k"), "top_k")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := d.Client.QuickSearchKnowledgeBase(r.Context(), model.KnowledgeBaseSearchRequest{Query: q.Get("q"), TopK: topK})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

func (d Dependencies) deleteKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	title, err := pathParam(r, "title")
	if err != nil {
		writeError(w, r, apperrors.NewValidation(err))
		return
	}
	result, err := d.Client.DeleteKnowledgeBase(r.Context(), title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}
