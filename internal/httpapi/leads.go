package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gitlab.com/timkado/api/lead-console/internal/apperrors"
	"gitlab.com/timkado/api/lead-console/internal/leadinfo"
	"gitlab.com/timkado/api/lead-console/internal/model"
	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

type statusChangeRequest struct {
	Status model.LeadStatus `json:"status"`
}

type bulkStatusRequest struct {
	IDs    []string         `json:"ids"`
	Status model.LeadStatus `json:"status"`
}

func (d Dependencies) board(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLeadFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summaries, err := d.Ops.Board(r.Context(), filter, d.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"items": summaries,
		"total": len(summaries),
	})
}

func (d Dependencies) handoff(w http.ResponseWriter, r *http.Request) {
	summaries, err := d.Ops.Handoff(r.Context(), d.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"items": summaries,
		"total": len(summaries),
	})
}

func (d Dependencies) statuses(w http.ResponseWriter, _ *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, leadinfo.StatusTable())
}

func (d Dependencies) createLead(w http.ResponseWriter, r *http.Request) {
	var payload model.LeadCreate
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	lead, err := d.Ops.CreateLead(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, lead)
}

func (d Dependencies) uploadLeads(w http.ResponseWriter, r *http.Request) {
	if d.MaxUploadBytes > 0 {
		if r.ContentLength > d.MaxUploadBytes {
			writeTooLarge(w, d.MaxUploadBytes)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadBytes)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeTooLarge(w, tooLarge.Limit)
			return
		}
		writeError(w, r, apperrors.NewValidation(fmt.Errorf("multipart field \"file\" is required: %w", err)))
		return
	}
	defer file.Close()

	leads, err := d.Ops.ImportCSV(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, leads)
}

func (d Dependencies) changeStatus(w http.ResponseWriter, r *http.Request) {
	var body statusChangeRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	lead, err := d.Ops.ChangeStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, lead)
}

func (d Dependencies) bulkStatus(w http.ResponseWriter, r *http.Request) {
	var body bulkStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	results, err := d.Ops.BulkUpdateStatus(r.Context(), body.IDs, body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"total":   len(results),
	})
}

func (d Dependencies) testCall(w http.ResponseWriter, r *http.Request) {
	result, err := d.Client.TriggerTestAICall(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

func writeTooLarge(w http.ResponseWriter, limit int64) {
	utils.WriteJSONError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %s", utils.ByteCountSI(limit)))
}

// parseLeadFilter reads status, search, page and limit from the query.
func parseLeadFilter(r *http.Request) (model.LeadFilter, error) {
	q := r.URL.Query()
	filter := model.LeadFilter{Search: q.Get("search")}

	if raw := q.Get("status"); raw != "" {
		status, err := model.ParseLeadStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}

	var err error
	if filter.Page, err = queryInt(q.Get("page"), "page"); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(q.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidation(fmt.Errorf("%s must be an integer, got %q", name, raw))
	}
	return n, nil
}
