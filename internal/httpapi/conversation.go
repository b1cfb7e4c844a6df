package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gitlab.com/timkado/api/lead-console/internal/apperrors"
	"gitlab.com/timkado/api/lead-console/internal/conversation"
	"gitlab.com/timkado/api/lead-console/internal/model"
	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

// The conversation endpoints always answer with the aggregator snapshot.
// A failed operation maps to its error status; the snapshot carries the
// message in its "error" field.

func (d Dependencies) loadConversation(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")
	agg := d.Conversations.Get(leadID)
	err := agg.Load(r.Context(), leadID)
	writeSnapshot(w, agg, err)
}

func (d Dependencies) retryConversation(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")
	agg, ok := d.Conversations.Peek(leadID)
	if !ok {
		agg = d.Conversations.Get(leadID)
		writeSnapshot(w, agg, agg.Load(r.Context(), leadID))
		return
	}
	writeSnapshot(w, agg, agg.Retry(r.Context()))
}

func (d Dependencies) sendMessage(w http.ResponseWriter, r *http.Request) {
	var body model.ReplyRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	agg, ok := d.Conversations.Peek(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, apperrors.NewValidation(errors.New("conversation is not loaded")))
		return
	}
	writeSnapshot(w, agg, agg.Send(r.Context(), body.Content))
}

func writeSnapshot(w http.ResponseWriter, agg *conversation.Aggregator, err error) {
	snap := agg.Snapshot()
	if err != nil && !errors.Is(err, conversation.ErrSuperseded) {
		if snap.Err == "" {
			snap.Err = err.Error()
		}
		utils.WriteJSONResponse(w, apperrors.HTTPStatus(err), snap)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, snap)
}
