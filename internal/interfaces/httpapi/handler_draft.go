package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

func (h *Handler) GetActiveLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetActiveLeague")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	explicit := strings.TrimSpace(r.URL.Query().Get("league"))
	lc, err := h.activeLeagues.Resolve(ctx, principal.UserID, explicit)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve active league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueContextToDTO(lc))
}

func (h *Handler) ForgetActiveLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ForgetActiveLeague")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	h.activeLeagues.Forget(ctx, principal.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetDraftState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetDraftState")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	state, err := h.draftService.GetDraftState(ctx, leagueID, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	// Viewing a league makes it the user's current one.
	if _, err := h.activeLeagues.Resolve(ctx, principal.UserID, leagueID); err != nil {
		h.logger.WarnContext(ctx, "remember active league failed", "league_id", leagueID, "error", err)
	}

	writeSuccess(ctx, w, http.StatusOK, draftStateToDTO(state))
}

func (h *Handler) ListRosters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListRosters")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.draftService.ListRosters(ctx, r.PathValue("leagueID"), principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterViewToDTO(view))
}

func (h *Handler) SubmitPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "SubmitPicks")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPicksRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.draftService.SubmitPicks(ctx, usecase.SubmitPicksInput{
		LeagueID:      r.PathValue("leagueID"),
		UserID:        principal.UserID,
		ContestantIDs: req.ContestantIDs,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeAction(ctx, w, result)
}

func (h *Handler) OpenDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "OpenDraft")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req openDraftRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.draftService.OpenDraft(ctx, usecase.OpenDraftInput{
		LeagueID:       r.PathValue("leagueID"),
		ActingUserID:   principal.UserID,
		OrderedUserIDs: req.OrderedUserIDs,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeAction(ctx, w, result)
}

func (h *Handler) CloseDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "CloseDraft")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req emptyRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.draftService.CloseDraft(ctx, r.PathValue("leagueID"), principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeAction(ctx, w, result)
}

func (h *Handler) ResetDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ResetDraft")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req emptyRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.draftService.ResetDraft(ctx, r.PathValue("leagueID"), principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeAction(ctx, w, result)
}
