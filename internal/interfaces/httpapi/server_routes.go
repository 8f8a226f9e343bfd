package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedNavigationRoutes(mux, handler, verifier)
	registerAuthorizedDraftRoutes(mux, handler, verifier)
}

func registerAuthorizedNavigationRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/active-league", RequireAuth(verifier, http.HandlerFunc(handler.GetActiveLeague)))
	mux.Handle("DELETE /v1/active-league", RequireAuth(verifier, http.HandlerFunc(handler.ForgetActiveLeague)))
}

func registerAuthorizedDraftRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/leagues/{leagueID}/draft", RequireAuth(verifier, http.HandlerFunc(handler.GetDraftState)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/picks", RequireAuth(verifier, http.HandlerFunc(handler.SubmitPicks)))
	mux.Handle("GET /v1/leagues/{leagueID}/rosters", RequireAuth(verifier, http.HandlerFunc(handler.ListRosters)))
	// Commissioner actions; ownership is checked by the service and the store.
	mux.Handle("POST /v1/leagues/{leagueID}/draft/open", RequireAuth(verifier, http.HandlerFunc(handler.OpenDraft)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/close", RequireAuth(verifier, http.HandlerFunc(handler.CloseDraft)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/reset", RequireAuth(verifier, http.HandlerFunc(handler.ResetDraft)))
}
