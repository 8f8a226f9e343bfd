package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "fantasy-draft"
	internalMessage  = "internal server error"
)

// Responses follow the Google JSON style guide envelope.
type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func (m mappedError) body(message string) *googleErrorBody {
	return &googleErrorBody{
		Code:    m.HTTPStatus,
		Message: message,
		Status:  m.Status,
		Errors:  []googleErrorItem{{Domain: errorDomain, Reason: m.Reason, Message: message}},
	}
}

var internalError = mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrForbidden, mappedError{http.StatusForbidden, "forbidden", "PERMISSION_DENIED"}},
	{usecase.ErrConflict, mappedError{http.StatusConflict, "conflict", "ABORTED"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	{draft.ErrMalformedLeague, mappedError{http.StatusUnprocessableEntity, "malformedLeague", "FAILED_PRECONDITION"}},
}

var actionStatuses = map[usecase.ActionKind]mappedError{
	usecase.ActionKindValidation:    {http.StatusBadRequest, "invalidSelection", "INVALID_ARGUMENT"},
	usecase.ActionKindAuthorization: {http.StatusForbidden, "actionNotAllowed", "PERMISSION_DENIED"},
	usecase.ActionKindConflict:      {http.StatusConflict, "actionConflict", "ABORTED"},
	usecase.ActionKindTransient:     {http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"},
	usecase.ActionKindNotFound:      {http.StatusNotFound, "notFound", "NOT_FOUND"},
}

func mapError(err error) mappedError {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.mapped
		}
	}
	return internalError
}

func writeJSON(_ context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, googleResponseEnvelope{APIVersion: googleAPIVersion, Data: data})
}

// writeError renders err with its mapped status. Unmapped errors are reported
// as a generic internal error so store details never reach the client.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	message := err.Error()
	if mapped == internalError {
		message = internalMessage
	}
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error:      mapped.body(message),
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeJSON(ctx, w, internalError.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error:      internalError.body(internalMessage),
	})
}

// writeAction renders an action outcome. A rejected action carries both the
// error body and the refreshed state so the client can redraw in place.
func writeAction(ctx context.Context, w http.ResponseWriter, result usecase.ActionResult) {
	payload := actionResultToDTO(result)
	if result.Accepted {
		writeSuccess(ctx, w, http.StatusOK, payload)
		return
	}

	mapped, ok := actionStatuses[result.Kind]
	if !ok {
		mapped = internalError
	}
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       payload,
		Error:      mapped.body(result.Message),
	})
}
