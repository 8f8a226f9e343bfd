package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-draft/internal/domain/user"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

const maxRequestBodyBytes = 64 << 10

type Handler struct {
	draftService  *usecase.DraftService
	activeLeagues *usecase.ActiveLeagueResolver
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(
	draftService *usecase.DraftService,
	activeLeagues *usecase.ActiveLeagueResolver,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		draftService:  draftService,
		activeLeagues: activeLeagues,
		logger:        logger,
		validator:     validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a JSON body into dst and validates it. An empty body
// is accepted so bodiless actions can share the helper.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		decoder := sonic.ConfigDefault.NewDecoder(bytes.NewReader(raw))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(dst); err != nil {
			return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
		}
	}
	return h.validateRequest(ctx, dst)
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}
