// Package postgrest implements the draft gateway against a hosted PostgREST
// endpoint (Supabase). Every request runs under the caller's access token so
// row-level policies decide what is visible and writable.
package postgrest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-draft/internal/domain/user"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/gateway/pgerr"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	restPath        = "/rest/v1/"
	maxResponseSize = 4 << 20
)

var errPostgrestTransient = crerr.New("postgrest transient failure")

type Config struct {
	HTTPClient     *http.Client
	BaseURL        string
	AnonKey        string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Gateway struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
}

func NewGateway(cfg Config) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	return &Gateway{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		anonKey:    strings.TrimSpace(cfg.AnonKey),
		logger:     logger,
		breaker:    resilience.NewCircuitBreakerFromConfig(withStateLog(cfg.CircuitBreaker, logger)),
	}
}

type request struct {
	method string
	table  string
	query  url.Values
	body   any
	prefer []string
}

type response struct {
	status       int
	body         []byte
	contentRange string
}

// get runs a read through singleflight so concurrent snapshot loads for the
// same caller share one round trip.
func (g *Gateway) get(ctx context.Context, table string, query url.Values, target any) error {
	token, _ := user.AccessTokenFromContext(ctx)
	key := hashKey(token) + "|" + table + "?" + query.Encode()

	out, err, _ := g.flight.DoContext(ctx, key, func() (any, error) {
		resp, err := g.do(ctx, request{method: http.MethodGet, table: table, query: query})
		if err != nil {
			return nil, err
		}
		return resp.body, nil
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

// do executes one request exactly once. Writes are never retried here.
func (g *Gateway) do(ctx context.Context, req request) (response, error) {
	var resp response
	err := g.breaker.Execute(func() error {
		var reqErr error
		resp, reqErr = g.execute(ctx, req)
		return reqErr
	}, isCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		g.logger.WarnContext(ctx, "postgrest circuit breaker rejected request", "table", req.table, "method", req.method)
		return response{}, fmt.Errorf("%w: league store is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return response{}, err
	}
	return resp, nil
}

func (g *Gateway) execute(ctx context.Context, req request) (response, error) {
	fullURL := g.baseURL + restPath + req.table
	if encoded := req.query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	var body io.Reader
	if req.body != nil {
		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)

		if err := sonic.ConfigDefault.NewEncoder(buf).Encode(req.body); err != nil {
			return response{}, fmt.Errorf("encode %s payload: %w", req.table, err)
		}
		body = bytes.NewReader(buf.Bytes())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, body)
	if err != nil {
		return response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("apikey", g.anonKey)
	if token, ok := user.AccessTokenFromContext(ctx); ok {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	} else if g.anonKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.anonKey)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if len(req.prefer) > 0 {
		httpReq.Header.Set("Prefer", strings.Join(req.prefer, ","))
	}

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return response{}, ctx.Err()
		}
		return response{}, fmt.Errorf("%w: %w: send %s %s: %v", usecase.ErrDependencyUnavailable, errPostgrestTransient, req.method, req.table, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return response{}, fmt.Errorf("%w: %w: read %s response: %v", usecase.ErrDependencyUnavailable, errPostgrestTransient, req.table, err)
	}

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return response{
			status:       httpResp.StatusCode,
			body:         raw,
			contentRange: httpResp.Header.Get("Content-Range"),
		}, nil
	}

	storeErr := decodeStoreError(raw, httpResp.StatusCode)
	classified := classifyStatus(httpResp.StatusCode, storeErr)
	g.logger.WarnContext(ctx, "postgrest request rejected",
		"method", req.method,
		"table", req.table,
		"status_code", httpResp.StatusCode,
		"code", storeErr.Code,
		"body", abbreviateBody(raw),
	)
	return response{}, classified
}

func decodeStoreError(raw []byte, status int) *pgerr.StoreError {
	var decoded struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
		Hint    string `json:"hint"`
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		_ = sonic.Unmarshal(raw, &decoded)
	}
	if decoded.Message == "" {
		decoded.Message = fmt.Sprintf("status %d: %s", status, abbreviateBody(raw))
	}
	return &pgerr.StoreError{
		Code:    decoded.Code,
		Message: decoded.Message,
		Details: decoded.Details,
		Hint:    decoded.Hint,
	}
}

func classifyStatus(status int, storeErr *pgerr.StoreError) error {
	switch {
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w: %w", usecase.ErrDependencyUnavailable, errPostgrestTransient, storeErr)
	case status == http.StatusUnauthorized && storeErr.Code == "":
		return fmt.Errorf("%w: %w", usecase.ErrUnauthorized, storeErr)
	case status == http.StatusForbidden && storeErr.Code == "":
		return fmt.Errorf("%w: %w", usecase.ErrForbidden, storeErr)
	case status == http.StatusConflict && storeErr.Code == "":
		return fmt.Errorf("%w: %w", usecase.ErrConflict, storeErr)
	}
	return pgerr.Classify(storeErr.Code, storeErr.Message+" "+storeErr.Details, storeErr)
}

func hashKey(token string) string {
	if token == "" {
		return "anon"
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errPostgrestTransient)
}

// parseContentRange reads the total from "0-24/3573" or "*/0".
func parseContentRange(value string) (int, error) {
	idx := strings.LastIndex(value, "/")
	if idx < 0 || idx == len(value)-1 {
		return 0, fmt.Errorf("content-range %q has no total", value)
	}
	total := value[idx+1:]
	if total == "*" {
		return 0, fmt.Errorf("content-range %q has unknown total", value)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("parse content-range total %q: %w", value, err)
	}
	return n, nil
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func withStateLog(cfg resilience.CircuitBreakerConfig, logger *logging.Logger) resilience.CircuitBreakerConfig {
	if cfg.OnStateChange == nil {
		cfg.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("postgrest circuit breaker state changed", "from", from, "to", to)
		}
	}
	return cfg
}
