// Package supabase verifies caller access tokens against the Supabase auth
// endpoint and caches the resolved principal per token.
package supabase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-draft/internal/domain/user"
	"github.com/riskibarqy/fantasy-draft/internal/platform/cache"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const userPath = "/auth/v1/user"

var errSupabaseTransient = crerr.New("supabase auth transient failure")

type Config struct {
	HTTPClient      *http.Client
	BaseURL         string
	AnonKey         string
	Timeout         time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
	CircuitBreaker  resilience.CircuitBreakerConfig
	Logger          *logging.Logger
}

type Client struct {
	httpClient *http.Client
	userURL    string
	anonKey    string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	principals *cache.Store
}

func NewClient(cfg Config) *Client {
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

	var principals *cache.Store
	if cfg.CacheTTL > 0 {
		principals = cache.NewBoundedStore(cfg.CacheTTL, cfg.CacheMaxEntries)
	}

	return &Client{
		httpClient: httpClient,
		userURL:    strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/") + userPath,
		anonKey:    strings.TrimSpace(cfg.AnonKey),
		logger:     logger,
		breaker:    resilience.NewCircuitBreakerFromConfig(withStateLog(cfg.CircuitBreaker, logger)),
		principals: principals,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	if c.principals == nil {
		return c.verifyGuarded(ctx, token)
	}

	// concurrent requests for one token share a single lookup
	value, err := c.principals.GetOrLoad(ctx, hashToken(token), func(ctx context.Context) (any, error) {
		return c.verifyGuarded(ctx, token)
	})
	if err != nil {
		return user.Principal{}, err
	}
	principal, ok := value.(user.Principal)
	if !ok {
		return user.Principal{}, fmt.Errorf("unexpected cached principal type %T", value)
	}
	return principal, nil
}

func (c *Client) verifyGuarded(ctx context.Context, token string) (user.Principal, error) {
	var principal user.Principal
	err := c.breaker.Execute(func() error {
		var verifyErr error
		principal, verifyErr = c.verify(ctx, token)
		return verifyErr
	}, isCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "supabase auth circuit breaker rejected request")
		return user.Principal{}, fmt.Errorf("%w: auth service is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return user.Principal{}, err
	}
	return principal, nil
}

func (c *Client) verify(ctx context.Context, token string) (user.Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL, nil)
	if err != nil {
		return user.Principal{}, fmt.Errorf("create auth user request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return user.Principal{}, ctx.Err()
		}
		return user.Principal{}, fmt.Errorf("%w: %w: request supabase auth: %v", usecase.ErrDependencyUnavailable, errSupabaseTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %w: read auth user response: %v", usecase.ErrDependencyUnavailable, errSupabaseTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return user.Principal{}, fmt.Errorf("%w: token rejected by auth service", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		c.logger.WarnContext(ctx, "supabase auth unavailable", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: %w: auth service status %d", usecase.ErrDependencyUnavailable, errSupabaseTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		c.logger.WarnContext(ctx, "supabase auth non-200", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: auth service status %d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	}

	var decoded authUserResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal auth user response: %w", err)
	}
	if strings.TrimSpace(decoded.ID) == "" {
		return user.Principal{}, fmt.Errorf("%w: auth user response has no id", usecase.ErrUnauthorized)
	}

	return user.Principal{
		UserID: decoded.ID,
		Email:  decoded.Email,
	}, nil
}

type authUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errSupabaseTransient)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func withStateLog(cfg resilience.CircuitBreakerConfig, logger *logging.Logger) resilience.CircuitBreakerConfig {
	if cfg.OnStateChange == nil {
		cfg.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("supabase auth circuit breaker state changed", "from", from, "to", to)
		}
	}
	return cfg
}
