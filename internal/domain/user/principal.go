package user

import (
	"context"
	"strings"
)

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID string
	Email  string
}

type contextKey string

const accessTokenContextKey contextKey = "user_access_token"

// WithAccessToken carries the caller's raw bearer token so calls to the
// league store run under the caller's row-level policies.
func WithAccessToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenContextKey, token)
}

func AccessTokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	token, ok := ctx.Value(accessTokenContextKey).(string)
	return token, ok && token != ""
}
