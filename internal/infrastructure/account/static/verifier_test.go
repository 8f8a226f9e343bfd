package static

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

func TestVerifier(t *testing.T) {
	v := NewVerifier(map[string]string{"tok-a": "user-a", " ": "ignored", "tok-b": ""})

	principal, err := v.VerifyAccessToken(context.Background(), " tok-a ")
	if err != nil {
		t.Fatalf("verify known token: %v", err)
	}
	if principal.UserID != "user-a" {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	for _, token := range []string{"tok-b", "missing", ""} {
		if _, err := v.VerifyAccessToken(context.Background(), token); !errors.Is(err, usecase.ErrUnauthorized) {
			t.Fatalf("token %q: expected ErrUnauthorized, got %v", token, err)
		}
	}
}
