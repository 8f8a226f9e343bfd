// Package static verifies bearer tokens against a fixed token table. It backs
// local runs on the memory gateway where no auth service is available.
package static

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-draft/internal/domain/user"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

type Verifier struct {
	users map[string]string
}

// NewVerifier takes a token to user id table.
func NewVerifier(tokens map[string]string) *Verifier {
	users := make(map[string]string, len(tokens))
	for token, userID := range tokens {
		token = strings.TrimSpace(token)
		userID = strings.TrimSpace(userID)
		if token == "" || userID == "" {
			continue
		}
		users[token] = userID
	}
	return &Verifier{users: users}
}

func (v *Verifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	userID, ok := v.users[strings.TrimSpace(token)]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown access token", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: userID}, nil
}
