package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/fantasy-draft/internal/domain/user"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer   abc ", want: "abc"},
		{header: "", wantErr: true},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer", wantErr: true},
		{header: "Bearer   ", wantErr: true},
	}

	for _, tc := range tests {
		got, err := bearerToken(tc.header)
		if tc.wantErr {
			if !errors.Is(err, usecase.ErrUnauthorized) {
				t.Fatalf("%q: expected unauthorized, got %v", tc.header, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %q err=%v", tc.header, got, err)
		}
	}
}

type recordingVerifier struct {
	principal user.Principal
}

func (v recordingVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if token != "good" {
		return user.Principal{}, usecase.ErrUnauthorized
	}
	return v.principal, nil
}

func TestRequireAuth_StoresPrincipalAndToken(t *testing.T) {
	var gotUser, gotToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := principalFromContext(r.Context())
		gotUser = p.UserID
		gotToken, _ = user.AccessTokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	var buf bytes.Buffer
	logger := logging.NewJSONWriter(&buf, logging.LevelInfo)
	handler := RequestLogging(logger, RequireAuth(recordingVerifier{principal: user.Principal{UserID: "boss"}}, next))

	req := httptest.NewRequest(http.MethodGet, "/v1/active-league", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent || gotUser != "boss" || gotToken != "good" {
		t.Fatalf("unexpected result: code=%d user=%q token=%q", rec.Code, gotUser, gotToken)
	}

	var entry map[string]any
	if err := jsoniter.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["user_id"] != "boss" || entry["status"] != float64(http.StatusNoContent) {
		t.Fatalf("unexpected request log: %v", entry)
	}
}

func TestRequireAuth_RejectsBadToken(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
	handler := RequireAuth(recordingVerifier{}, next)

	req := httptest.NewRequest(http.MethodGet, "/v1/active-league", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without calling next, got %d called=%v", rec.Code, called)
	}
}

func TestRequestLogging_ServerErrorsLogAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONWriter(&buf, logging.LevelInfo)
	handler := RequestLogging(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/leagues/l1/draft", nil))

	var entry map[string]any
	if err := jsoniter.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "WARN" || entry["bytes"] != float64(4) {
		t.Fatalf("unexpected request log: %v", entry)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		wantOrigin  string
		wantMethods string
		wantStatus  int
	}{
		{
			name:        "listed origin",
			allowed:     []string{"https://draft.example.com"},
			method:      http.MethodGet,
			origin:      "https://draft.example.com",
			wantOrigin:  "https://draft.example.com",
			wantMethods: corsAllowMethods,
			wantStatus:  http.StatusOK,
		},
		{
			name:        "wildcard preflight",
			allowed:     []string{"*"},
			method:      http.MethodOptions,
			origin:      "https://draft.example.com",
			wantOrigin:  "*",
			wantMethods: corsAllowMethods,
			wantStatus:  http.StatusNoContent,
		},
		{
			name:       "unlisted origin",
			allowed:    []string{"https://allowed.example.com"},
			method:     http.MethodGet,
			origin:     "https://not-allowed.example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "no origin header",
			allowed:    []string{"*"},
			method:     http.MethodPost,
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(tc.method, "/v1/leagues/demo-league/draft", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			CORS(tc.allowed, next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("unexpected Access-Control-Allow-Origin: %q", got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != tc.wantMethods {
				t.Fatalf("unexpected Access-Control-Allow-Methods: %q", got)
			}
		})
	}
}

func TestRecoverPanic_WritesInternalError(t *testing.T) {
	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/active-league", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
