package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
)

func TestParseSteps(t *testing.T) {
	tests := []struct {
		args    []string
		want    int
		wantErr bool
	}{
		{args: nil, want: 1},
		{args: []string{"3"}, want: 3},
		{args: []string{"0"}, wantErr: true},
		{args: []string{"x"}, wantErr: true},
	}
	for _, tc := range tests {
		got, err := parseSteps(tc.args)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%v: unexpected error state: %v", tc.args, err)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("%v: got %d want %d", tc.args, got, tc.want)
		}
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	if v, err := parseVersion("1776124900"); err != nil || v != 1776124900 {
		t.Fatalf("unexpected version: %d %v", v, err)
	}
	if _, err := parseVersion("-1"); err == nil {
		t.Fatalf("expected error for negative version")
	}
	if _, err := parseTarget("abc"); err == nil {
		t.Fatalf("expected error for invalid target")
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("DB_DISABLE_PREPARED_BINARY", "")
	if !envBool("DB_DISABLE_PREPARED_BINARY", true) {
		t.Fatalf("expected fallback when unset")
	}
	t.Setenv("DB_DISABLE_PREPARED_BINARY", "false")
	if envBool("DB_DISABLE_PREPARED_BINARY", true) {
		t.Fatalf("expected explicit false to win")
	}
}

func TestRun_RequiresCommand(t *testing.T) {
	if err := run(nil, logging.NewNop()); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestRun_RequiresDBURL(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("DB_URL", "")
	t.Chdir(t.TempDir())

	if err := run([]string{"up"}, logging.NewNop()); err == nil || !strings.Contains(err.Error(), "DB_URL") {
		t.Fatalf("expected DB_URL error, got %v", err)
	}
}
