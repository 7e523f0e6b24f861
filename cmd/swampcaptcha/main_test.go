package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestStatsReadsLedgerNamedByFlag(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"stats", "--audit-db", filepath.Join(dir, "audit.db")})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "sessions:") {
		t.Fatalf("expected summary output, got %q", out.String())
	}
}

func TestStatsWithoutLedgerFails(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SWAMP_AUDIT_DB", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"stats"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "audit ledger disabled") {
		t.Fatalf("expected ledger disabled error, got %v", err)
	}
}

func TestAskRequiresMessage(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"ask"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected missing argument error")
	}
}
