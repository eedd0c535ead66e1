package redisx

import (
	"math"
	"testing"
	"time"
)

const sampleInfo = `# Server
redis_version:7.2.4
redis_mode:standalone
uptime_in_seconds:93784

# Clients
connected_clients:12
blocked_clients:1

# Memory
used_memory:1572864
used_memory_peak:2097152
used_memory_rss:3145728

# Stats
total_commands_processed:123456
instantaneous_ops_per_sec:42
keyspace_hits:900
keyspace_misses:100

# Replication
role:master
connected_slaves:2

# CPU
used_cpu_sys:1.25
used_cpu_user:2.50
`

func TestParseStats(t *testing.T) {
	s := ParseStats(sampleInfo)

	if s.Version != "7.2.4" {
		t.Errorf("Version = %q", s.Version)
	}
	if s.Mode != "standalone" {
		t.Errorf("Mode = %q", s.Mode)
	}
	if s.Role != "master" {
		t.Errorf("Role = %q", s.Role)
	}
	if s.MemoryUsed != 1572864 {
		t.Errorf("MemoryUsed = %d", s.MemoryUsed)
	}
	if s.MemoryUsedHuman != "1.5 MB" {
		t.Errorf("MemoryUsedHuman = %q", s.MemoryUsedHuman)
	}
	if s.ConnectedClients != 12 || s.BlockedClients != 1 {
		t.Errorf("clients = %d/%d", s.ConnectedClients, s.BlockedClients)
	}
	if s.OpsPerSec != 42 {
		t.Errorf("OpsPerSec = %d", s.OpsPerSec)
	}
	if math.Abs(s.HitRate-90.0) > 1e-9 {
		t.Errorf("HitRate = %f", s.HitRate)
	}
	if s.UptimeHuman != "1d 2h 3m" {
		t.Errorf("UptimeHuman = %q", s.UptimeHuman)
	}
	if s.ConnectedSlaves != 2 {
		t.Errorf("ConnectedSlaves = %d", s.ConnectedSlaves)
	}
	if s.CPUSys != 1.25 || s.CPUUser != 2.5 {
		t.Errorf("cpu = %f/%f", s.CPUSys, s.CPUUser)
	}
}

func TestParseStatsEmptyInput(t *testing.T) {
	s := ParseStats("")
	if s.Version != "Unknown" || s.Mode != "Unknown" || s.Role != "Unknown" {
		t.Errorf("defaults = %q/%q/%q", s.Version, s.Mode, s.Role)
	}
	if s.HitRate != 0 {
		t.Errorf("HitRate = %f, want 0 with no requests", s.HitRate)
	}
}

func TestStatsStale(t *testing.T) {
	s := &Stats{LastUpdated: time.Now().Add(-10 * time.Second)}
	if !s.Stale(5 * time.Second) {
		t.Error("10s old snapshot should be stale at 5s max age")
	}
	if s.Stale(time.Minute) {
		t.Error("10s old snapshot should not be stale at 1m max age")
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1572864, "1.5 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tc := range cases {
		if got := FormatBytes(tc.in); got != tc.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{5, "5s"},
		{65, "1m 5s"},
		{3665, "1h 1m 5s"},
		{90061, "1d 1h 1m"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatReply(t *testing.T) {
	if got := FormatReply(nil); got != "(nil)" {
		t.Errorf("nil = %q", got)
	}
	if got := FormatReply("OK"); got != "OK" {
		t.Errorf("string = %q", got)
	}
	if got := FormatReply(int64(3)); got != "(integer) 3" {
		t.Errorf("int = %q", got)
	}
	got := FormatReply([]any{"a", int64(1)})
	want := "1) a\n2) (integer) 1"
	if got != want {
		t.Errorf("array = %q, want %q", got, want)
	}
	if got := FormatReply([]any{}); got != "(empty array)" {
		t.Errorf("empty array = %q", got)
	}
}

func TestOperationsRequireConnection(t *testing.T) {
	c := New()
	if _, _, err := c.ScanPage(t.Context(), 0, "*", 1000); err != ErrNotConnected {
		t.Errorf("ScanPage err = %v", err)
	}
	if _, err := c.DeleteBatch(t.Context(), []string{"k"}); err != ErrNotConnected {
		t.Errorf("DeleteBatch err = %v", err)
	}
	if _, err := c.Info(t.Context()); err != ErrNotConnected {
		t.Errorf("Info err = %v", err)
	}
}
