package redisx

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Stats is a snapshot of the server's INFO output, parsed into the fields
// the stats overlay displays.
type Stats struct {
	MemoryUsed      int64
	MemoryUsedHuman string
	MemoryPeak      int64
	MemoryPeakHuman string
	MemoryRSS       int64
	MemoryRSSHuman  string

	ConnectedClients int64
	BlockedClients   int64

	TotalCommands int64
	OpsPerSec     int64

	KeyspaceHits   int64
	KeyspaceMisses int64
	HitRate        float64

	UptimeSeconds int64
	UptimeHuman   string

	Version         string
	Mode            string
	Role            string
	ConnectedSlaves int64

	CPUSys  float64
	CPUUser float64

	LastUpdated time.Time
}

// ParseStats parses an INFO blob. Missing or malformed fields keep their
// zero values; unknown fields are ignored.
func ParseStats(info string) *Stats {
	kv := make(map[string]string)
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if key, value, ok := strings.Cut(line, ":"); ok {
			kv[key] = value
		}
	}

	s := &Stats{
		Version:     "Unknown",
		Mode:        "Unknown",
		Role:        "Unknown",
		LastUpdated: time.Now(),
	}

	s.MemoryUsed = parseInt(kv["used_memory"])
	s.MemoryUsedHuman = FormatBytes(s.MemoryUsed)
	s.MemoryPeak = parseInt(kv["used_memory_peak"])
	s.MemoryPeakHuman = FormatBytes(s.MemoryPeak)
	s.MemoryRSS = parseInt(kv["used_memory_rss"])
	s.MemoryRSSHuman = FormatBytes(s.MemoryRSS)

	s.ConnectedClients = parseInt(kv["connected_clients"])
	s.BlockedClients = parseInt(kv["blocked_clients"])
	s.TotalCommands = parseInt(kv["total_commands_processed"])
	s.OpsPerSec = parseInt(kv["instantaneous_ops_per_sec"])

	s.KeyspaceHits = parseInt(kv["keyspace_hits"])
	s.KeyspaceMisses = parseInt(kv["keyspace_misses"])
	if total := s.KeyspaceHits + s.KeyspaceMisses; total > 0 {
		s.HitRate = float64(s.KeyspaceHits) / float64(total) * 100
	}

	s.UptimeSeconds = parseInt(kv["uptime_in_seconds"])
	s.UptimeHuman = FormatDuration(s.UptimeSeconds)

	if v := kv["redis_version"]; v != "" {
		s.Version = v
	}
	if v := kv["redis_mode"]; v != "" {
		s.Mode = v
	}
	if v := kv["role"]; v != "" {
		s.Role = v
	}
	s.ConnectedSlaves = parseInt(kv["connected_slaves"])

	s.CPUSys = parseFloat(kv["used_cpu_sys"])
	s.CPUUser = parseFloat(kv["used_cpu_user"])

	return s
}

// Age returns how old the snapshot is.
func (s *Stats) Age() time.Duration {
	return time.Since(s.LastUpdated)
}

// Stale reports whether the snapshot is older than maxAge, driving the
// periodic refresh between keystrokes.
func (s *Stats) Stale(maxAge time.Duration) bool {
	return s.Age() > maxAge
}

func parseInt(v string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}

// FormatBytes renders a byte count in 1024-based units ("1.5 MB").
func FormatBytes(n int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(n)
	idx := 0
	for size >= 1024 && idx < len(units)-1 {
		size /= 1024
		idx++
	}
	if idx == 0 {
		return fmt.Sprintf("%d %s", n, units[0])
	}
	return fmt.Sprintf("%.1f %s", size, units[idx])
}

// FormatDuration renders an uptime in the largest applicable units
// ("2d 3h 4m", "3h 4m 5s", "4m 5s", "5s").
func FormatDuration(seconds int64) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
