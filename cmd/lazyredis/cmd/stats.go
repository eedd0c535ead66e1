package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mazdak/lazyredis/internal/redisx"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server statistics",
	Long:  `Connect to the selected profile and print a parsed INFO snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := selectedProfile()
		if err != nil {
			return err
		}

		store := redisx.New()
		defer store.Close()
		if err := store.Connect(cmd.Context(), profile.URL, selectedDB(profile)); err != nil {
			return fmt.Errorf("connect %s: %w", profile.Name, err)
		}

		info, err := store.Info(cmd.Context())
		if err != nil {
			return fmt.Errorf("INFO: %w", err)
		}
		s := redisx.ParseStats(info)

		fmt.Printf("Server: %s (%s, %s)\n", profile.URL, profile.Name, s.Version)
		fmt.Printf("  Mode:        %s\n", s.Mode)
		fmt.Printf("  Role:        %s\n", s.Role)
		fmt.Printf("  Uptime:      %s\n", s.UptimeHuman)
		fmt.Printf("  Memory:      %s (peak %s, rss %s)\n", s.MemoryUsedHuman, s.MemoryPeakHuman, s.MemoryRSSHuman)
		fmt.Printf("  Clients:     %d (%d blocked)\n", s.ConnectedClients, s.BlockedClients)
		fmt.Printf("  Replicas:    %d\n", s.ConnectedSlaves)
		fmt.Printf("  Commands:    %d (%d/s)\n", s.TotalCommands, s.OpsPerSec)
		fmt.Printf("  Hit rate:    %.1f%% (%d hits / %d misses)\n", s.HitRate, s.KeyspaceHits, s.KeyspaceMisses)
		fmt.Printf("  CPU:         sys %.2f user %.2f\n", s.CPUSys, s.CPUUser)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
