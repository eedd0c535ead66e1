package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List connection profiles",
	Long: `List the connection profiles from the config file.

Profiles marked dev allow destructive bulk operations (purge, seed,
FLUSHDB); all other profiles refuse them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Config: %s\n\n", cfg.Path)
		for i, p := range cfg.Connections {
			marker := " "
			if i == 0 && profileName == "" || p.Name == profileName {
				marker = "*"
			}
			trust := ""
			if p.Trusted() {
				trust = "  [dev]"
			}
			fmt.Printf("%s %-16s %s  db:%d%s\n", marker, p.Name, p.URL, p.Database(), trust)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
