package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mazdak/lazyredis/internal/redisx"
	"github.com/mazdak/lazyredis/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive key browser",
	Long: `Open the interactive terminal UI for browsing the keyspace.

Navigation:
  ↑/k, ↓/j    Move up/down
  Enter       Open folder / load key value
  Backspace   Up one level
  Esc         Back to root / close overlay
  Tab         Switch tree/value focus
  /           Fuzzy search all keys
  Space       Mark entry for multi-delete
  d / D       Delete under cursor / delete marked
  y / Y       Copy key name / value
  : or c      Raw command prompt
  p           Switch connection profile
  b           Switch logical database
  s           Server stats overlay
  r           Rescan keyspace
  q           Quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func runTUI(cmd *cobra.Command) error {
	store := redisx.New()
	defer store.Close()

	model := tui.New(store, tui.Options{
		Config:  cfg,
		Profile: profileName,
		DB:      dbOverride,
		Version: Version,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
