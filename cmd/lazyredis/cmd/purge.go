package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mazdak/lazyredis/internal/redisx"
)

var purgeYes bool

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Flush the selected database",
	Long: `Remove every key from the selected logical database (FLUSHDB).

Refused unless the selected profile is marked dev in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := selectedProfile()
		if err != nil {
			return err
		}
		if !profile.Trusted() {
			return fmt.Errorf("purge refused: profile %q is not marked dev", profile.Name)
		}

		db := selectedDB(profile)
		if !purgeYes {
			ok, err := confirmDestructive(fmt.Sprintf(
				"This removes ALL keys from db %d on %s (%s).", db, profile.Name, profile.URL))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
		}

		store := redisx.New()
		defer store.Close()
		if err := store.Connect(cmd.Context(), profile.URL, db); err != nil {
			return fmt.Errorf("connect %s: %w", profile.Name, err)
		}

		logger.Info("flushing database", "profile", profile.Name, "db", db)
		if err := store.FlushDB(cmd.Context()); err != nil {
			return fmt.Errorf("flush db: %w", err)
		}
		fmt.Printf("Purged db %d on %s.\n", db, profile.Name)
		return nil
	},
}

// confirmDestructive prompts for an explicit "yes" on a terminal. Without a
// terminal the prompt cannot be answered, so the operation fails closed and
// points at --yes.
func confirmDestructive(warning string) (bool, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false, fmt.Errorf("stdin is not a terminal; pass --yes to confirm")
	}
	fmt.Printf("%s\nType 'yes' to continue: ", warning)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "yes", nil
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false, "skip the confirmation prompt")
}
