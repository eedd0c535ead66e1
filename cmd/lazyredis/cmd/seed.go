package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mazdak/lazyredis/internal/redisx"
	"github.com/mazdak/lazyredis/internal/seed"
)

var seedYes bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill a dev database with test data",
	Long: `Flush the selected database and fill it with a deterministic test
dataset: nested namespaces, every supported value type, large
collections, streams, and empty collections.

Refused unless the selected profile is marked dev in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := selectedProfile()
		if err != nil {
			return err
		}
		if !profile.Trusted() {
			return fmt.Errorf("seed refused: profile %q is not marked dev", profile.Name)
		}

		db := selectedDB(profile)
		if !seedYes {
			ok, err := confirmDestructive(fmt.Sprintf(
				"This flushes db %d on %s (%s) and writes test data.", db, profile.Name, profile.URL))
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

		if err := seed.Run(cmd.Context(), store, logger); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Printf("Seeded db %d on %s.\n", db, profile.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVarP(&seedYes, "yes", "y", false, "skip the confirmation prompt")
}
