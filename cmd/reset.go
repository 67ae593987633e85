package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadopc/lapse/internal/store"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase the whole ledger",
	Long: `Deletes every tracked day and the streak counters, then writes the
empty ledger back. Also the way out of a corrupt ledger file. Requires
--yes; there is no undo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return errors.New("this erases all tracked data; re-run with --yes to confirm")
		}

		st, cfg, err := open()
		if errors.Is(err, store.ErrCorrupt) {
			// The file cannot be loaded, so remove it; the next run
			// starts from an empty ledger.
			_, ledgerPath, perr := paths()
			if perr != nil {
				return perr
			}
			if rerr := os.Remove(ledgerPath); rerr != nil {
				return fmt.Errorf("remove corrupt ledger: %w", rerr)
			}
			fmt.Println("Corrupt ledger removed.")
			return nil
		}
		if err != nil {
			return err
		}
		defer st.Close()

		if err := gate(cfg); err != nil {
			return err
		}

		if err := st.Clear(); err != nil {
			return err
		}
		fmt.Println("Ledger cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm erasing all data")
	rootCmd.AddCommand(resetCmd)
}
