package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached results",
	Long: `Delete the cached aggregate. The next fetch starts from the newest
message. Your Gmail sign-in is kept.`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Clear(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("Cache cleared.")
	return nil
}
