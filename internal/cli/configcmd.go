package cli

import (
	"fmt"

	"github.com/existflow/carnet/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().String("server", "", "Set the recipe server URL")
	configCmd.Flags().Bool("confirm-delete", true, "Require confirmation before deleting")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	changed := false
	if cmd.Flags().Changed("server") {
		cfg.ServerURL, _ = cmd.Flags().GetString("server")
		changed = true
	}
	if cmd.Flags().Changed("confirm-delete") {
		cfg.ConfirmDelete, _ = cmd.Flags().GetBool("confirm-delete")
		changed = true
	}

	if changed {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println("✅ Config saved.")
		return nil
	}

	fmt.Printf("Server:         %s\n", cfg.ServerURL)
	fmt.Printf("Confirm delete: %v\n", cfg.ConfirmDelete)
	fmt.Printf("Log level:      %s\n", cfg.LogLevel)
	fmt.Printf("Log file:       %s\n", cfg.LogFile)
	return nil
}
