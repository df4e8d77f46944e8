package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-triage/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema migrations to the configured store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbCfg := cfg.Database
		dbCfg.RunMigrations = true

		store, err := persistence.OpenStore(cmd.Context(), dbCfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Printf("migrations applied (%s)\n", store.Driver())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
