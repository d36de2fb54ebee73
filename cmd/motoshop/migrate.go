package main

import (
	"fmt"

	"github.com/siyaamtanzeel/Motoshop/internal/adapter/repo"
	"github.com/siyaamtanzeel/Motoshop/internal/bootstrap"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the MySQL tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := bootstrap.OpenDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repo.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Println("schema up to date")
			return nil
		},
	}
}
