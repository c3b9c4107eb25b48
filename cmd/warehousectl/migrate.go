package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/warehouse-api/internal/infrastructure/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones del esquema PostgreSQL (embebidas en el binario)",
	}
	cmd.PersistentFlags().String("database-url", "", "DSN de PostgreSQL (por defecto DATABASE_URL / DB_*)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Aplica las migraciones pendientes",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(mg *postgres.Migrator) error {
					applied, err := mg.Up()
					if err != nil {
						return err
					}
					if !applied {
						fmt.Fprintln(cmd.OutOrStdout(), "sin cambios")
						return nil
					}
					return printVersion(cmd, mg)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revierte todas las migraciones",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(mg *postgres.Migrator) error {
					if err := mg.Down(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "esquema revertido")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Muestra la versión actual del esquema",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(mg *postgres.Migrator) error {
					return printVersion(cmd, mg)
				})
			},
		},
	)
	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(*postgres.Migrator) error) error {
	dsn, _ := cmd.Flags().GetString("database-url")
	if dsn == "" {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dsn = cfg.DB.ConnectionString()
	}
	mg, err := postgres.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

func printVersion(cmd *cobra.Command, mg *postgres.Migrator) error {
	v, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "versión %d", v)
	if dirty {
		fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
