package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/dukaan/app/repositories"
	"github.com/shashiranjanraj/dukaan/config"
	"github.com/shashiranjanraj/dukaan/database/seeders"
	"github.com/shashiranjanraj/dukaan/pkg/database"
	"github.com/shashiranjanraj/dukaan/pkg/migration"
)

// bootDB loads config and opens the identity-store connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// bootMongo additionally opens the catalogue-store connection.
func bootMongo(ctx context.Context) error {
	if err := bootDB(); err != nil {
		return err
	}
	return database.ConnectMongo(ctx)
}

// dukaan migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending identity-store migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Running migrations…")
		return migration.New(database.DB).Run()
	},
}

// dukaan migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Rolling back last batch…")
		return migration.New(database.DB).Rollback()
	},
}

// dukaan migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		return migration.New(database.DB).Status()
	},
}

// dukaan seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if err := bootMongo(ctx); err != nil {
			return err
		}
		defer database.DisconnectMongo(context.Background()) //nolint:errcheck

		fmt.Println("Running seeders…")
		return seeders.RunAll(database.DB)
	},
}

// dukaan indexes creates the catalogue-store indexes.
var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the catalogue indexes (2dsphere and listing indexes)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if err := bootMongo(ctx); err != nil {
			return err
		}
		defer database.DisconnectMongo(context.Background()) //nolint:errcheck

		if err := repositories.NewShopRepository().EnsureIndexes(ctx); err != nil {
			return err
		}
		if err := repositories.NewProductRepository().EnsureIndexes(ctx); err != nil {
			return err
		}
		fmt.Println("✅  Indexes ensured.")
		return nil
	},
}
