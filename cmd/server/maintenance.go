package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/wine-dine/internal/database"
	"github.com/iliyamo/wine-dine/internal/handler"
	"github.com/iliyamo/wine-dine/internal/model"
	"github.com/iliyamo/wine-dine/internal/repository"
	"github.com/iliyamo/wine-dine/internal/utils"
)

var (
	adminEmail    string
	adminPassword string
	seedFile      string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded SQL migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return database.Migrate(cmd.Context(), db, func(name string) {
			logger.Info("migration applied", zap.String("file", name))
		})
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the single admin account",
	Long: `Creates the admin identity used to sign in to the back office.
Only one admin may exist; the command fails if one is already present.

Example:
  server create-admin --email owner@winedine.example --password 's3cret!'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !model.ValidEmail(adminEmail) {
			return errors.New("invalid email")
		}
		if err := utils.CheckPassword(adminPassword); err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := repository.NewUserRepo(db).CreateAdmin(cmd.Context(), adminEmail, adminPassword, cfg.BcryptCost)
		if err != nil {
			return err
		}
		logger.Info("admin created", zap.Uint64("user_id", id), zap.String("email", adminEmail))
		return nil
	},
}

var seedMenuCmd = &cobra.Command{
	Use:   "seed-menu",
	Short: "Load menu items from a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		items, err := loadSeedFile(seedFile)
		if err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := seedMenu(cmd.Context(), repository.NewMenuRepo(db), items)
		if err != nil {
			return err
		}
		logger.Info("menu seeded", zap.Int("items", n), zap.String("file", seedFile))
		return nil
	},
}

// loadSeedFile reads and validates every entry of a menu YAML file.  All
// invalid entries are reported together and nothing is returned for them.
func loadSeedFile(path string) ([]model.MenuItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var inputs []model.MenuItemInput
	if err := yaml.Unmarshal(raw, &inputs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	items := make([]model.MenuItem, 0, len(inputs))
	var errs []error
	for i, in := range inputs {
		it, err := in.Validate()
		if err != nil {
			errs = append(errs, fmt.Errorf("item %d (%q): %w", i+1, in.Name, err))
			continue
		}
		items = append(items, it)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return items, nil
}

func seedMenu(ctx context.Context, store handler.MenuStore, items []model.MenuItem) (int, error) {
	for i := range items {
		if err := store.Create(ctx, &items[i]); err != nil {
			return i, fmt.Errorf("create %q: %w", items[i].Name, err)
		}
	}
	return len(items), nil
}
