package migration

import (
	"github.com/CCxPL/task-management-system/internal/config"
	"github.com/CCxPL/task-management-system/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The embedded migrations target postgres. Other dialects are for
		// tests and rely on AutoMigrate instead.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if cfg.SeedDefaultOrgAndAdmin {
			return seed.EnsureDefaultOrgAndAdmin(conn)
		}
		return nil
	}),
)
