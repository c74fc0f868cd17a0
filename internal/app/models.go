package app

import (
	"property_connect_backend/internal/config"
	"property_connect_backend/internal/favorite"
	"property_connect_backend/internal/platform/database"
	"property_connect_backend/internal/profile"
	"property_connect_backend/internal/property"
	"property_connect_backend/internal/propertyview"
	"property_connect_backend/internal/settings"
	"property_connect_backend/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&profile.Profile{},
		&profile.AdminBootstrap{},
		&property.Property{},
		&favorite.Favorite{},
		&propertyview.PropertyView{},
		&settings.AppSettings{},
	}
}

// NewDatabase opens the database, migrates it when DB_AUTO_MIGRATE is set and returns
// a cleanup func that closes the pool.
func NewDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(db, logger, Models()...); err != nil {
			database.CloseGORMDB(db, logger)
			return nil, nil, err
		}
	}
	return db, func() { database.CloseGORMDB(db, logger) }, nil
}
