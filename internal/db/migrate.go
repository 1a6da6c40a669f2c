package db

import (
	"fmt"

	"go_productlabel/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate runs database migrations for all models
func Migrate(db *gorm.DB, log *logrus.Entry) error {
	log.Info("Starting database migration...")

	models := []interface{}{
		&model.Product{},
		&model.EavAttribute{},
		&model.ProductAttributeValue{},
		&model.ProductLabel{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.WithField("tables", len(models)).Info("Database migration completed")
	return nil
}
