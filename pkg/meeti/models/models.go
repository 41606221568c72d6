package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: Category and User must be migrated before the models referencing them
func AllModels() []interface{} {
	return []interface{}{
		&Category{},
		&User{},
		&Group{},
		&Meeting{},
		&Attendance{},
		&Comment{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
