package repository

import "gorm.io/gorm"

// AutoMigrate syncs the schema for every table this package owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&profileModel{},
		&tempCodeModel{},
		&fileModel{},
	)
}
