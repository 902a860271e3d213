package database

import "foodconnect/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Media{},
		&models.Tag{},
		&models.PostTag{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Report{},
	}
}
