package database

import "gorm.io/gorm"

var readReplica *gorm.DB

// GetReadDB returns the read-replica connection, or nil when none is configured.
// Callers fall back to the primary when this returns nil.
func GetReadDB() *gorm.DB {
	return readReplica
}

// SetReadDB registers a read-replica connection for read-path queries.
func SetReadDB(db *gorm.DB) {
	readReplica = db
}
