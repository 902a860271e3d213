// Package repository implements the data access layer for the application.
package repository

import (
	"strings"

	"foodconnect/internal/database"

	"gorm.io/gorm"
)

func readDB(primary *gorm.DB) *gorm.DB {
	// A repository rebased onto a transaction must read through the
	// transaction handle so it observes its own uncommitted writes.
	if primary.Statement != nil {
		if _, inTx := primary.Statement.ConnPool.(gorm.TxCommitter); inTx {
			return primary
		}
	}
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
