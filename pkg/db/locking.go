package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate adds a row-level write lock to the query. The sqlite test harness
// does not speak FOR UPDATE, so the clause is skipped there; sqlite serializes
// writers at the database level anyway.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
