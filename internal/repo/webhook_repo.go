// Package repo implements the data persistence layer for webhook records,
// backed by GORM. This file provides the two write paths of the service.
//
// The repository follows a "thin" approach: it performs persistence only,
// leaving payload mapping to the mapping package and outcome reporting to
// the services package.
//
// Error semantics:
//   - Duplicate contacts are not errors. InsertContactIfAbsent relies on the
//     unique index on contacts.contact_id and a single conditional INSERT,
//     and reports the outcome through the affected row count.
//   - Any other DB error (connectivity, constraints, timeouts) is returned
//     unchanged.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/collin-ho/vs-mysql/internal/domain"
)

// InsertCallHistory appends a call-history row. Call events have no natural
// key, so every call inserts.
func InsertCallHistory(ctx context.Context, db *gorm.DB, rec *domain.CallHistory) error {
	return db.WithContext(ctx).Create(rec).Error
}

// InsertContactIfAbsent inserts c unless a row with the same contact_id
// already exists. It returns the number of rows written: 1 for a new
// contact, 0 when the contact was already stored.
//
// The existence check and the write are one statement (INSERT IGNORE on
// MySQL, INSERT OR IGNORE on SQLite), so two concurrent webhooks for the same
// new contact cannot both insert.
func InsertContactIfAbsent(ctx context.Context, db *gorm.DB, c *domain.Contact) (int64, error) {
	res := db.WithContext(ctx).Clauses(insertIgnore(db)).Create(c)
	return res.RowsAffected, res.Error
}

// insertIgnore returns the dialect's INSERT modifier that skips rows
// violating a unique index.
func insertIgnore(db *gorm.DB) clause.Insert {
	if db.Dialector.Name() == "sqlite" {
		return clause.Insert{Modifier: "OR IGNORE"}
	}
	return clause.Insert{Modifier: "IGNORE"}
}
