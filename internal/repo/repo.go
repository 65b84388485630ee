// Package repo implements the data persistence layer for domain entities,
// backed by GORM.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only persistence
// and query composition.
//
// Write semantics come in two flavours, both keyed by the entity's natural
// unique index:
//
//   - Insert*IfAbsent: INSERT ... ON CONFLICT DO NOTHING. Used for backfilled
//     defaults, so the first writer wins a race and later writers no-op.
//   - Upsert*: INSERT ... ON CONFLICT DO UPDATE. Used for ingested readings,
//     where a later run is the more authoritative value.
//
// Error semantics:
//   - Missing rows are reported as ErrNotFound (gorm.ErrRecordNotFound).
//   - Everything else is the raw gorm error.
package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique-key violation on insert.
var ErrDuplicate = errors.New("duplicate")

func columns(names ...string) []clause.Column {
	out := make([]clause.Column, len(names))
	for i, n := range names {
		out[i] = clause.Column{Name: n}
	}
	return out
}

// onConflictDoNothing builds the first-writer-wins clause for key.
func onConflictDoNothing(key ...string) clause.OnConflict {
	return clause.OnConflict{Columns: columns(key...), DoNothing: true}
}

// onConflictUpdate builds the last-writer-wins clause for key, overwriting set.
func onConflictUpdate(key []string, set ...string) clause.OnConflict {
	return clause.OnConflict{Columns: columns(key...), DoUpdates: clause.AssignmentColumns(set)}
}

// isDuplicate reports unique violations. glebarez/sqlite often returns
// plain-text errors instead of gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value")
}
