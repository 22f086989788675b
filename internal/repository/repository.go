// Package repository stores catalog entities in PostgreSQL.
package repository

import (
	"github.com/google/uuid"

	"github.com/belovedzguard/beloved-api/pkg/db"
	"github.com/belovedzguard/beloved-api/pkg/errors"
)

// validID reports whether id can name a row. Malformed ids match nothing.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validIDs drops the ids that cannot name a row, keeping order.
func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			out = append(out, id)
		}
	}
	return out
}

// dbError maps a driver error to the application error currency. A no-rows
// error becomes notFound.
func dbError(err error, notFound *errors.Error) error {
	if err == nil {
		return nil
	}
	if db.IsNoRows(err) {
		return notFound
	}
	return errors.ErrDatabaseError.WithError(err)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
