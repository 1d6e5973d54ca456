package test

import (
	"log"

	"tasktracker/internal/adapter/database/sqlite"
)

// InitTestDB opens a migrated in-memory SQLite database.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.NewDB(sqlite.Options{Path: ":memory:"})

	if err != nil {
		log.Fatal(err)
	}

	return db
}
