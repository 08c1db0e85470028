package main

import "database/sql"

// initSchema creates the token table on first use. The database only holds
// oauth tokens; imported events are never persisted locally.
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS tokens (
		account_name TEXT PRIMARY KEY,
		token TEXT)`)
	return err
}
