package db

import _ "embed"

// Schema is the full current schema, kept in lockstep with the migrations.
// Tests and ad-hoc tools apply it directly instead of running migrate.
//
//go:embed migrations/000001_init.up.sql
var Schema string

// ApplySchema creates all tables directly. Intended for tests and throwaway
// databases; production paths should use MigrateUp.
func (db *DB) ApplySchema() error {
	_, err := db.Exec(Schema)
	return err
}
