package database

import "github.com/cardops/card-issuance-api/internal/config"

// DBQuery is a SQL statement with optional per-dialect variants.
// Statements use '?' placeholders and are rebound for the active driver.
type DBQuery struct {
	// ID identifies the query in logs and errors.
	ID string
	// Query is the default statement, used for MySQL and whenever no variant exists.
	Query string
	// PostgresQuery overrides Query on PostgreSQL.
	PostgresQuery string
}

// GetQuery returns the statement for the given database type
func (q DBQuery) GetQuery(dbType string) string {
	if dbType == config.DatabaseTypePostgres && q.PostgresQuery != "" {
		return q.PostgresQuery
	}
	return q.Query
}

// SQL returns the statement for this connection's dialect, rebound to its placeholder style
func (db *DB) SQL(q DBQuery) string {
	return db.Rebind(q.GetQuery(db.dbType))
}
