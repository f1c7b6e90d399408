// Package database connects the job ledger to a SQL backend.
//
// The ledger keeps one row per finished archive or restore job. It is
// optional: a Service without a JobRepo simply records nothing.
//
// # Supported Backends
//
//   - PostgreSQL: pgx connection pool, suited to shared deployments
//   - SQLite: modernc.org/sqlite, a single file next to the daemon
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "stowback.db",
//	    Tables: stowback.Tables{Jobs: "stowback_jobs"},
//	}
//
//	repo, cleanup, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
// The Connect function automatically:
//   - Opens the database connection
//   - Runs schema migrations
//   - Validates the schema
//   - Returns a ready-to-use JobRepo
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
