// Package config provides configuration loading and validation for stowback.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (STOWBACK_ prefix, plus two legacy names)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with STOWBACK_ prefix:
//   - server.port → STOWBACK_SERVER_PORT
//   - storage.s3.access_key → STOWBACK_STORAGE_S3_ACCESS_KEY
//   - database.dsn → STOWBACK_DATABASE_DSN
//
// Two unprefixed names are still honoured when the prefixed one is unset:
//   - S3_BUCKET_NAME → storage.container
//   - COMPRESS → archive.compress
//
// # Configuration Structure
//
//   - Env: dev or prod; prod switches logging to JSON
//   - Server: port and timeouts
//   - Archive: whether archives are gzip-compressed
//   - Storage: backend (filesystem, s3, stowry), container and per-backend settings
//   - Database: optional job ledger (sqlite or postgres) and its table name
//   - Metrics: Prometheus endpoint toggle
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Struct tags cover ranges and enumerations. Rules that depend on the chosen
// storage backend or on the ledger being enabled are checked by Validate.
package config
