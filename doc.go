// Package stowback exposes filesystem paths as backup and restore endpoints
// backed by an object store.
//
// Archiving a path tars the file or directory tree, optionally gzip-compresses
// it, and streams it into the store as a single object tagged with metadata
// describing how it was built. Restoring downloads that object and extracts it
// back onto the filesystem, either merging into the existing tree or replacing
// it.
//
// # Key Components
//
//   - Service: Runs archive and restore jobs against an ObjectStore
//   - ObjectStore: Interface for archive storage (filesystem, S3, Stowry)
//   - JobRepo: Interface for the job ledger (PostgreSQL, SQLite)
//   - JobObserver: Hook notified of finished jobs (Prometheus metrics)
//   - Resolve: Maps a request path onto a source path and object key
//
// # Object Keys
//
// The object key of a path is the cleaned absolute path without its leading
// slash, so /var/www/ and /var/www share the key var/www. A trailing slash on
// the request only records intent; the filesystem (on archive) or the stored
// metadata (on restore) decides whether the path is a directory.
//
// # Example Usage
//
//	service, err := stowback.NewService(store, stowback.ServiceConfig{Compress: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Back up a directory
//	job, err := service.Archive(ctx, "/var/www/")
//
//	// Put it back, removing anything added since
//	job, err = service.Restore(ctx, "/var/www/", stowback.ModeReplace)
//
// See the storage package for object store backends, the database package
// for the job ledger and the http package for the REST API.
package stowback
