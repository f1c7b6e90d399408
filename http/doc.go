// Package http exposes the archive and restore pipelines over HTTP.
//
// Every request path outside the reserved /-/ prefix is taken to be an
// absolute filesystem path on the host running the server:
//
//	GET  /srv/www    archive /srv/www to object key "srv/www"
//	PUT  /srv/www    restore it, emptying the directory first
//	POST /srv/www    restore it, merging into what is there
//
// A trailing slash marks the request as aimed at a directory; the type stored
// in the object metadata still decides how a restore is laid out.
//
// # Service Endpoints
//
//	GET /-/healthz        liveness check
//	GET /-/jobs           job ledger, newest first (prefix, limit, cursor)
//	GET /-/jobs/{id}      a single job record
//	GET /-/metrics        Prometheus metrics, when a handler is configured
//
// # Responses
//
// Success bodies carry the finished job:
//
//	{"success": true, "job": {"id": "...", "kind": "archive", ...}}
//
// Failures carry the error kind, the message and, when the job was started,
// its record:
//
//	{"success": false, "error": "source_not_found", "message": "..."}
//
// Missing sources and objects map to 404, bad paths and unsupported source
// types to 400, a disabled job ledger to 501 and everything else to 500.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":5708", handler.Router())
//
// # Middleware
//
// RequestLogger writes one slog line per request with method, path, status,
// size and duration. Optional CORS is configured through CORSConfig.
package http
