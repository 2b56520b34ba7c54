// Package server provides the HTTP API of the ingestion service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] implements it on a chi mux, so path parameters such as {task_id} are read with chi.URLParam.
// [Middleware] wraps handlers in reverse order (last added executes first).
// [DefaultMiddleware] adds request ids, real client IPs, request logging and panic recovery.
//
// # Handlers
//
// Handlers implement the [Handler] interface and return their own [Route] table.
// [TaskHandler] serves job submission, status polling, listing, deletion and the health check.
// A submitted job is registered before the response is written and runs in the background.
//
// # Lifecycle
//
// [Server] serves until its context is cancelled.
// It then stops accepting requests and waits for dispatched jobs, both within one shutdown timeout.
package server
