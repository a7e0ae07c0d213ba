// Package server exposes conversion jobs over HTTP.
//
// Routes:
//
//	POST /upload         multipart "file" (.doc/.docx) and optional "format"
//	GET  /status/{id}    job state
//	GET  /download/{id}  result of a completed job as <original-name>.txt
//	GET  /stats          number of completed jobs
//	GET  /health         liveness
//
// User-facing messages are in Uzbek; errors are RFC 7807 problem documents.
package server
