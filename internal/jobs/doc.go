// Package jobs tracks background conversions for the HTTP service.
//
// A Job moves queued → processing → completed or error. Store persists
// jobs (MemoryStore for tests and single-process use, PostgresStore for
// deployments) and rejects transitions outside that graph. Runner executes
// conversions on goroutines through a doc2quiz.ConverterPool and writes
// results to <outputDir>/<id>.txt.
package jobs
