// Package queue is the job registry of the conversion pipeline.
//
// Every submitted font file becomes a Job stored in an in-memory SQLite
// database that lives exactly as long as the Store. Jobs carry their source
// bytes, target format, status, and either the produced artifacts or an error
// message. All status changes pass through nextStatus, which encodes the full
// transition table; the store never writes a status the table does not allow.
//
// The Store also holds the process-wide batch state (running flag and
// progress) used by the workflow manager.
//
// The database is transient: nothing is written to disk and the schema is
// created fresh on Open.
package queue
