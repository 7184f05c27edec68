// Package workflow drives batch conversion of queued font jobs.
//
// The Manager snapshots pending jobs, dispatches each one through the job
// registry, submits it to the transcoder, and applies exactly one result per
// dispatched job. Failures stay local to their job: a failed conversion is
// recorded on that job and the run moves on. Progress is reported as the share
// of completed jobs and never moves backwards. When the caller cancels the run,
// no further jobs are dispatched and in-flight jobs are returned to pending.
//
// Status, progress, result, and error events are published on an EventBus so
// a front end can follow a run without polling the registry.
package workflow
