// Package task implements the background task orchestration subsystem:
// a registry that owns one asynchronous execution per task, a bounded
// worker pool that fans out per-page generation calls, and a progress
// ledger that serializes counter updates on the task row. Long-running
// generation work never blocks HTTP request handling; clients poll the
// task row for progress instead.
package task
