// Package events carries task request events from the services that
// accept generation work to the handlers that construct and submit the
// background tasks. The indirection keeps the service layer free of
// task-construction dependencies; dispatch is synchronous and
// in-process.
package events
