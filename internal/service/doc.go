// Package service implements the application's business logic between
// the HTTP layer and the stores. Services own transactions, translate
// store errors into service errors the API layer can map to status
// codes, and emit the events that start background generation tasks.
package service
