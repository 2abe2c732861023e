// Package models defines persisted entities and the repository interface for zipx.
//
// [Run] records the outcome of one extraction run: the archive and selected entries, the final
// phase and failure reason, the remote extraction id and the progress reached. Records are written
// when a run reaches a terminal phase and are listed by `zipx history`.
//
// All persistent entities implement [Model], providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
