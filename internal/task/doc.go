// Package task implements background job processing for the chapter
// pipelines. A Runner consumes submitted tasks from a buffered channel with
// a pool of workers; the two task types (translation, title generation)
// drive one job record's target-chapter queue to empty, calling the
// generation provider and the content store per chapter.
//
// Coordination with the HTTP layer happens entirely through the persisted
// job record: the worker re-reads it at every chapter boundary, which is
// the sole pause/cancel checkpoint. The worker owns the progress and log
// fields; the supervisor owns the status field.
package task
