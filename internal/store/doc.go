// Package store persists game records on disk.
//
// Each game is one file named <id>.mcg in the store directory: a small
// fixed header followed by a zstd-compressed, big-endian body (see
// encoding.go). Writes go to a temporary file that is renamed into place, so
// a record on disk is always either the old or the new version.
//
// Recently used records are kept encoded in a FIFO cache. The store does not
// serialize read-modify-write cycles on one game; that is the caller's job.
package store
