// Package history records cracking sessions and the credentials they
// reported in SQLite.
//
// The Store is written from two places: the runner calls BeginSession when a
// child launches, and a Sink attached to the event hub stores results, state
// changes, errors and exits as they are published. Result rows are unique per
// (session, hash) so replays of the same event are harmless.
//
// Schema changes bump schemaVersion in schema.go; users delete the database
// to adopt the new schema.
package history
