// Package store archives completed transcription runs in a SQLite database
// so they can be listed, re-exported, and inspected after the fact. A file
// lock on the archive directory keeps concurrent transcriber processes from
// sharing the database.
package store
