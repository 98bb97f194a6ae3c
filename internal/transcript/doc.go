// Package transcript converts the structured payloads extracted from a model
// reply into typed records and assembles them into the Transcription
// aggregate.
//
// Validation happens in two passes. ParseSegments, ParseSpeakers, and
// ParseTranslation coerce one JSON payload each, checking field presence,
// types, and ranges per record; the first violation rejects the whole
// payload with a *ValidationError naming the record and field. Assemble then
// enforces the cross-entity invariants (segment ordering, start before end,
// translation alignment) and freezes the result.
//
// An assembled Transcription is immutable and safe for concurrent reads.
package transcript
