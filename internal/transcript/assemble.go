package transcript

import (
	"fmt"
	"time"
)

// Assemble cross-validates the validated records and builds the immutable
// aggregate. Assembly either returns a transcription satisfying every
// invariant or a *ValidationError; nothing partial escapes.
//
// A segment voice_id with no speaker record is accepted: such voices resolve
// to the unknown sentinel at query time rather than failing the run.
func Assemble(segments []Segment, speakers map[int]Speaker, rows []TranslationRow, meta Metadata) (*Transcription, error) {
	for i, segment := range segments {
		if segment.VoiceID <= 0 {
			return nil, &ValidationError{Field: "voice_id", Record: i, Reason: "dangling voice_id"}
		}
		if segment.End.Before(segment.Start) {
			return nil, &ValidationError{
				Field:  "end_time",
				Record: i,
				Reason: fmt.Sprintf("segment ends at %s before it starts at %s", segment.End, segment.Start),
			}
		}
		if i > 0 && segment.Start.Before(segments[i-1].Start) {
			return nil, &ValidationError{Field: "start_time", Record: i, Reason: "unordered segments"}
		}
	}

	for voiceID, speaker := range speakers {
		if voiceID != speaker.VoiceID {
			return nil, &ValidationError{
				Field:  "voice_id",
				Record: -1,
				Reason: fmt.Sprintf("speaker map key %d does not match record voice_id %d", voiceID, speaker.VoiceID),
			}
		}
	}

	if len(rows) > 0 {
		if len(rows) != len(segments) {
			return nil, &ValidationError{
				Record: -1,
				Reason: fmt.Sprintf("translation misalignment: %d rows for %d segments", len(rows), len(segments)),
			}
		}
		for i, row := range rows {
			if row.LineNumber != i+1 {
				return nil, &ValidationError{
					Field:  "line_number",
					Record: i,
					Reason: fmt.Sprintf("translation misalignment: expected line %d, got %d", i+1, row.LineNumber),
				}
			}
		}
	}

	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}

	t := &Transcription{
		segments: make([]Segment, len(segments)),
		speakers: make(map[int]Speaker, len(speakers)),
		rows:     make([]TranslationRow, len(rows)),
		meta:     meta,
	}
	copy(t.segments, segments)
	copy(t.rows, rows)
	for voiceID, speaker := range speakers {
		t.speakers[voiceID] = speaker
	}
	return t, nil
}
