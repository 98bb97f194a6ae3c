package transcript

import (
	"iter"
	"sort"
	"time"

	"github.com/dollyto/multimodal-video-transcriber/internal/timecode"
)

// NotFoundMarker is the placeholder the model is instructed to emit for
// speaker details it cannot determine.
const NotFoundMarker = "?"

// Segment is one diarized utterance with its timecode bounds. The delivery
// fields describe how the line is spoken; the model fills them when audible,
// so each may be empty or the not-found marker.
type Segment struct {
	Start       timecode.Timecode `json:"start_time"`
	End         timecode.Timecode `json:"end_time"`
	Text        string            `json:"text"`
	VoiceID     int               `json:"voice_id"`
	Emotion     string            `json:"emotion,omitempty"`
	Tone        string            `json:"tone,omitempty"`
	EnergyLevel string            `json:"energy_level,omitempty"`
	SpeechRate  string            `json:"speech_rate,omitempty"`
}

// Speaker describes one distinct voice identified in the video. Fields the
// model could not determine carry NotFoundMarker.
type Speaker struct {
	VoiceID     int    `json:"voice_id"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	RoleInVideo string `json:"role_in_video"`
}

// Known reports whether the speaker has a usable name.
func (s Speaker) Known() bool {
	return s.Name != "" && s.Name != NotFoundMarker
}

// Unknown returns the sentinel speaker for a voice id with no speaker record.
func Unknown(voiceID int) Speaker {
	return Speaker{
		VoiceID:     voiceID,
		Name:        NotFoundMarker,
		Company:     NotFoundMarker,
		Position:    NotFoundMarker,
		RoleInVideo: NotFoundMarker,
	}
}

// TranslationRow is one line of the optional translation table, aligned 1:1
// with the segment list.
type TranslationRow struct {
	LineNumber int    `json:"line_number"`
	Speaker    string `json:"speaker"`
	SourceText string `json:"source_text"`
	TargetText string `json:"target_text"`
}

// Metadata records where a transcription came from and how it was produced.
type Metadata struct {
	RunID          string    `json:"run_id"`
	VideoRef       string    `json:"video_ref"`
	Model          string    `json:"model"`
	CreatedAt      time.Time `json:"created_at"`
	FPS            float64   `json:"fps,omitempty"`
	TimecodeStyle  string    `json:"timecode_style"`
	TargetLanguage string    `json:"target_language,omitempty"`
	// LanguageDetected is the primary spoken language of the video, when
	// known. Optional; preserved through the archive and document exports.
	LanguageDetected string `json:"language_detected,omitempty"`
}

// Transcription is the assembled, read-only aggregate for one pipeline run.
// It owns its segments, speakers, and translation rows exclusively; all
// accessors return copies, so a value is safe for unsynchronized concurrent
// reads.
type Transcription struct {
	segments []Segment
	speakers map[int]Speaker
	rows     []TranslationRow
	meta     Metadata
}

// Metadata returns the source metadata captured at assembly.
func (t *Transcription) Metadata() Metadata { return t.meta }

// Segments returns the ordered segment list.
func (t *Transcription) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Speakers returns the speaker records ordered by voice id.
func (t *Transcription) Speakers() []Speaker {
	out := make([]Speaker, 0, len(t.speakers))
	for _, speaker := range t.speakers {
		out = append(out, speaker)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoiceID < out[j].VoiceID })
	return out
}

// TranslationRows returns the translation table, or nil when translation was
// not requested.
func (t *Transcription) TranslationRows() []TranslationRow {
	if len(t.rows) == 0 {
		return nil
	}
	out := make([]TranslationRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// SegmentCount returns the number of segments.
func (t *Transcription) SegmentCount() int { return len(t.segments) }

// SpeakerCount returns the number of identified speakers.
func (t *Transcription) SpeakerCount() int { return len(t.speakers) }

// SpeakerByVoiceID resolves a voice id to its speaker record, or to the
// unknown sentinel when the model never described that voice. It never fails.
func (t *Transcription) SpeakerByVoiceID(voiceID int) Speaker {
	if speaker, ok := t.speakers[voiceID]; ok {
		return speaker
	}
	return Unknown(voiceID)
}

// SegmentsBySpeaker returns the segments attributed to the named speaker as a
// restartable sequence. Ranging over it multiple times replays the same
// segments; an unknown name yields nothing.
func (t *Transcription) SegmentsBySpeaker(name string) iter.Seq[Segment] {
	voiceID, found := 0, false
	for _, speaker := range t.speakers {
		if speaker.Name == name {
			voiceID, found = speaker.VoiceID, true
			break
		}
	}
	return func(yield func(Segment) bool) {
		if !found {
			return
		}
		for _, segment := range t.segments {
			if segment.VoiceID != voiceID {
				continue
			}
			if !yield(segment) {
				return
			}
		}
	}
}

// Duration returns the end timecode of the latest segment, or zero for an
// empty transcript.
func (t *Transcription) Duration() timecode.Timecode {
	var max timecode.Timecode
	for _, segment := range t.segments {
		if segment.End.After(max) {
			max = segment.End
		}
	}
	return max
}

// Document is the serializable projection of a Transcription, used by the run
// archive and JSON export. Rebuilding from a Document goes back through
// Assemble so the invariants hold again.
type Document struct {
	Metadata        Metadata         `json:"metadata"`
	Segments        []Segment        `json:"script_segments"`
	Speakers        []Speaker        `json:"speakers"`
	TranslationRows []TranslationRow `json:"translation_table,omitempty"`
}

// Document returns the serializable form of the transcription.
func (t *Transcription) Document() Document {
	return Document{
		Metadata:        t.meta,
		Segments:        t.Segments(),
		Speakers:        t.Speakers(),
		TranslationRows: t.TranslationRows(),
	}
}

// FromDocument rebuilds a Transcription from its serialized form.
func FromDocument(doc Document) (*Transcription, error) {
	speakers := make(map[int]Speaker, len(doc.Speakers))
	for i, speaker := range doc.Speakers {
		if _, exists := speakers[speaker.VoiceID]; exists {
			return nil, &ValidationError{Field: "voice_id", Record: i, Reason: "duplicate voice_id"}
		}
		speakers[speaker.VoiceID] = speaker
	}
	return Assemble(doc.Segments, speakers, doc.TranslationRows, doc.Metadata)
}
