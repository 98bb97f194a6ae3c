package transcript

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dollyto/multimodal-video-transcriber/internal/timecode"
)

// flexInt decodes an integer the model may emit either as a JSON number or as
// a quoted string ("1" and 1 are both seen in practice). Decoding never
// fails; bad input is carried so the caller can report the field and record.
type flexInt struct {
	value   int
	set     bool
	bad     string
	invalid bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		return nil
	}
	text = strings.TrimSpace(strings.Trim(text, `"`))
	n, err := strconv.Atoi(text)
	if err != nil {
		f.bad = text
		f.invalid = true
		return nil
	}
	f.value = n
	f.set = true
	return nil
}

type rawSegment struct {
	StartTime   *string  `json:"start_time"`
	EndTime     *string  `json:"end_time"`
	Text        *string  `json:"text"`
	VoiceID     *flexInt `json:"voice_id"`
	Emotion     *string  `json:"emotion"`
	Tone        *string  `json:"tone"`
	EnergyLevel *string  `json:"energy_level"`
	SpeechRate  *string  `json:"speech_rate"`
}

type rawSpeaker struct {
	VoiceID     *flexInt `json:"voice_id"`
	Name        *string  `json:"name"`
	Company     *string  `json:"company"`
	Position    *string  `json:"position"`
	RoleInVideo *string  `json:"role_in_video"`
}

type rawTranslationRow struct {
	LineNumber *flexInt `json:"line_number"`
	Speaker    *string  `json:"speaker"`
	SourceText *string  `json:"source_text"`
	TargetText *string  `json:"target_text"`
}

// ParseSegments coerces a segment payload into typed records. Any field
// violation rejects the whole payload.
func ParseSegments(payload string) ([]Segment, error) {
	var raw []rawSegment
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, &ValidationError{Record: -1, Reason: fmt.Sprintf("segments payload is not a JSON array: %v", err)}
	}
	segments := make([]Segment, 0, len(raw))
	for i, record := range raw {
		start, err := requireTimecode(record.StartTime, "start_time", i)
		if err != nil {
			return nil, err
		}
		end, err := requireTimecode(record.EndTime, "end_time", i)
		if err != nil {
			return nil, err
		}
		text, err := requireText(record.Text, "text", i)
		if err != nil {
			return nil, err
		}
		voiceID, err := requirePositiveInt(record.VoiceID, "voice_id", i)
		if err != nil {
			return nil, err
		}
		segments = append(segments, Segment{
			Start:       start,
			End:         end,
			Text:        text,
			VoiceID:     voiceID,
			Emotion:     deliveryText(record.Emotion),
			Tone:        deliveryText(record.Tone),
			EnergyLevel: deliveryText(record.EnergyLevel),
			SpeechRate:  deliveryText(record.SpeechRate),
		})
	}
	return segments, nil
}

// ParseSpeakers coerces a speaker payload into a voice_id keyed map. A
// duplicate voice_id is a validation error, never a silent overwrite.
func ParseSpeakers(payload string) (map[int]Speaker, error) {
	var raw []rawSpeaker
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, &ValidationError{Record: -1, Reason: fmt.Sprintf("speakers payload is not a JSON array: %v", err)}
	}
	speakers := make(map[int]Speaker, len(raw))
	for i, record := range raw {
		voiceID, err := requirePositiveInt(record.VoiceID, "voice_id", i)
		if err != nil {
			return nil, err
		}
		if _, exists := speakers[voiceID]; exists {
			return nil, &ValidationError{Field: "voice_id", Record: i, Reason: "duplicate voice_id"}
		}
		speakers[voiceID] = Speaker{
			VoiceID:     voiceID,
			Name:        optionalText(record.Name),
			Company:     optionalText(record.Company),
			Position:    optionalText(record.Position),
			RoleInVideo: optionalText(record.RoleInVideo),
		}
	}
	return speakers, nil
}

// ParseTranslation coerces a translation payload into typed rows. Alignment
// with the segment list is checked later, at assembly.
func ParseTranslation(payload string) ([]TranslationRow, error) {
	var raw []rawTranslationRow
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, &ValidationError{Record: -1, Reason: fmt.Sprintf("translation payload is not a JSON array: %v", err)}
	}
	rows := make([]TranslationRow, 0, len(raw))
	for i, record := range raw {
		lineNumber, err := requirePositiveInt(record.LineNumber, "line_number", i)
		if err != nil {
			return nil, err
		}
		source, err := requireText(record.SourceText, "source_text", i)
		if err != nil {
			return nil, err
		}
		target, err := requireText(record.TargetText, "target_text", i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, TranslationRow{
			LineNumber: lineNumber,
			Speaker:    optionalText(record.Speaker),
			SourceText: source,
			TargetText: target,
		})
	}
	return rows, nil
}

func requireTimecode(value *string, field string, record int) (timecode.Timecode, error) {
	if value == nil {
		return timecode.Timecode{}, &ValidationError{Field: field, Record: record, Reason: "required field missing"}
	}
	parsed, err := timecode.Parse(*value)
	if err != nil {
		return timecode.Timecode{}, &ValidationError{Field: field, Record: record, Reason: err.Error()}
	}
	return parsed, nil
}

func requireText(value *string, field string, record int) (string, error) {
	if value == nil {
		return "", &ValidationError{Field: field, Record: record, Reason: "required field missing"}
	}
	text := strings.TrimSpace(*value)
	if text == "" {
		return "", &ValidationError{Field: field, Record: record, Reason: "must not be empty"}
	}
	return text, nil
}

func requirePositiveInt(value *flexInt, field string, record int) (int, error) {
	if value != nil && value.invalid {
		return 0, &ValidationError{Field: field, Record: record, Reason: fmt.Sprintf("not an integer: %q", value.bad)}
	}
	if value == nil || !value.set {
		return 0, &ValidationError{Field: field, Record: record, Reason: "required field missing"}
	}
	if value.value <= 0 {
		return 0, &ValidationError{Field: field, Record: record, Reason: fmt.Sprintf("must be positive, got %d", value.value)}
	}
	return value.value, nil
}

// deliveryText normalizes an optional delivery field. Absent fields stay
// empty; the not-found marker is passed through untouched.
func deliveryText(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func optionalText(value *string) string {
	if value == nil {
		return NotFoundMarker
	}
	text := strings.TrimSpace(*value)
	if text == "" {
		return NotFoundMarker
	}
	return text
}
