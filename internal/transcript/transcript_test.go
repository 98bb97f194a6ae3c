package transcript

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dollyto/multimodal-video-transcriber/internal/timecode"
)

func mustTimecode(t *testing.T, value string) timecode.Timecode {
	t.Helper()
	parsed, err := timecode.Parse(value)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", value, err)
	}
	return parsed
}

func sampleSegments(t *testing.T) []Segment {
	t.Helper()
	return []Segment{
		{Start: mustTimecode(t, "00:02"), End: mustTimecode(t, "00:05"), Text: "Hello", VoiceID: 1},
		{Start: mustTimecode(t, "00:05"), End: mustTimecode(t, "00:09"), Text: "Welcome", VoiceID: 2},
		{Start: mustTimecode(t, "00:09"), End: mustTimecode(t, "00:12"), Text: "Thanks", VoiceID: 1},
	}
}

func sampleSpeakers() map[int]Speaker {
	return map[int]Speaker{
		1: {VoiceID: 1, Name: "Ana", Company: "?", Position: "?", RoleInVideo: "Host"},
		2: {VoiceID: 2, Name: "Ben", Company: "Tech Corp", Position: "CEO", RoleInVideo: "Guest"},
	}
}

func TestAssembleAndQueries(t *testing.T) {
	trans, err := Assemble(sampleSegments(t), sampleSpeakers(), nil, Metadata{VideoRef: "yt", Model: "demo"})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	if got := trans.SpeakerByVoiceID(1).Name; got != "Ana" {
		t.Fatalf("SpeakerByVoiceID(1).Name = %q", got)
	}
	if got := trans.Duration().String(); got != "00:12" {
		t.Fatalf("Duration() = %q, want 00:12", got)
	}

	var texts []string
	for segment := range trans.SegmentsBySpeaker("Ana") {
		texts = append(texts, segment.Text)
	}
	if len(texts) != 2 || texts[0] != "Hello" || texts[1] != "Thanks" {
		t.Fatalf("SegmentsBySpeaker(Ana) = %v", texts)
	}

	// The sequence restarts cleanly on a second pass.
	seq := trans.SegmentsBySpeaker("Ana")
	for range 2 {
		count := 0
		for range seq {
			count++
		}
		if count != 2 {
			t.Fatalf("restarted sequence yielded %d segments, want 2", count)
		}
	}
}

func TestAssembleDanglingVoiceResolvesToUnknown(t *testing.T) {
	segments := []Segment{
		{Start: mustTimecode(t, "00:02"), End: mustTimecode(t, "00:05"), Text: "Hello", VoiceID: 2},
	}
	trans, err := Assemble(segments, map[int]Speaker{}, nil, Metadata{})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	speaker := trans.SpeakerByVoiceID(2)
	if speaker.Known() {
		t.Fatalf("expected unknown sentinel, got %+v", speaker)
	}
	if speaker.VoiceID != 2 || speaker.Name != NotFoundMarker {
		t.Fatalf("unexpected sentinel: %+v", speaker)
	}
}

func TestAssembleRejectsUnorderedSegments(t *testing.T) {
	segments := sampleSegments(t)
	segments[0], segments[2] = segments[2], segments[0]
	_, err := Assemble(segments, sampleSpeakers(), nil, Metadata{})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != "unordered segments" {
		t.Fatalf("err = %v, want unordered segments", err)
	}
}

func TestAssembleRejectsInvertedSegmentBounds(t *testing.T) {
	segments := []Segment{
		{Start: mustTimecode(t, "00:10"), End: mustTimecode(t, "00:05"), Text: "x", VoiceID: 1},
	}
	_, err := Assemble(segments, nil, nil, Metadata{})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "end_time" {
		t.Fatalf("err = %v, want end_time violation", err)
	}
}

func TestAssembleTranslationAlignment(t *testing.T) {
	segments := sampleSegments(t)
	rows := []TranslationRow{
		{LineNumber: 1, Speaker: "Ana", SourceText: "Hello", TargetText: "Hola"},
		{LineNumber: 2, Speaker: "Ben", SourceText: "Welcome", TargetText: "Bienvenido"},
		{LineNumber: 3, Speaker: "Ana", SourceText: "Thanks", TargetText: "Gracias"},
	}
	if _, err := Assemble(segments, sampleSpeakers(), rows, Metadata{}); err != nil {
		t.Fatalf("aligned translation rejected: %v", err)
	}

	short := rows[:2]
	_, err := Assemble(segments, sampleSpeakers(), short, Metadata{})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Record != -1 {
		t.Fatalf("err = %v, want row-count misalignment", err)
	}

	gapped := []TranslationRow{rows[0], {LineNumber: 3, SourceText: "x", TargetText: "y"}, {LineNumber: 4, SourceText: "x", TargetText: "y"}}
	_, err = Assemble(segments, sampleSpeakers(), gapped, Metadata{})
	if !errors.As(err, &verr) || verr.Field != "line_number" {
		t.Fatalf("err = %v, want line_number misalignment", err)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	trans, err := Assemble(sampleSegments(t), sampleSpeakers(), nil, Metadata{})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	segments := trans.Segments()
	segments[0].Text = "mutated"
	if trans.Segments()[0].Text == "mutated" {
		t.Fatal("Segments() exposed internal state")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	meta := Metadata{
		RunID:         "run-1",
		VideoRef:      "https://www.youtube.com/watch?v=abc",
		Model:         "demo-model",
		CreatedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		TimecodeStyle: "MM:SS",
	}
	trans, err := Assemble(sampleSegments(t), sampleSpeakers(), nil, meta)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	encoded, err := json.Marshal(trans.Document())
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(encoded, &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}
	rebuilt, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument returned error: %v", err)
	}
	if rebuilt.SegmentCount() != 3 || rebuilt.SpeakerCount() != 2 {
		t.Fatalf("rebuilt counts: %d segments, %d speakers", rebuilt.SegmentCount(), rebuilt.SpeakerCount())
	}
	if rebuilt.Metadata().RunID != "run-1" {
		t.Fatalf("rebuilt metadata: %+v", rebuilt.Metadata())
	}
}
