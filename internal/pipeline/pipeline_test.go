package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dollyto/multimodal-video-transcriber/internal/extract"
	"github.com/dollyto/multimodal-video-transcriber/internal/prompt"
	"github.com/dollyto/multimodal-video-transcriber/internal/services/gemini"
	"github.com/dollyto/multimodal-video-transcriber/internal/transcript"
	"github.com/dollyto/multimodal-video-transcriber/internal/videoref"
)

type fakeClient struct {
	reply string
	err   error
	got   gemini.Request
	calls int
}

func (f *fakeClient) GenerateTranscript(_ context.Context, req gemini.Request) (string, error) {
	f.calls++
	f.got = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

const interviewReply = "Here is the transcription you asked for.\n\n" +
	"```json\n" +
	`[
		{"start_time": "00:05", "end_time": "00:12", "text": "Welcome to the show.", "voice_id": 1,
		 "emotion": "happy", "tone": "casual", "energy_level": "high", "speech_rate": "normal"},
		{"start_time": "00:13", "end_time": "00:21", "text": "Thanks for having me.", "voice_id": 2},
		{"start_time": "00:22", "end_time": "00:30", "text": "Let's get started.", "voice_id": 1}
	]` + "\n```\n\nAnd the speaker details:\n\n" +
	`[
		{"voice_id": 1, "name": "Ana", "company": "Acme", "position": "Host", "role_in_video": "interviewer"},
		{"voice_id": 2, "name": "?", "company": "?", "position": "?", "role_in_video": "guest"}
	]` + "\n\nLet me know if you need anything else.\n"

func validReply() string { return interviewReply }

func mustYouTube(t *testing.T, id string) videoref.Ref {
	t.Helper()
	ref, err := videoref.FromYouTubeID(id)
	if err != nil {
		t.Fatalf("FromYouTubeID: %v", err)
	}
	return ref
}

func TestRunAssemblesTranscription(t *testing.T) {
	client := &fakeClient{reply: validReply()}
	p := New(client, nil)

	result, err := p.Run(context.Background(), Request{
		Video: mustYouTube(t, "dQw4w9WgXcQ"),
		Model: "demo-model",
		RunID: "run-1",
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if client.got.VideoURI != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("video uri = %q", client.got.VideoURI)
	}
	if client.got.Model != "demo-model" {
		t.Fatalf("model = %q", client.got.Model)
	}
	if !strings.Contains(client.got.Prompt, "Task 1") {
		t.Fatalf("prompt missing task instructions: %q", client.got.Prompt)
	}

	tr := result.Transcription
	if tr.SegmentCount() != 3 || tr.SpeakerCount() != 2 {
		t.Fatalf("got %d segments, %d speakers", tr.SegmentCount(), tr.SpeakerCount())
	}
	if got := tr.SpeakerByVoiceID(1).Name; got != "Ana" {
		t.Fatalf("voice 1 name = %q", got)
	}
	var texts []string
	for segment := range tr.SegmentsBySpeaker("Ana") {
		texts = append(texts, segment.Text)
	}
	if len(texts) != 2 || texts[0] != "Welcome to the show." || texts[1] != "Let's get started." {
		t.Fatalf("Ana segments = %v", texts)
	}
	meta := tr.Metadata()
	if meta.RunID != "run-1" || meta.Model != "demo-model" {
		t.Fatalf("metadata = %+v", meta)
	}
	first := tr.Segments()[0]
	if first.Emotion != "happy" || first.Tone != "casual" || first.EnergyLevel != "high" || first.SpeechRate != "normal" {
		t.Fatalf("delivery fields = %+v", first)
	}
	if second := tr.Segments()[1]; second.Emotion != "" {
		t.Fatalf("delivery fields = %+v", second)
	}
	if result.RawReply != validReply() {
		t.Fatal("raw reply not retained")
	}
}

func TestRunGeneratesRunID(t *testing.T) {
	p := New(&fakeClient{reply: validReply()}, nil)
	result, err := p.Run(context.Background(), Request{Video: mustYouTube(t, "abc123"), Model: "m"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Transcription.Metadata().RunID == "" {
		t.Fatal("run id not generated")
	}
}

func TestRunWithTranslation(t *testing.T) {
	reply := validReply() + "\n\nTranslated:\n\n" + `[
		{"line_number": 1, "speaker": "Ana", "source_text": "Welcome to the show.", "target_text": "Bienvenidos al programa."},
		{"line_number": 2, "speaker": "?", "source_text": "Thanks for having me.", "target_text": "Gracias por invitarme."},
		{"line_number": 3, "speaker": "Ana", "source_text": "Let's get started.", "target_text": "Empecemos."}
	]` + "\n"
	p := New(&fakeClient{reply: reply}, nil)

	result, err := p.Run(context.Background(), Request{
		Video:   mustYouTube(t, "abc123"),
		Model:   "m",
		Options: prompt.Options{IncludeTranslation: true, TargetLanguage: "es"},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	rows := result.Transcription.TranslationRows()
	if len(rows) != 3 || rows[2].TargetText != "Empecemos." {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestRunEmptyTranslationTable(t *testing.T) {
	// A present-but-empty third payload means the model produced no
	// translatable lines; the run still succeeds without a table.
	reply := validReply() + "\n\nTranslated:\n\n[]\n"
	p := New(&fakeClient{reply: reply}, nil)

	result, err := p.Run(context.Background(), Request{
		Video:   mustYouTube(t, "abc123"),
		Model:   "m",
		Options: prompt.Options{IncludeTranslation: true, TargetLanguage: "es"},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if rows := result.Transcription.TranslationRows(); rows != nil {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestRunMissingTranslationPayload(t *testing.T) {
	p := New(&fakeClient{reply: validReply()}, nil)
	_, err := p.Run(context.Background(), Request{
		Video:   mustYouTube(t, "abc123"),
		Model:   "m",
		Options: prompt.Options{IncludeTranslation: true, TargetLanguage: "es"},
	})
	var parseErr *extract.ParseError
	if !errors.As(err, &parseErr) || parseErr.Reason != extract.ReasonCountMismatch {
		t.Fatalf("err = %v, want payload count mismatch", err)
	}
}

func TestRunInvalidOptionsSkipInvocation(t *testing.T) {
	client := &fakeClient{reply: validReply()}
	p := New(client, nil)
	_, err := p.Run(context.Background(), Request{
		Video:   mustYouTube(t, "abc123"),
		Model:   "m",
		Options: prompt.Options{FPS: 99},
	})
	if !errors.Is(err, prompt.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
	if client.calls != 0 {
		t.Fatalf("model invoked %d times for invalid options", client.calls)
	}
}

func TestRunRejectsCloudObjectOnHostedAPI(t *testing.T) {
	client := &fakeClient{reply: validReply()}
	p := New(client, nil)
	ref, err := videoref.Parse("gs://bucket/video.mp4")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := p.Run(context.Background(), Request{Video: ref, Model: "m"}); !errors.Is(err, videoref.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if client.calls != 0 {
		t.Fatal("model invoked for unsupported reference")
	}
}

func TestRunPropagatesInvocationError(t *testing.T) {
	invErr := &gemini.InvocationError{Transient: true, Attempts: 3, StatusCode: 429, Err: errors.New("quota")}
	p := New(&fakeClient{err: invErr}, nil)
	_, err := p.Run(context.Background(), Request{Video: mustYouTube(t, "abc123"), Model: "m"})
	var got *gemini.InvocationError
	if !errors.As(err, &got) || got.Attempts != 3 {
		t.Fatalf("err = %v, want the client's InvocationError", err)
	}
}

func TestRunProseOnlyReply(t *testing.T) {
	p := New(&fakeClient{reply: "I could not process this video, sorry."}, nil)
	_, err := p.Run(context.Background(), Request{Video: mustYouTube(t, "abc123"), Model: "m"})
	var parseErr *extract.ParseError
	if !errors.As(err, &parseErr) || parseErr.Reason != extract.ReasonNoPayload {
		t.Fatalf("err = %v, want no structured payload", err)
	}
}

func TestRunValidationFailure(t *testing.T) {
	reply := `[
		{"start_time": "00:30", "end_time": "00:40", "text": "later", "voice_id": 1},
		{"start_time": "00:05", "end_time": "00:10", "text": "earlier", "voice_id": 1}
	]` + "\n\n" + `[
		{"voice_id": 1, "name": "Ana", "company": "?", "position": "?", "role_in_video": "?"}
	]`
	p := New(&fakeClient{reply: reply}, nil)
	_, err := p.Run(context.Background(), Request{Video: mustYouTube(t, "abc123"), Model: "m"})
	var valErr *transcript.ValidationError
	if !errors.As(err, &valErr) || valErr.Reason != "unordered segments" {
		t.Fatalf("err = %v, want unordered segments", err)
	}
}
