// Package prompt composes the task instructions sent alongside the video.
//
// The generated text carries one numbered task per expected payload: script
// segments, speakers, and optionally a translation table. A caller-supplied
// custom prompt replaces the task instructions but the output-schema block is
// always appended, so downstream validation stays satisfiable regardless of
// how the instructions were authored.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/dollyto/multimodal-video-transcriber/internal/timecode"
)

// Frame sampling bounds accepted by the video backend.
const (
	MinFPS = 0.1
	MaxFPS = 24.0
)

// ErrConfiguration tags option combinations the builder refuses.
var ErrConfiguration = errors.New("configuration error")

// Options selects which tasks the model performs and how output is shaped.
type Options struct {
	// FPS is the frame sampling rate; zero keeps the backend default.
	FPS float64
	// TimecodeStyle is the textual form segments must use.
	TimecodeStyle timecode.Style
	// IncludeTranslation requests the third task, a translation table.
	IncludeTranslation bool
	// TargetLanguage is the BCP-47 tag translated lines are written in.
	TargetLanguage string
	// CustomPrompt replaces the generated task instructions when non-empty.
	CustomPrompt string
	// SegmentStart/SegmentEnd bound the processed portion of the video.
	SegmentStart time.Duration
	SegmentEnd   time.Duration
}

// PayloadCount returns how many JSON payloads the reply must carry.
func (o Options) PayloadCount() int {
	if o.IncludeTranslation {
		return 3
	}
	return 2
}

// Validate rejects out-of-range sampling rates, inverted segment bounds, and
// translation requests without a parsable target language.
func (o Options) Validate() error {
	if o.FPS != 0 && (o.FPS < MinFPS || o.FPS > MaxFPS) {
		return fmt.Errorf("%w: fps %.2f outside %.1f-%.1f", ErrConfiguration, o.FPS, MinFPS, MaxFPS)
	}
	if o.SegmentStart < 0 || o.SegmentEnd < 0 {
		return fmt.Errorf("%w: segment bounds must not be negative", ErrConfiguration)
	}
	if o.SegmentEnd != 0 && o.SegmentStart > o.SegmentEnd {
		return fmt.Errorf("%w: segment start %s after end %s", ErrConfiguration, o.SegmentStart, o.SegmentEnd)
	}
	if o.IncludeTranslation {
		if _, err := o.targetLanguageName(); err != nil {
			return err
		}
	}
	return nil
}

func (o Options) targetLanguageName() (string, error) {
	tag, err := language.Parse(strings.TrimSpace(o.TargetLanguage))
	if err != nil {
		return "", fmt.Errorf("%w: target language %q: %v", ErrConfiguration, o.TargetLanguage, err)
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name, nil
	}
	return tag.String(), nil
}

// Build renders the full prompt text for the options.
func Build(opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	if custom := strings.TrimSpace(opts.CustomPrompt); custom != "" {
		b.WriteString(custom)
		b.WriteString("\n\n")
	} else {
		writeTasks(&b, opts)
	}
	writeSchema(&b, opts)
	return strings.TrimSpace(b.String()) + "\n", nil
}

func writeTasks(b *strings.Builder, opts Options) {
	style := opts.TimecodeStyle.String()

	b.WriteString("**Task 1 - Script Segments**\n\n")
	b.WriteString("- Watch the video and listen carefully to the audio.\n")
	b.WriteString("- Identify each unique voice using a `voice_id` (1, 2, 3, etc.).\n")
	b.WriteString("- Transcribe the video's audio verbatim with voice diarization.\n")
	fmt.Fprintf(b, "- Include the `start_time` and `end_time` timecodes (%s) for each speech segment.\n", style)
	b.WriteString("- Where audible, describe the delivery of each segment: `emotion` (happy, sad, angry, neutral, etc.), `tone` (casual, formal, serious, etc.), `energy_level` (low, medium, high), `speech_rate` (slow, normal, fast).\n\n")

	b.WriteString("**Task 2 - Speakers**\n\n")
	b.WriteString("- For each `voice_id` from Task 1, extract information about the corresponding speaker.\n")
	b.WriteString("- Use visual and audio cues.\n")
	b.WriteString("- If a piece of information cannot be found, use a question mark (`?`) as the value.\n\n")

	if opts.IncludeTranslation {
		// Validate already proved the tag parses.
		name, _ := opts.targetLanguageName()
		b.WriteString("**Task 3 - Translation Table**\n\n")
		fmt.Fprintf(b, "- Translate every script segment from Task 1 into %s.\n", name)
		b.WriteString("- Keep one numbered line per segment, in segment order.\n\n")
	}
}

func writeSchema(b *strings.Builder, opts Options) {
	b.WriteString("**Output format**\n\n")
	b.WriteString("Emit one JSON array per task, in task order.\n\n")
	b.WriteString("Script segments: a JSON array where each object has the fields `start_time`, `end_time`, `text`, `voice_id`, plus the optional delivery fields `emotion`, `tone`, `energy_level`, `speech_rate`.\n\n")
	b.WriteString("Speakers: a JSON array where each object has the fields `voice_id`, `name`, `company`, `position`, `role_in_video`.\n")
	if opts.IncludeTranslation {
		b.WriteString("\nTranslation table: a JSON array where each object has the fields `line_number`, `speaker`, `source_text`, `target_text`.\n")
	}
}
